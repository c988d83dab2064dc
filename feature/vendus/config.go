package vendus

// Config holds configuration for the Vendus catalog API client.
type Config struct {
	// BaseURL is the root of the Vendus web service API.
	BaseURL string `mapstructure:"base_url" default:"https://www.vendus.pt/ws/v1.1"`
	// APIKey is the bearer credential. Required before any network call.
	APIKey string `mapstructure:"api_key" default:""`
	// PerPage is the page size requested from the products endpoint.
	PerPage int `mapstructure:"per_page" default:"100"`
	// MaxRetries is the number of retries after a failed page fetch.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// RetryBaseMs is the initial backoff delay in milliseconds.
	RetryBaseMs int `mapstructure:"retry_base_ms" default:"1000"`
	// RetryMaxMs caps the backoff delay in milliseconds.
	RetryMaxMs int `mapstructure:"retry_max_ms" default:"8000"`
	// BackoffFactor is the exponential backoff multiplier.
	BackoffFactor float64 `mapstructure:"backoff_factor" default:"2"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// ResultPath optionally names the response envelope key holding the
	// record list. When empty the known keys are tried in order.
	ResultPath string `mapstructure:"result_path" default:""`
}

func (c Config) withDefaults() Config {
	if c.PerPage <= 0 {
		c.PerPage = 100
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 3
	}
	if c.RetryBaseMs <= 0 {
		c.RetryBaseMs = 1000
	}
	if c.RetryMaxMs <= 0 {
		c.RetryMaxMs = 8000
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = 2
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	return c
}
