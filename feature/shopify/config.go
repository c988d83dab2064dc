package shopify

// Config holds configuration for the destination shop.
type Config struct {
	// ShopDomain is the *.myshopify.com domain of the shop.
	ShopDomain string `mapstructure:"shop_domain" default:""`
	// AccessToken is the Admin API access token.
	AccessToken string `mapstructure:"access_token" default:""`
	// APIVersion selects the Admin API version.
	APIVersion string `mapstructure:"api_version" default:"2024-07"`
	// LocationID is the inventory location mutated by the sync.
	LocationID int64 `mapstructure:"location_id" default:"0"`
	// TagPrefix is prepended to the source reference to build the
	// correlation tag (e.g. "ref-" + "SKU1" -> "ref-SKU1").
	TagPrefix string `mapstructure:"tag_prefix" default:"ref-"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}
