package vendus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMissingCredential is returned when the API key is absent. This is a
// precondition failure reported before any network call.
var ErrMissingCredential = errors.New("vendus api key is not configured")

// defaultResultPaths are the envelope keys tried when extracting the record
// list from a list response. Kept in one place so shape detection never leaks
// into matching logic.
var defaultResultPaths = []string{"data", "products", "items", "results"}

// PageResult is the outcome of fetching one catalog page.
// A page whose retries are exhausted carries Err instead of Records; callers
// treat that as "page unavailable" and decide by policy, never as a fatal error.
type PageResult struct {
	// Page is the page number that was requested.
	Page int
	// Records holds the decoded records on success.
	Records []Product
	// Attempts is how many fetches were made, including the successful one.
	Attempts int
	// Err is the last error when all attempts failed.
	Err error
}

// Client fetches catalog pages with exponential-backoff retry.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient validates the credential and builds a page fetcher.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger: logger,
	}, nil
}

// PerPage returns the configured page size.
func (c *Client) PerPage() int {
	return c.cfg.PerPage
}

// FetchPage retrieves one page of products, retrying transient failures with
// exponential backoff. It never returns a Go error: failures are reported in
// the result so the scanner can continue past a bad page.
func (c *Client) FetchPage(ctx context.Context, page int) PageResult {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt - 1)
			select {
			case <-ctx.Done():
				return PageResult{Page: page, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		records, err := c.fetchOnce(ctx, page)
		if err == nil {
			return PageResult{Page: page, Records: records, Attempts: attempt + 1}
		}

		lastErr = err
		c.logger.Warn("Page fetch failed",
			zap.Int("page", page),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			return PageResult{Page: page, Attempts: attempt + 1, Err: lastErr}
		}
	}

	return PageResult{
		Page:     page,
		Attempts: c.cfg.MaxRetries + 1,
		Err:      fmt.Errorf("page %d unavailable after %d attempts: %w", page, c.cfg.MaxRetries+1, lastErr),
	}
}

// backoffDelay computes min(base * factor^attempt, max).
func (c *Client) backoffDelay(attempt int) time.Duration {
	base := float64(c.cfg.RetryBaseMs)
	delay := base * math.Pow(c.cfg.BackoffFactor, float64(attempt))
	if maxMs := float64(c.cfg.RetryMaxMs); delay > maxMs {
		delay = maxMs
	}
	return time.Duration(delay) * time.Millisecond
}

func (c *Client) fetchOnce(ctx context.Context, page int) ([]Product, error) {
	endpoint := c.cfg.BaseURL + "/products?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(c.cfg.PerPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vendus api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return c.extractRecords(body)
}

// extractRecords normalizes the response shape. The API has returned the list
// under different envelope keys across versions, and sometimes as a bare array.
func (c *Client) extractRecords(body []byte) ([]Product, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []Product
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode record list: %w", err)
		}
		return records, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	paths := defaultResultPaths
	if c.cfg.ResultPath != "" {
		paths = append([]string{c.cfg.ResultPath}, defaultResultPaths...)
	}

	for _, path := range paths {
		raw, ok := envelope[path]
		if !ok {
			continue
		}
		var records []Product
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records under %q: %w", path, err)
		}
		return records, nil
	}

	return nil, errors.New("response contains no recognized record list")
}
