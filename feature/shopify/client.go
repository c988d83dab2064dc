package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMissingCredential is returned when the shop domain or token is absent.
var ErrMissingCredential = errors.New("shopify shop domain or access token is not configured")

// Client is the destination catalog contract used by reconciliation.
type Client interface {
	// SearchByTag returns every product carrying the tag.
	SearchByTag(ctx context.Context, tag string) ([]Product, error)
	// SearchByTagPrefix returns every product carrying a tag with the prefix.
	SearchByTagPrefix(ctx context.Context, prefix string) ([]Product, error)
	// CreateProduct creates a product with a single tracked variant.
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	// UpdateProduct updates the mutable fields of an existing product.
	UpdateProduct(ctx context.Context, productID int64, input ProductInput) (*Product, error)
	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, productID int64) error
	// SetInventory sets the absolute available quantity for an inventory item.
	SetInventory(ctx context.Context, inventoryItemID int64, quantity int) error
	// AdjustInventory changes the available quantity by a delta.
	AdjustInventory(ctx context.Context, inventoryItemID int64, delta int) error
	// EnableTracking turns on inventory tracking for an inventory item.
	EnableTracking(ctx context.Context, inventoryItemID int64) error
	// Publish makes a product visible on the online store.
	Publish(ctx context.Context, productID int64) error
}

// restClient implements Client against the Admin REST API.
type restClient struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient validates credentials and builds an Admin API client.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	if strings.TrimSpace(cfg.ShopDomain) == "" || strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, ErrMissingCredential
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-07"
	}

	return &restClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger: logger,
	}, nil
}

// url builds the endpoint for an Admin API path. A bare shop name gets the
// .myshopify.com suffix; a domain with an explicit scheme is used as-is.
func (c *restClient) url(path string) string {
	domain := strings.TrimSuffix(c.cfg.ShopDomain, "/")
	if !strings.Contains(domain, ".") {
		domain += ".myshopify.com"
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return domain + "/admin/api/" + c.cfg.APIVersion + path
}

// do performs one Admin API call, retrying once on a 429 after the advertised
// Retry-After delay. User errors are decoded into a RequestError.
func (c *restClient) do(ctx context.Context, method, path string, payload any, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.url(path), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			delay := 2 * time.Second
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.ParseFloat(ra, 64); err == nil && secs > 0 {
					delay = time.Duration(secs * float64(time.Second))
				}
			}
			c.logger.Warn("Rate limited by Admin API, backing off",
				zap.String("path", path),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return decodeRequestError(resp.StatusCode, respBody)
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}
}

// decodeRequestError maps the Admin API's error envelope to a RequestError.
// The envelope is either {"errors": "message"} or {"errors": {"field": [...]}}.
func decodeRequestError(status int, body []byte) error {
	reqErr := &RequestError{StatusCode: status, Body: strings.TrimSpace(string(body))}

	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Errors) == 0 {
		return reqErr
	}

	var message string
	if json.Unmarshal(envelope.Errors, &message) == nil {
		reqErr.UserErrors = []UserError{{Message: message}}
		return reqErr
	}

	var fields map[string][]string
	if json.Unmarshal(envelope.Errors, &fields) == nil {
		for field, messages := range fields {
			for _, msg := range messages {
				reqErr.UserErrors = append(reqErr.UserErrors, UserError{Field: field, Message: msg})
			}
		}
	}
	return reqErr
}

// REST wire shapes, kept private to this file.

type restVariant struct {
	ID                  int64  `json:"id,omitempty"`
	SKU                 string `json:"sku,omitempty"`
	Price               string `json:"price,omitempty"`
	InventoryQuantity   int    `json:"inventory_quantity,omitempty"`
	InventoryItemID     int64  `json:"inventory_item_id,omitempty"`
	InventoryManagement string `json:"inventory_management,omitempty"`
}

type restProduct struct {
	ID        int64         `json:"id,omitempty"`
	Title     string        `json:"title,omitempty"`
	BodyHTML  string        `json:"body_html,omitempty"`
	Status    string        `json:"status,omitempty"`
	Tags      string        `json:"tags,omitempty"`
	Published *bool         `json:"published,omitempty"`
	Variants  []restVariant `json:"variants,omitempty"`
}

func fromREST(rp restProduct) Product {
	p := Product{
		ID:     rp.ID,
		Title:  rp.Title,
		Status: rp.Status,
	}
	for _, tag := range strings.Split(rp.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			p.Tags = append(p.Tags, tag)
		}
	}
	if len(rp.Variants) > 0 {
		v := rp.Variants[0]
		p.Variant = Variant{
			ID:                v.ID,
			SKU:               v.SKU,
			Price:             v.Price,
			InventoryQuantity: v.InventoryQuantity,
			InventoryItemID:   v.InventoryItemID,
			Tracked:           v.InventoryManagement == "shopify",
		}
	}
	return p
}

func (c *restClient) SearchByTag(ctx context.Context, tag string) ([]Product, error) {
	all, err := c.SearchByTagPrefix(ctx, tag)
	if err != nil {
		return nil, err
	}
	var matched []Product
	for _, p := range all {
		if p.TagWithPrefix(tag) == tag {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// SearchByTagPrefix pages through the product list with since_id and filters
// by tag prefix client-side; the REST API has no tag search parameter.
func (c *restClient) SearchByTagPrefix(ctx context.Context, prefix string) ([]Product, error) {
	var matched []Product
	sinceID := int64(0)
	const pageSize = 250

	for {
		path := fmt.Sprintf("/products.json?limit=%d&since_id=%d", pageSize, sinceID)
		var envelope struct {
			Products []restProduct `json:"products"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
			return nil, err
		}

		for _, rp := range envelope.Products {
			p := fromREST(rp)
			if p.TagWithPrefix(prefix) != "" {
				matched = append(matched, p)
			}
			if rp.ID > sinceID {
				sinceID = rp.ID
			}
		}

		if len(envelope.Products) < pageSize {
			return matched, nil
		}
	}
}

func (c *restClient) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	payload := map[string]restProduct{
		"product": {
			Title:    input.Title,
			BodyHTML: input.BodyHTML,
			Status:   input.Status,
			Tags:     strings.Join(input.Tags, ", "),
			Variants: []restVariant{{
				SKU:                 input.SKU,
				Price:               input.Price,
				InventoryManagement: "shopify",
			}},
		},
	}

	var envelope struct {
		Product restProduct `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/products.json", payload, &envelope); err != nil {
		return nil, err
	}
	p := fromREST(envelope.Product)
	return &p, nil
}

func (c *restClient) UpdateProduct(ctx context.Context, productID int64, input ProductInput) (*Product, error) {
	payload := map[string]restProduct{
		"product": {
			ID:       productID,
			Title:    input.Title,
			BodyHTML: input.BodyHTML,
			Status:   input.Status,
			Tags:     strings.Join(input.Tags, ", "),
		},
	}

	var envelope struct {
		Product restProduct `json:"product"`
	}
	path := fmt.Sprintf("/products/%d.json", productID)
	if err := c.do(ctx, http.MethodPut, path, payload, &envelope); err != nil {
		return nil, err
	}
	p := fromREST(envelope.Product)
	return &p, nil
}

func (c *restClient) DeleteProduct(ctx context.Context, productID int64) error {
	path := fmt.Sprintf("/products/%d.json", productID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *restClient) SetInventory(ctx context.Context, inventoryItemID int64, quantity int) error {
	payload := map[string]any{
		"location_id":       c.cfg.LocationID,
		"inventory_item_id": inventoryItemID,
		"available":         quantity,
	}
	return c.do(ctx, http.MethodPost, "/inventory_levels/set.json", payload, nil)
}

func (c *restClient) AdjustInventory(ctx context.Context, inventoryItemID int64, delta int) error {
	payload := map[string]any{
		"location_id":          c.cfg.LocationID,
		"inventory_item_id":    inventoryItemID,
		"available_adjustment": delta,
	}
	return c.do(ctx, http.MethodPost, "/inventory_levels/adjust.json", payload, nil)
}

func (c *restClient) EnableTracking(ctx context.Context, inventoryItemID int64) error {
	payload := map[string]any{
		"inventory_item": map[string]any{
			"id":      inventoryItemID,
			"tracked": true,
		},
	}
	path := fmt.Sprintf("/inventory_items/%d.json", inventoryItemID)
	return c.do(ctx, http.MethodPut, path, payload, nil)
}

func (c *restClient) Publish(ctx context.Context, productID int64) error {
	published := true
	payload := map[string]restProduct{
		"product": {ID: productID, Published: &published},
	}
	path := fmt.Sprintf("/products/%d.json", productID)
	return c.do(ctx, http.MethodPut, path, payload, nil)
}
