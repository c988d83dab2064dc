package shopify

import (
	"fmt"
	"strings"
)

// Variant is the single tracked variant of a mirrored product.
type Variant struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	// Tracked reports whether inventory tracking is enabled for the variant.
	Tracked bool `json:"tracked"`
}

// Product is a destination catalog record.
type Product struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
	Variant Variant  `json:"variant"`
}

// TagWithPrefix returns the first tag carrying the given prefix, or "".
func (p Product) TagWithPrefix(prefix string) string {
	for _, tag := range p.Tags {
		if strings.HasPrefix(tag, prefix) {
			return tag
		}
	}
	return ""
}

// ProductInput carries the normalized fields for a create or update mutation.
type ProductInput struct {
	Title    string
	BodyHTML string
	// Status is the destination status ("active" or "draft").
	Status string
	// Price is the fixed two-decimal price string.
	Price string
	SKU   string
	Tags  []string
}

// UserError is a field-level validation error returned by the Admin API.
type UserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestError is a failed Admin API call, carrying any user errors verbatim.
type RequestError struct {
	StatusCode int
	UserErrors []UserError
	Body       string
}

func (e *RequestError) Error() string {
	if len(e.UserErrors) > 0 {
		parts := make([]string, 0, len(e.UserErrors))
		for _, ue := range e.UserErrors {
			if ue.Field != "" {
				parts = append(parts, ue.Field+": "+ue.Message)
			} else {
				parts = append(parts, ue.Message)
			}
		}
		return fmt.Sprintf("shopify api error %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("shopify api error %d: %s", e.StatusCode, e.Body)
}
