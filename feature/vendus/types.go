package vendus

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

// FlexID is an identifier that the API serializes as either a JSON number or a
// numeric string, depending on the endpoint and record age.
type FlexID string

// UnmarshalJSON accepts both quoted and unquoted identifiers.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	s = bytes.Trim(s, `"`)
	if string(s) == "null" {
		*f = ""
		return nil
	}
	*f = FlexID(s)
	return nil
}

// String returns the identifier as text.
func (f FlexID) String() string {
	return string(f)
}

// Int returns the identifier as an integer when it is numeric.
func (f FlexID) Int() (int, bool) {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Product is a record from the source catalog's products endpoint.
type Product struct {
	ID        FlexID          `json:"id"`
	Reference string          `json:"reference"`
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Stock     decimal.Decimal `json:"stock"`
	Status    string          `json:"status"`
	Images    []string        `json:"images"`
	Variants  []Variant       `json:"variants"`
}

// Variant is a first-level variant nested under a product.
type Variant struct {
	ID          FlexID       `json:"id"`
	Title       string       `json:"title"`
	Code        string       `json:"code"`
	Reference   string       `json:"reference"`
	SubVariants []SubVariant `json:"product_variants"`
}

// SubVariant is the leaf-level identifying unit, typically one color/size cell.
type SubVariant struct {
	ID      FlexID          `json:"id"`
	Code    string          `json:"code"`
	Text    string          `json:"text"`
	Barcode string          `json:"barcode"`
	Stock   []LocationStock `json:"stock"`
}

// LocationStock is a per-location stock quantity on a sub-variant.
type LocationStock struct {
	StoreID FlexID          `json:"store_id"`
	Stock   decimal.Decimal `json:"stock"`
}
