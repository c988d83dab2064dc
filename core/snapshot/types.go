package snapshot

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProductData is the normalized projection of a matched source record.
// It carries everything the reconciliation step needs to create or update the
// destination product, decoupled from the source API's wire shape.
type ProductData struct {
	// ID is the source catalog's numeric product ID.
	ID int64 `json:"id"`

	// Title is the product display title.
	Title string `json:"title"`

	// Reference is the source SKU-like reference string.
	Reference string `json:"reference"`

	// Code is the secondary product code, if any.
	Code string `json:"code,omitempty"`

	// Price is the unit price in the shop currency.
	Price decimal.Decimal `json:"price"`

	// Stock is the total stock level across locations.
	Stock int `json:"stock"`

	// Status is the source status string (e.g., "on", "off").
	Status string `json:"status,omitempty"`

	// Images holds source image URLs.
	Images []string `json:"images,omitempty"`

	// Colors and Sizes are extracted from sub-variant "COLOR / SIZE" texts.
	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`

	// RawVariants preserves the source variant list verbatim for later use.
	RawVariants json.RawMessage `json:"variants,omitempty"`
}

// MatchEntry records where in the source catalog a reference was found.
type MatchEntry struct {
	// Page is the page number the match came from.
	Page int `json:"page"`

	// Position is the 1-based index of the record within its page.
	Position int `json:"position"`

	// Product is the normalized projection of the matched record.
	Product ProductData `json:"productData"`
}

// ScanResult is the durable outcome of one catalog scan.
//
// Invariant: after a scan that terminates normally, every input reference
// appears in exactly one of Found or NotFound. A scan aborted early (max-page
// cap) sets Aborted, and NotFound then contains the unaccounted references.
type ScanResult struct {
	// SearchDate is when the scan completed.
	SearchDate time.Time `json:"searchDate"`

	// TotalSearched is the size of the input reference set at scan time.
	TotalSearched int `json:"totalSearched"`

	// Found maps reference strings to their match entries.
	Found map[string]MatchEntry `json:"found"`

	// NotFound lists references never matched before the scan ended.
	NotFound []string `json:"notFound"`

	// Aborted is set when the scan hit its page cap before resolving
	// every reference or exhausting the catalog.
	Aborted bool `json:"aborted,omitempty"`

	// PagesScanned is the number of pages fetched (including failed ones).
	PagesScanned int `json:"pagesScanned,omitempty"`
}

// Empty returns the well-defined empty snapshot used when no prior state exists.
func Empty() *ScanResult {
	return &ScanResult{
		Found:    map[string]MatchEntry{},
		NotFound: []string{},
	}
}

// IsEmpty reports whether the snapshot contains no found entries.
// The reconciliation step uses this to refuse destructive diffs.
func (r *ScanResult) IsEmpty() bool {
	return r == nil || len(r.Found) == 0
}

// References reconstructs the full reference set the scan covered.
func (r *ScanResult) References() []string {
	refs := make([]string, 0, len(r.Found)+len(r.NotFound))
	for ref := range r.Found {
		refs = append(refs, ref)
	}
	refs = append(refs, r.NotFound...)
	return refs
}
