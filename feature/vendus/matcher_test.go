package vendus_test

import (
	"testing"

	"vendsync/feature/vendus"

	"github.com/stretchr/testify/assert"
)

func candidates(refs ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		set[ref] = struct{}{}
	}
	return set
}

func TestMatchByReference(t *testing.T) {
	record := vendus.Product{ID: "42", Reference: "P001", Code: "C001"}

	matched := vendus.Match(record, candidates("P001", "P002"))

	assert.Len(t, matched, 1)
	assert.Contains(t, matched, "P001")
}

func TestMatchByCode(t *testing.T) {
	record := vendus.Product{ID: "42", Reference: "P001", Code: "C001"}

	matched := vendus.Match(record, candidates("C001"))

	assert.Contains(t, matched, "C001")
}

func TestMatchByNumericID(t *testing.T) {
	// The API serializes ids inconsistently; "042" and 42 must both hit a
	// record whose id decoded to "42".
	record := vendus.Product{ID: "42", Reference: "P001"}

	assert.Contains(t, vendus.Match(record, candidates("42")), "42")
	assert.Contains(t, vendus.Match(record, candidates("042")), "042")
	assert.Empty(t, vendus.Match(record, candidates("43")))
}

func TestMatchEmptyFieldNeverMatches(t *testing.T) {
	// A record with blank identifiers must not match a blank-ish candidate.
	record := vendus.Product{ID: "", Reference: "", Code: ""}

	assert.Empty(t, vendus.Match(record, candidates("P001")))
}

func TestMatchVariantAndSubVariant(t *testing.T) {
	record := vendus.Product{
		ID:        "7",
		Reference: "PARENT",
		Variants: []vendus.Variant{
			{
				ID:    "100",
				Code:  "V-CODE",
				Title: "V-TITLE",
				SubVariants: []vendus.SubVariant{
					{ID: "200", Code: "SV-CODE", Text: "RED / M", Barcode: "5601234"},
				},
			},
		},
	}

	assert.Contains(t, vendus.Match(record, candidates("V-CODE")), "V-CODE")
	assert.Contains(t, vendus.Match(record, candidates("V-TITLE")), "V-TITLE")
	assert.Contains(t, vendus.Match(record, candidates("SV-CODE")), "SV-CODE")
	assert.Contains(t, vendus.Match(record, candidates("5601234")), "5601234")
	assert.Contains(t, vendus.Match(record, candidates("200")), "200")
	assert.Empty(t, vendus.Match(record, candidates("NOPE")))
}

func TestMatchMultipleCandidatesOneRecord(t *testing.T) {
	// One record can satisfy several candidates at once, e.g. when the
	// tracked set lists both a reference and a barcode of the same product.
	record := vendus.Product{
		ID:        "7",
		Reference: "P001",
		Variants: []vendus.Variant{
			{SubVariants: []vendus.SubVariant{{Barcode: "5601234"}}},
		},
	}

	matched := vendus.Match(record, candidates("P001", "5601234", "OTHER"))

	assert.Len(t, matched, 2)
	assert.Contains(t, matched, "P001")
	assert.Contains(t, matched, "5601234")
}
