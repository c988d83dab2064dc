package vendus

import (
	"vendsync/core/utils"
)

// Match returns the subset of candidates satisfied by the record.
// For each candidate the identifier families are checked in precedence order:
// product reference, product code, product id (string then numeric), variant
// fields, then sub-variant code/text/barcode/id. The first hit wins and the
// remaining checks for that candidate are skipped.
func Match(record Product, candidates map[string]struct{}) map[string]struct{} {
	matched := make(map[string]struct{})
	for candidate := range candidates {
		if recordMatches(record, candidate) {
			matched[candidate] = struct{}{}
		}
	}
	return matched
}

func recordMatches(p Product, candidate string) bool {
	if equalNonEmpty(p.Reference, candidate) {
		return true
	}
	if equalNonEmpty(p.Code, candidate) {
		return true
	}
	if idMatches(p.ID, candidate) {
		return true
	}
	for _, v := range p.Variants {
		if variantMatches(v, candidate) {
			return true
		}
	}
	return false
}

func variantMatches(v Variant, candidate string) bool {
	if equalNonEmpty(v.Code, candidate) ||
		equalNonEmpty(v.Title, candidate) ||
		equalNonEmpty(v.Reference, candidate) ||
		idMatches(v.ID, candidate) {
		return true
	}
	for _, sv := range v.SubVariants {
		if equalNonEmpty(sv.Code, candidate) ||
			equalNonEmpty(sv.Text, candidate) ||
			equalNonEmpty(sv.Barcode, candidate) ||
			idMatches(sv.ID, candidate) {
			return true
		}
	}
	return false
}

// idMatches compares an identifier against a candidate as a string, and as an
// integer when the candidate is numeric.
func idMatches(id FlexID, candidate string) bool {
	if id == "" {
		return false
	}
	if id.String() == candidate {
		return true
	}
	if utils.IsNumeric(candidate) {
		if n, ok := id.Int(); ok && n == utils.ToInt(candidate) {
			return true
		}
	}
	return false
}

func equalNonEmpty(field, candidate string) bool {
	return field != "" && field == candidate
}
