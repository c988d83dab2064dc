package sync

import (
	"sort"
	"strings"

	"vendsync/core/snapshot"
	"vendsync/feature/shopify"
)

// PlanItem is a found snapshot entry with no destination counterpart.
type PlanItem struct {
	Reference string
	Entry     snapshot.MatchEntry
}

// UpdateItem pairs a found snapshot entry with its existing destination product.
type UpdateItem struct {
	Reference string
	Entry     snapshot.MatchEntry
	Existing  shopify.Product
}

// Plan is the derived set of mutations that brings the destination catalog in
// line with the snapshot. It is never stored; a fresh diff is cheap.
type Plan struct {
	ToCreate []PlanItem
	ToUpdate []UpdateItem
	ToDelete []shopify.Product
}

// IsEmpty reports whether the plan contains no mutations.
func (p *Plan) IsEmpty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// BuildPlan diffs a scan snapshot against the destination's tagged products.
//
// Destination products are indexed by the reference embedded in their tag
// (tagPrefix stripped); products without such a tag are ignored entirely.
// Entries found in the scan are split into creates (no destination entry) and
// updates (destination entry exists, field-level no-op detection is left to the
// apply step). Tagged products whose reference is absent from the scan are
// scheduled for deletion.
//
// Safety rule: when the snapshot has no found entries at all, ToDelete stays
// empty. An empty snapshot usually means an upstream failure or a cleared
// reference set, and must never be read as "delete everything".
//
// BuildPlan is a pure function: same inputs, same plan, in deterministic order.
func BuildPlan(scan *snapshot.ScanResult, tagged []shopify.Product, tagPrefix string) *Plan {
	plan := &Plan{}

	index := make(map[string]shopify.Product, len(tagged))
	for _, p := range tagged {
		tag := p.TagWithPrefix(tagPrefix)
		if tag == "" {
			continue
		}
		ref := strings.TrimPrefix(tag, tagPrefix)
		if ref == "" {
			continue
		}
		index[ref] = p
	}

	refs := make([]string, 0, len(scan.Found))
	for ref := range scan.Found {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		entry := scan.Found[ref]
		if existing, ok := index[ref]; ok {
			plan.ToUpdate = append(plan.ToUpdate, UpdateItem{Reference: ref, Entry: entry, Existing: existing})
		} else {
			plan.ToCreate = append(plan.ToCreate, PlanItem{Reference: ref, Entry: entry})
		}
	}

	if scan.IsEmpty() {
		return plan
	}

	staleRefs := make([]string, 0)
	for ref := range index {
		if _, ok := scan.Found[ref]; !ok {
			staleRefs = append(staleRefs, ref)
		}
	}
	sort.Strings(staleRefs)
	for _, ref := range staleRefs {
		plan.ToDelete = append(plan.ToDelete, index[ref])
	}

	return plan
}
