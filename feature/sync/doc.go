// Package sync implements the reconciliation pipeline that keeps the
// destination shop in line with the source catalog.
//
// A run has four steps: scan the source catalog for the tracked references,
// persist the resulting snapshot, diff the snapshot against the shop's tagged
// products, and apply the plan as create/update/delete mutations. The diff is
// a pure function; the apply step is best-effort per item and collects errors
// instead of aborting the batch.
//
// The package also owns the run history and tracked-reference models, the HTTP
// handler for the admin surface, and the loader.Feature glue.
package sync
