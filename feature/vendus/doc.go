// Package vendus implements the source catalog side of the pipeline: a paged
// product fetcher with retry/backoff, the reference matcher, and the catalog
// scanner that resolves an operator reference set against the remote catalog.
//
// # Matching
//
// Source catalog entries expose the same logical product under several
// identifier families: a numeric id, a SKU-like reference or code, and
// size/color sub-variant codes. Operators may supply any of these as the
// tracked reference, so the matcher checks all families instead of assuming a
// canonical key.
//
// # Scanning
//
// The scanner drives the fetcher across pages in small concurrent batches until
// every reference is resolved, the catalog is exhausted (short page), or the
// page cap is hit. Page-level fetch failures degrade to "page unavailable" and
// the scan continues; they never abort the run unless explicitly requested.
package vendus
