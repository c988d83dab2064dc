// Package shopify provides the destination catalog client.
//
// The Client interface covers exactly what reconciliation needs: search
// tagged products, create/update/delete a product, set or adjust inventory,
// flip inventory tracking, and publish. The REST implementation keeps the
// Admin API's wire shapes private; the rest of the codebase works with the
// normalized Product/Variant types.
//
// Mirrored products carry a tag embedding the source reference (for example
// "ref-SKU1"); that tag is the only correlation between the two systems, so
// field-level user errors from the Admin API are surfaced verbatim for the
// reconciliation report instead of being swallowed.
package shopify
