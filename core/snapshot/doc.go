// Package snapshot defines the durable result of a catalog scan and the stores
// that persist it between runs.
//
// A ScanResult records, for one tracked reference set, which references were
// found in the source catalog (with page/position bookkeeping and a normalized
// product projection) and which were not. The reconciliation step diffs the
// latest ScanResult against the destination shop; the snapshot is therefore the
// pipeline's only piece of durable state.
//
// Two Store implementations are provided: FileStore (write-temp-then-rename on
// the local filesystem) and ObjectStore (a JSON blob per scope in a MinIO/S3
// bucket). Both treat a missing or corrupt snapshot as the empty state rather
// than an error: absence of prior state is normal, not exceptional.
package snapshot
