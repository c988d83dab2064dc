// Package scheduler provides the interval driver for the sync pipeline.
//
// The Scheduler is an explicit object owned by the process: it exposes
// Start(interval, task), Stop(), Status() and TriggerNow() instead of hiding a
// timer handle in package state. The pipeline is injected as a Task closure, so
// the scheduler knows nothing about scanning or reconciliation.
//
// A busy flag guarantees that two runs never overlap: a scheduled tick or a
// manual trigger arriving while a run is in flight is rejected with ErrBusy.
package scheduler
