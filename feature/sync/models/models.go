// Package models holds the persisted records of the reconciliation feature:
// run history rows and the tracked reference set.
package models

import (
	"time"

	"gorm.io/gorm"
)

// SyncRun is one completed reconciliation run, kept for the history endpoint.
type SyncRun struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	RunID       string    `gorm:"column:run_id;size:36;uniqueIndex" json:"runId"`
	Status      string    `gorm:"column:status;size:16" json:"status"`
	TriggeredBy string    `gorm:"column:triggered_by;size:16" json:"triggeredBy"`
	StartedAt   time.Time `gorm:"column:started_at" json:"startedAt"`
	FinishedAt  time.Time `gorm:"column:finished_at" json:"finishedAt"`
	DurationMs  int64     `gorm:"column:duration_ms" json:"durationMs"`
	Found       int       `gorm:"column:found" json:"found"`
	NotFound    int       `gorm:"column:not_found" json:"notFound"`
	Created     int       `gorm:"column:created" json:"created"`
	Updated     int       `gorm:"column:updated" json:"updated"`
	Deleted     int       `gorm:"column:deleted" json:"deleted"`
	ErrorCount  int       `gorm:"column:error_count" json:"errorCount"`
	Message     string    `gorm:"column:message;size:1024" json:"message"`
}

// TableName overrides gorm's pluralisation.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// TrackedReference is one source catalog reference the engine keeps in sync.
type TrackedReference struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Reference string    `gorm:"column:reference;size:128;uniqueIndex" json:"reference"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides gorm's pluralisation.
func (TrackedReference) TableName() string {
	return "tracked_references"
}

// Migrate creates or updates the feature's tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&SyncRun{}, &TrackedReference{})
}
