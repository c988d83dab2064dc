package models

import (
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ListReferences returns the tracked reference set, sorted.
func ListReferences(db *gorm.DB) ([]string, error) {
	var rows []TrackedReference
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, row.Reference)
	}
	sort.Strings(refs)
	return refs, nil
}

// ReplaceReferences swaps the tracked reference set atomically. Blank and
// duplicate entries are dropped.
func ReplaceReferences(db *gorm.DB, refs []string) error {
	seen := make(map[string]struct{}, len(refs))
	rows := make([]TrackedReference, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		rows = append(rows, TrackedReference{Reference: ref})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&TrackedReference{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// RecordRun appends a run to the history.
func RecordRun(db *gorm.DB, run *SyncRun) error {
	return db.Create(run).Error
}

// RecentRuns returns the newest runs first.
func RecentRuns(db *gorm.DB, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []SyncRun
	err := db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
