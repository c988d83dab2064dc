package models_test

import (
	"testing"
	"time"

	"vendsync/core/database"
	"vendsync/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func TestReplaceReferencesDeduplicatesAndTrims(t *testing.T) {
	db := testDB(t)

	err := models.ReplaceReferences(db, []string{" P001 ", "P002", "P001", "", "  "})
	require.NoError(t, err)

	refs, err := models.ListReferences(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"P001", "P002"}, refs)
}

func TestReplaceReferencesSwapsAtomically(t *testing.T) {
	db := testDB(t)

	require.NoError(t, models.ReplaceReferences(db, []string{"OLD1", "OLD2"}))
	require.NoError(t, models.ReplaceReferences(db, []string{"NEW1"}))

	refs, err := models.ListReferences(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW1"}, refs)
}

func TestReplaceReferencesEmptyClearsSet(t *testing.T) {
	db := testDB(t)

	require.NoError(t, models.ReplaceReferences(db, []string{"P001"}))
	require.NoError(t, models.ReplaceReferences(db, nil))

	refs, err := models.ListReferences(db)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	db := testDB(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := models.RecordRun(db, &models.SyncRun{
			RunID:     string(rune('a' + i)),
			Status:    "success",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	runs, err := models.RecentRuns(db, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}
