package models

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestListReferencesQuery(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "reference"}).
		AddRow(1, "P002").
		AddRow(2, "P001")
	mock.ExpectQuery("SELECT \\* FROM `tracked_references`").WillReturnRows(rows)

	refs, err := ListReferences(db)
	assert.NoError(t, err)
	// Sorted regardless of row order.
	assert.Equal(t, []string{"P001", "P002"}, refs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentRunsQuery(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "run_id", "status"}).
		AddRow(2, "run-b", "success").
		AddRow(1, "run-a", "partial")
	mock.ExpectQuery("SELECT \\* FROM `sync_runs` ORDER BY started_at DESC LIMIT \\?").
		WillReturnRows(rows)

	runs, err := RecentRuns(db, 2)
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
