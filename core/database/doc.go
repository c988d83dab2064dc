// Package database handles database connections for vendsync.
//
// It provides a wrapper around GORM to properly configure MySQL (or SQLite for
// local runs) connections based on the application's configuration. The
// database is an optional collaborator: it stores the run history and the
// tracked reference set, and callers are expected to tolerate a nil connection.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database connection failed", err)
//	}
package database
