// Package config provides configuration management for vendsync.
//
// It utilizes Viper for loading configuration from environment variables and a
// local .env file, with defaults declared as struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP admin server settings (port, API key)
//   - Database: MySQL/SQLite connection details for run history
//   - Storage: S3/MinIO credentials for the snapshot object store
//   - Log: Logging level and format
//   - Vendus: source catalog API credentials and paging/retry knobs
//   - Shopify: destination shop credentials and tagging
//   - Sync: scheduler interval, snapshot backend, scan limits
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
