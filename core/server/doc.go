// Package server holds the HTTP admin server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure for server settings such as the listen port and the
// API key protecting the admin endpoints.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the auth middleware to validate requests.
package server
