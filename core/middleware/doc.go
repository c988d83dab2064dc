// Package middleware groups the Fiber middlewares used by the admin server.
//
// Subpackages:
//   - rayid: assigns a unique request ID (RayID) to every request for log correlation.
//   - auth: protects the admin API with a shared API key.
package middleware
