// Package utils provides common utility functions for vendsync.
// It includes helper functions for loose type conversion and numeric string
// checks used when matching operator references against upstream identifiers.
package utils
