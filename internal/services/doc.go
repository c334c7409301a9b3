// Package services holds shared error markers and context annotation helpers
// used across the storage, combine, and runner packages.
package services
