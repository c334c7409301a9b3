// Package logging builds slog loggers with console or JSON output and
// standardized field names for job and step context.
package logging
