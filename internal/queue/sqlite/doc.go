// Package sqlite implements the queue store on SQLite for local development
// and tests. Claims are a single conditional UPDATE, so exclusivity holds
// without any verification read.
package sqlite
