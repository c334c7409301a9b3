// Package selection holds the pure policy functions for picking the next job
// and the random subset of source videos it will combine.
package selection
