// Package queue defines the job row model and the claim-and-finalize store
// contract shared by the worksheet and SQLite backends.
//
// A row moves pending -> running -> succeeded or failed; no other edge is
// valid. Claim is the single concurrency hazard in the system and every
// backend must make it effectively exclusive. OutputURL is set exactly when a
// row succeeds.
//
// Treat this package as the single source of truth for queue semantics; the
// backends map these statuses onto whatever representation their store uses.
package queue
