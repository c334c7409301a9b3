package queue

import "context"

// Store is the claim-and-finalize contract the runner drives. Implementations
// live in the sqlite and sheets subpackages.
type Store interface {
	// ListPending returns rows with Status pending in the store's natural
	// order. Re-reading the store is always safe.
	ListPending(ctx context.Context) ([]*Row, error)

	// Claim transitions a pending row to running and returns it. The
	// transition is exclusive: of two concurrent claims on the same row, at
	// most one succeeds. Returns ErrNotFound when the job id is absent and
	// ErrAlreadyClaimed when the row was not pending.
	Claim(ctx context.Context, jobID string) (*Row, error)

	// Finalize applies a terminal outcome to a running row. Calling it on a
	// row that is not running returns ErrInvalidTransition.
	Finalize(ctx context.Context, jobID string, outcome Outcome) error

	// SetMessage records a best-effort progress note on the row.
	SetMessage(ctx context.Context, jobID, text string) error
}

// AdminStore extends Store with the operations the CLI needs for queue
// management.
type AdminStore interface {
	Store

	// Add appends a new pending row to the queue.
	Add(ctx context.Context, row *Row) error

	// List returns rows filtered by status set, or all rows when no status is
	// provided.
	List(ctx context.Context, statuses ...Status) ([]*Row, error)
}
