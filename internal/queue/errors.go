package queue

import "errors"

var (
	// ErrNotFound indicates the job id is absent from the backing store.
	ErrNotFound = errors.New("job not found")
	// ErrAlreadyClaimed indicates the row was not pending when the claim was
	// attempted; another runner won the race.
	ErrAlreadyClaimed = errors.New("job already claimed")
	// ErrInvalidTransition indicates a finalize was attempted on a row that is
	// not running.
	ErrInvalidTransition = errors.New("invalid status transition")
)
