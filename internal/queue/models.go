package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a job row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusSucceeded,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// validTransitions is the only edge set a store may apply:
// pending -> running -> {succeeded, failed}.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusRunning},
	StatusRunning: {StatusSucceeded, StatusFailed},
}

// Row represents one job request and its result in the queue.
type Row struct {
	JobID          string
	CreatedAt      time.Time
	Status         Status
	Message        string
	OutputURL      string
	SourceFolderID string
	OutputFolderID string
	MaxVideos      int
	MaxDuration    time.Duration
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving a row from one status to another is valid.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends the row's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Validate rejects rows that must never be claimed.
func (r *Row) Validate() error {
	if r == nil {
		return errors.New("row is nil")
	}
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job id is required")
	}
	if strings.TrimSpace(r.SourceFolderID) == "" {
		return fmt.Errorf("job %s: source folder id is required", r.JobID)
	}
	if strings.TrimSpace(r.OutputFolderID) == "" {
		return fmt.Errorf("job %s: output folder id is required", r.JobID)
	}
	if r.MaxVideos < 1 {
		return fmt.Errorf("job %s: max videos must be at least 1", r.JobID)
	}
	if r.MaxDuration <= 0 {
		return fmt.Errorf("job %s: max duration must be positive", r.JobID)
	}
	return nil
}

// Outcome is the terminal result applied by Finalize.
type Outcome struct {
	Status    Status
	OutputURL string
	Message   string
}

// Succeeded builds the outcome for a completed job.
func Succeeded(outputURL string) Outcome {
	return Outcome{Status: StatusSucceeded, OutputURL: outputURL}
}

// Failed builds the outcome for a failed job.
func Failed(message string) Outcome {
	return Outcome{Status: StatusFailed, Message: message}
}
