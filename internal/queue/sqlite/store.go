package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arexur/video-combiner/internal/queue"
)

// Store persists job rows in SQLite. It is the queue backend for local
// development and the test suite, and backs the CLI maintenance commands.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the queue database at path.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("queue database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Add appends a new pending row.
func (s *Store) Add(ctx context.Context, row *queue.Row) error {
	if err := row.Validate(); err != nil {
		return err
	}
	if row.Status == "" {
		row.Status = queue.StatusPending
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO job_queue (
            job_id, created_at, status, message, output_url,
            source_folder_id, output_folder_id, max_videos, max_duration_seconds
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.JobID,
		row.CreatedAt.UTC().Format(time.RFC3339Nano),
		row.Status,
		nullableString(row.Message),
		nullableString(row.OutputURL),
		row.SourceFolderID,
		row.OutputFolderID,
		row.MaxVideos,
		int64(row.MaxDuration/time.Second),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Get fetches a row by job id.
func (s *Store) Get(ctx context.Context, jobID string) (*queue.Row, error) {
	dbRow := s.db.QueryRowContext(ctx, `SELECT `+rowColumns+` FROM job_queue WHERE job_id = ?`, jobID)
	row, err := scanRow(dbRow)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, queue.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return row, nil
}

// ListPending returns pending rows ordered by creation time, ties broken by
// job id.
func (s *Store) ListPending(ctx context.Context) ([]*queue.Row, error) {
	return s.List(ctx, queue.StatusPending)
}

// List returns rows filtered by status set (or all rows when no status is
// provided).
func (s *Store) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Row, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + rowColumns + ` FROM job_queue`
	orderClause := ` ORDER BY created_at, job_id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*queue.Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Claim transitions a pending row to running. The conditional UPDATE is
// atomic, so of two concurrent claims exactly one observes an affected row.
func (s *Store) Claim(ctx context.Context, jobID string) (*queue.Row, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE job_queue SET status = ?, updated_at = ? WHERE job_id = ? AND status = ?`,
		queue.StatusRunning,
		time.Now().UTC().Format(time.RFC3339Nano),
		jobID,
		queue.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.Get(ctx, jobID); err != nil {
			return nil, err
		}
		return nil, queue.ErrAlreadyClaimed
	}
	return s.Get(ctx, jobID)
}

// Finalize applies a terminal outcome to a running row.
func (s *Store) Finalize(ctx context.Context, jobID string, outcome queue.Outcome) error {
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("finalize with status %q: %w", outcome.Status, queue.ErrInvalidTransition)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE job_queue SET status = ?, message = ?, output_url = ?, updated_at = ?
         WHERE job_id = ? AND status = ?`,
		outcome.Status,
		nullableString(outcome.Message),
		nullableString(outcome.OutputURL),
		time.Now().UTC().Format(time.RFC3339Nano),
		jobID,
		queue.StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("finalize job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := s.Get(ctx, jobID); err != nil {
			return err
		}
		return queue.ErrInvalidTransition
	}
	return nil
}

// SetMessage records a progress note. Failures are the caller's to log.
func (s *Store) SetMessage(ctx context.Context, jobID, text string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE job_queue SET message = ?, updated_at = ? WHERE job_id = ?`,
		text,
		time.Now().UTC().Format(time.RFC3339Nano),
		jobID,
	); err != nil {
		return fmt.Errorf("set message: %w", err)
	}
	return nil
}

// RetryFailed moves failed rows back to pending for reprocessing.
func (s *Store) RetryFailed(ctx context.Context, jobIDs ...string) (int64, error) {
	if len(jobIDs) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE job_queue SET status = ?, message = 'Retry requested', output_url = NULL, updated_at = ?
            WHERE status = ?`,
			queue.StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			queue.StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed jobs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(jobIDs))
	args := make([]any, 0, len(jobIDs)+2)
	args = append(args, queue.StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range jobIDs {
		args = append(args, id)
	}
	query := `UPDATE job_queue SET status = ?, message = 'Retry requested', output_url = NULL, updated_at = ?
        WHERE job_id IN (` + placeholders + `) AND status = '` + string(queue.StatusFailed) + `'`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected jobs: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes rows matching the given statuses, or every row when none are
// provided.
func (s *Store) Clear(ctx context.Context, statuses ...queue.Status) (int64, error) {
	if len(statuses) == 0 {
		res, err := s.execWithRetry(ctx, `DELETE FROM job_queue`)
		if err != nil {
			return 0, fmt.Errorf("clear queue: %w", err)
		}
		return res.RowsAffected()
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM job_queue WHERE status IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("clear queue by status: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of rows grouped by status.
func (s *Store) Stats(ctx context.Context) (map[queue.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM job_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[queue.Status]int)
	for rows.Next() {
		var status queue.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ queue.AdminStore = (*Store)(nil)
