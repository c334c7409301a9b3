package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/arexur/video-combiner/internal/queue"
)

const sqliteBusyCode = 5

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

const rowColumns = "job_id, created_at, status, message, output_url, source_folder_id, output_folder_id, max_videos, max_duration_seconds"

func scanRow(scanner interface{ Scan(dest ...any) error }) (*queue.Row, error) {
	var (
		jobID           string
		createdRaw      sql.NullString
		statusStr       string
		message         sql.NullString
		outputURL       sql.NullString
		sourceFolderID  string
		outputFolderID  string
		maxVideos       int
		durationSeconds int64
	)

	if err := scanner.Scan(
		&jobID,
		&createdRaw,
		&statusStr,
		&message,
		&outputURL,
		&sourceFolderID,
		&outputFolderID,
		&maxVideos,
		&durationSeconds,
	); err != nil {
		return nil, err
	}

	row := &queue.Row{
		JobID:          jobID,
		Status:         queue.Status(statusStr),
		Message:        message.String,
		OutputURL:      outputURL.String,
		SourceFolderID: sourceFolderID,
		OutputFolderID: outputFolderID,
		MaxVideos:      maxVideos,
		MaxDuration:    time.Duration(durationSeconds) * time.Second,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		row.CreatedAt = created
	}
	return row, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
