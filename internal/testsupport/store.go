package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/arexur/video-combiner/internal/config"
	"github.com/arexur/video-combiner/internal/queue"
	"github.com/arexur/video-combiner/internal/queue/sqlite"
)

// MustOpenStore opens a SQLite queue store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(cfg.QueueDBPath())
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob inserts a pending queue row for tests and returns it.
func NewJob(t testing.TB, store *sqlite.Store, jobID, sourceFolder, outputFolder string) *queue.Row {
	t.Helper()

	row := &queue.Row{
		JobID:          jobID,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		Status:         queue.StatusPending,
		SourceFolderID: sourceFolder,
		OutputFolderID: outputFolder,
		MaxVideos:      5,
		MaxDuration:    10 * time.Minute,
	}
	if err := store.Add(context.Background(), row); err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return row
}
