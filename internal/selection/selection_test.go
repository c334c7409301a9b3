package selection_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/arexur/video-combiner/internal/media"
	"github.com/arexur/video-combiner/internal/queue"
	"github.com/arexur/video-combiner/internal/selection"
)

func pendingRow(jobID string, createdAt time.Time) *queue.Row {
	return &queue.Row{
		JobID:          jobID,
		CreatedAt:      createdAt,
		Status:         queue.StatusPending,
		SourceFolderID: "src",
		OutputFolderID: "out",
		MaxVideos:      3,
		MaxDuration:    5 * time.Minute,
	}
}

func clip(name string, duration time.Duration) media.File {
	return media.File{ID: name, Name: name, Duration: duration}
}

func TestOrderPendingSortsOldestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []*queue.Row{
		pendingRow("job-b", base),
		pendingRow("job-a", base),
		pendingRow("job-newest", base.Add(time.Hour)),
		pendingRow("job-oldest", base.Add(-time.Hour)),
	}

	ordered := selection.OrderPending(rows)
	want := []string{"job-oldest", "job-a", "job-b", "job-newest"}
	if len(ordered) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(ordered))
	}
	for i, row := range ordered {
		if row.JobID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, row.JobID, want[i])
		}
	}
}

func TestOrderPendingDropsNonPendingAndInvalidRows(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	running := pendingRow("job-running", base)
	running.Status = queue.StatusRunning
	invalidVideos := pendingRow("job-zero-videos", base)
	invalidVideos.MaxVideos = 0
	invalidDuration := pendingRow("job-zero-duration", base)
	invalidDuration.MaxDuration = 0

	rows := []*queue.Row{
		nil,
		running,
		invalidVideos,
		invalidDuration,
		pendingRow("job-good", base),
	}

	ordered := selection.OrderPending(rows)
	if len(ordered) != 1 || ordered[0].JobID != "job-good" {
		t.Fatalf("expected only job-good, got %#v", ordered)
	}
}

func TestNextJob(t *testing.T) {
	if row := selection.NextJob(nil); row != nil {
		t.Fatalf("expected nil for empty slice, got %#v", row)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []*queue.Row{
		pendingRow("job-late", base.Add(time.Minute)),
		pendingRow("job-early", base),
	}
	row := selection.NextJob(rows)
	if row == nil || row.JobID != "job-early" {
		t.Fatalf("expected job-early, got %#v", row)
	}
}

func TestSubsetHonorsCountLimit(t *testing.T) {
	files := []media.File{
		clip("a", time.Minute),
		clip("b", time.Minute),
		clip("c", time.Minute),
		clip("d", time.Minute),
	}
	rng := rand.New(rand.NewSource(1))

	picked, err := selection.Subset(files, 2, time.Hour, rng)
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	if len(picked) != 2 {
		t.Fatalf("expected 2 files, got %d", len(picked))
	}
}

func TestSubsetHonorsDurationLimit(t *testing.T) {
	files := []media.File{
		clip("a", 40*time.Second),
		clip("b", 40*time.Second),
		clip("c", 40*time.Second),
	}
	rng := rand.New(rand.NewSource(1))

	picked, err := selection.Subset(files, 10, time.Minute, rng)
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	var total time.Duration
	for _, file := range picked {
		total += file.Duration
	}
	if total > time.Minute {
		t.Fatalf("total duration %v exceeds limit", total)
	}
	if len(picked) == 0 {
		t.Fatal("expected at least one file under the limit")
	}
}

func TestSubsetNoFiles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := selection.Subset(nil, 3, time.Minute, rng); !errors.Is(err, selection.ErrNoEligibleSources) {
		t.Fatalf("expected ErrNoEligibleSources, got %v", err)
	}
}

func TestSubsetNothingFitsDuration(t *testing.T) {
	// A single 120s file can never fit a 60s budget.
	files := []media.File{clip("long", 2 * time.Minute)}
	rng := rand.New(rand.NewSource(1))

	if _, err := selection.Subset(files, 3, time.Minute, rng); !errors.Is(err, selection.ErrNoEligibleSources) {
		t.Fatalf("expected ErrNoEligibleSources, got %v", err)
	}
}

func TestSubsetSkipsOversizedButKeepsSmaller(t *testing.T) {
	files := []media.File{
		clip("long", 2 * time.Minute),
		clip("short", 30 * time.Second),
	}
	rng := rand.New(rand.NewSource(1))

	picked, err := selection.Subset(files, 3, time.Minute, rng)
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	if len(picked) != 1 || picked[0].Name != "short" {
		t.Fatalf("expected only the short clip, got %#v", picked)
	}
}

func TestSubsetDeterministicWithFixedSeed(t *testing.T) {
	files := []media.File{
		clip("a", time.Minute),
		clip("b", time.Minute),
		clip("c", time.Minute),
		clip("d", time.Minute),
		clip("e", time.Minute),
	}

	first, err := selection.Subset(files, 3, time.Hour, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	second, err := selection.Subset(files, 3, time.Hour, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("selection sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("selection differs at %d: %s vs %s", i, first[i].Name, second[i].Name)
		}
	}
}
