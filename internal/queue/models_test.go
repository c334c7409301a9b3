package queue_test

import (
	"strings"
	"testing"
	"time"

	"github.com/arexur/video-combiner/internal/queue"
)

func validRow() *queue.Row {
	return &queue.Row{
		JobID:          "job-1",
		CreatedAt:      time.Now().UTC(),
		Status:         queue.StatusPending,
		SourceFolderID: "src",
		OutputFolderID: "out",
		MaxVideos:      3,
		MaxDuration:    5 * time.Minute,
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to queue.Status }{
		{queue.StatusPending, queue.StatusRunning},
		{queue.StatusRunning, queue.StatusSucceeded},
		{queue.StatusRunning, queue.StatusFailed},
	}
	for _, tc := range allowed {
		if !queue.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to queue.Status }{
		{queue.StatusPending, queue.StatusSucceeded},
		{queue.StatusPending, queue.StatusFailed},
		{queue.StatusRunning, queue.StatusPending},
		{queue.StatusSucceeded, queue.StatusRunning},
		{queue.StatusFailed, queue.StatusPending},
		{queue.StatusSucceeded, queue.StatusFailed},
	}
	for _, tc := range denied {
		if queue.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if queue.StatusPending.IsTerminal() || queue.StatusRunning.IsTerminal() {
		t.Fatal("pending and running must not be terminal")
	}
	if !queue.StatusSucceeded.IsTerminal() || !queue.StatusFailed.IsTerminal() {
		t.Fatal("succeeded and failed must be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	status, ok := queue.ParseStatus("  Running ")
	if !ok || status != queue.StatusRunning {
		t.Fatalf("ParseStatus normalized = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := queue.ParseStatus(""); ok {
		t.Fatal("expected empty status to be rejected")
	}
}

func TestRowValidate(t *testing.T) {
	if err := validRow().Validate(); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*queue.Row)
		want   string
	}{
		{"missing job id", func(r *queue.Row) { r.JobID = " " }, "job id"},
		{"missing source folder", func(r *queue.Row) { r.SourceFolderID = "" }, "source folder"},
		{"missing output folder", func(r *queue.Row) { r.OutputFolderID = "" }, "output folder"},
		{"zero max videos", func(r *queue.Row) { r.MaxVideos = 0 }, "max videos"},
		{"negative max videos", func(r *queue.Row) { r.MaxVideos = -2 }, "max videos"},
		{"zero max duration", func(r *queue.Row) { r.MaxDuration = 0 }, "max duration"},
		{"negative max duration", func(r *queue.Row) { r.MaxDuration = -time.Second }, "max duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(row)
			err := row.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestOutcomeConstructors(t *testing.T) {
	success := queue.Succeeded("https://example.com/video")
	if success.Status != queue.StatusSucceeded || success.OutputURL != "https://example.com/video" {
		t.Fatalf("unexpected success outcome: %#v", success)
	}

	failure := queue.Failed("download failed")
	if failure.Status != queue.StatusFailed || failure.Message != "download failed" {
		t.Fatalf("unexpected failure outcome: %#v", failure)
	}
}
