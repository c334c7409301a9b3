package logging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/arexur/video-combiner/internal/services"
)

type lineBuffer struct {
	lines []string
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.lines = append(b.lines, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func newConsoleLogger(level slog.Level) (*slog.Logger, *lineBuffer) {
	buf := &lineBuffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(buf, levelVar)), buf
}

func TestConsoleHandlerFormatsLine(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	logger.Info("job succeeded",
		String(FieldComponent, "runner"),
		String(FieldJobID, "job-1"),
		Int("videos_combined", 3),
	)

	if len(buf.lines) != 1 {
		t.Fatalf("expected one line, got %#v", buf.lines)
	}
	line := buf.lines[0]
	if !strings.Contains(line, "INFO [runner] job succeeded") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "job_id=job-1") || !strings.Contains(line, "videos_combined=3") {
		t.Fatalf("fields missing from %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	logger.Warn("progress note not recorded", Error(errors.New("sheet row gone")))

	if len(buf.lines) != 1 {
		t.Fatalf("expected one line, got %#v", buf.lines)
	}
	if !strings.Contains(buf.lines[0], `error="sheet row gone"`) {
		t.Fatalf("unexpected quoting in %q", buf.lines[0])
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelWarn)

	logger.Info("ignored")
	logger.Debug("ignored too")
	logger.Error("kept")

	if len(buf.lines) != 1 || !strings.Contains(buf.lines[0], "ERROR kept") {
		t.Fatalf("unexpected lines %#v", buf.lines)
	}
}

func TestConsoleHandlerWithAttrsDoesNotMutateParent(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	child := logger.With(String("scope", "child"))
	child.Info("from child")
	logger.Info("from parent")

	if len(buf.lines) != 2 {
		t.Fatalf("expected two lines, got %#v", buf.lines)
	}
	if !strings.Contains(buf.lines[0], "scope=child") {
		t.Fatalf("child attrs missing: %q", buf.lines[0])
	}
	if strings.Contains(buf.lines[1], "scope=child") {
		t.Fatalf("parent leaked child attrs: %q", buf.lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
		" Debug ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	logger, buf := newConsoleLogger(slog.LevelInfo)

	ctx := services.WithJobID(context.Background(), "job-9")
	ctx = services.WithStep(ctx, "combine")
	WithContext(ctx, logger).Info("processing")

	if len(buf.lines) != 1 {
		t.Fatalf("expected one line, got %#v", buf.lines)
	}
	line := buf.lines[0]
	if !strings.Contains(line, "job_id=job-9") || !strings.Contains(line, "step=combine") {
		t.Fatalf("context fields missing from %q", line)
	}
}

func TestWithContextNoFieldsReturnsSame(t *testing.T) {
	logger, _ := newConsoleLogger(slog.LevelInfo)
	if got := WithContext(context.Background(), logger); got != logger {
		t.Fatal("expected identical logger when context carries no fields")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
