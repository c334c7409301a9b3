package combine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func stubCommand(t *testing.T, mode string, captured *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append(*captured, append([]string{name}, args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestCombineBuildsConcatInvocation(t *testing.T) {
	var captured [][]string
	stubCommand(t, "success", &captured)

	dir := t.TempDir()
	inputs := []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.mp4"),
	}
	output := filepath.Join(dir, "combined.mp4")

	cli := NewCLI(WithBinary("ffmpeg-test"), WithVideoBitrate("2500k"))
	if err := cli.Combine(context.Background(), inputs, output); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("expected one invocation, got %d", len(captured))
	}
	invocation := captured[0]
	if invocation[0] != "ffmpeg-test" {
		t.Fatalf("unexpected binary %q", invocation[0])
	}
	joined := strings.Join(invocation[1:], " ")
	for _, want := range []string{"-f concat", "-safe 0", "-c:v libx264", "-b:v 2500k", "-c:a aac"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if invocation[len(invocation)-1] != output {
		t.Fatalf("output path must be the final argument, got %q", invocation[len(invocation)-1])
	}
}

func TestCombineRejectsEmptyInputs(t *testing.T) {
	cli := NewCLI()
	if err := cli.Combine(context.Background(), nil, "out.mp4"); err == nil {
		t.Fatal("expected error for empty inputs")
	}
	if err := cli.Combine(context.Background(), []string{"a.mp4"}, "  "); err == nil {
		t.Fatal("expected error for empty output path")
	}
}

func TestCombineSurfacesStderrTail(t *testing.T) {
	stubCommand(t, "failure", nil)

	dir := t.TempDir()
	output := filepath.Join(dir, "combined.mp4")
	cli := NewCLI()
	err := cli.Combine(context.Background(), []string{filepath.Join(dir, "a.mp4")}, output)
	if err == nil {
		t.Fatal("expected combine failure")
	}
	if !strings.Contains(err.Error(), "corrupt input stream") {
		t.Fatalf("error %q missing ffmpeg stderr", err)
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "it's a clip.mp4")
	output := filepath.Join(dir, "combined.mp4")

	listPath, err := writeConcatList([]string{input}, output)
	if err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}
	defer os.Remove(listPath)

	content, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	line := strings.TrimSpace(string(content))
	if !strings.HasPrefix(line, "file '") {
		t.Fatalf("unexpected list line %q", line)
	}
	if !strings.Contains(line, `'\''`) {
		t.Fatalf("single quote not escaped in %q", line)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "frame=  120 fps= 30")
		fmt.Fprintln(os.Stderr, "corrupt input stream")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
