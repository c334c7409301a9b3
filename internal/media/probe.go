package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Prober reports the playback duration of a local video file.
type Prober func(ctx context.Context, path string) (time.Duration, error)

// ProbeDuration reads a file's duration with ffprobe.
func ProbeDuration(ffprobeBinary string) Prober {
	binary := strings.TrimSpace(ffprobeBinary)
	if binary == "" {
		binary = "ffprobe"
	}
	return func(ctx context.Context, path string) (time.Duration, error) {
		args := []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		}
		cmd := commandContext(ctx, binary, args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			detail := strings.TrimSpace(stderr.String())
			if detail != "" {
				return 0, fmt.Errorf("probe %s: %w: %s", path, err, detail)
			}
			return 0, fmt.Errorf("probe %s: %w", path, err)
		}
		seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
		if err != nil {
			return 0, fmt.Errorf("parse probe output for %s: %w", path, err)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
}
