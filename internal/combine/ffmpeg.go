package combine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Option configures the CLI combiner.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithVideoBitrate overrides the output video bitrate.
func WithVideoBitrate(bitrate string) Option {
	return func(c *CLI) {
		if bitrate != "" {
			c.bitrate = bitrate
		}
	}
}

// CLI concatenates videos with the ffmpeg concat demuxer, re-encoding to a
// uniform H.264/AAC output so mixed source codecs splice cleanly.
type CLI struct {
	binary  string
	bitrate string
}

// NewCLI constructs a CLI combiner using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", bitrate: "1000k"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Combine runs ffmpeg over the inputs and writes outputPath.
func (c *CLI) Combine(ctx context.Context, inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return errors.New("no input files")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	listPath, err := writeConcatList(inputs, outputPath)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", "libx264",
		"-b:v", c.bitrate,
		"-c:a", "aac",
		outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w: %s", err, tailLines(stderr.String(), 5))
	}
	return nil
}

// writeConcatList produces the file list the concat demuxer reads. Single
// quotes in paths are escaped per ffmpeg's quoting rules.
func writeConcatList(inputs []string, outputPath string) (string, error) {
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return "", fmt.Errorf("resolve input %s: %w", input, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	listPath := outputPath + ".concat.txt"
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return listPath, nil
}

func tailLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

var _ Combiner = (*CLI)(nil)
