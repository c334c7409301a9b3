package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/arexur/video-combiner/internal/media"
	"github.com/arexur/video-combiner/internal/storage"
)

// Backend implements storage on the local filesystem. Folder identifiers are
// directory paths; durations come from the configured prober.
type Backend struct {
	prober      media.Prober
	maxFileSize int64
}

// Option configures the local backend.
type Option func(*Backend)

// WithProber overrides the duration prober.
func WithProber(prober media.Prober) Option {
	return func(b *Backend) {
		if prober != nil {
			b.prober = prober
		}
	}
}

// WithMaxFileSize skips source files above the given byte count. Zero
// disables the filter.
func WithMaxFileSize(bytes int64) Option {
	return func(b *Backend) {
		b.maxFileSize = bytes
	}
}

// New constructs a local backend probing durations with ffprobe by default.
func New(opts ...Option) *Backend {
	backend := &Backend{prober: media.ProbeDuration("")}
	for _, opt := range opts {
		opt(backend)
	}
	return backend
}

// ListFolder returns the video files in a directory with probed durations.
func (b *Backend) ListFolder(ctx context.Context, folderID string) ([]media.File, error) {
	entries, err := os.ReadDir(folderID)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folderID, err)
	}

	var files []media.File
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !media.IsVideoPath(dirEntry.Name()) {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dirEntry.Name(), err)
		}
		if b.maxFileSize > 0 && info.Size() > b.maxFileSize {
			continue
		}
		path := filepath.Join(folderID, dirEntry.Name())
		duration, err := b.prober(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", path, err)
		}
		files = append(files, media.File{
			ID:       path,
			Name:     dirEntry.Name(),
			Size:     info.Size(),
			Duration: duration,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Fetch copies a file into destDir.
func (b *Backend) Fetch(ctx context.Context, file media.File, destDir string) (string, error) {
	localPath := filepath.Join(destDir, filepath.Base(file.Name))
	if err := copyFileContents(file.ID, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// Store copies a local file into the output directory and returns a file URL.
func (b *Backend) Store(ctx context.Context, localPath, folderID, name string) (string, error) {
	if err := os.MkdirAll(folderID, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	targetPath := filepath.Join(folderID, name)
	if err := copyFileContents(localPath, targetPath); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	return "file://" + abs, nil
}

func copyFileContents(sourcePath, targetPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dest, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return fmt.Errorf("copy data: %w", err)
	}
	if err := dest.Sync(); err != nil {
		dest.Close()
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

var _ storage.Backend = (*Backend)(nil)
