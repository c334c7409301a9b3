package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Queue selects and configures the job queue backend.
type Queue struct {
	// Backend is "sheets" for the production worksheet queue or "sqlite" for
	// a local database.
	Backend        string `toml:"backend"`
	DBPath         string `toml:"db_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Sheets contains configuration for the spreadsheet API.
type Sheets struct {
	SpreadsheetID string `toml:"spreadsheet_id"`
	Worksheet     string `toml:"worksheet"`
	BaseURL       string `toml:"base_url"`
	APIToken      string `toml:"api_token"`
}

// Storage selects and configures the video file backend.
type Storage struct {
	// Backend is "drive" for cloud folders or "local" for directories on disk.
	Backend        string `toml:"backend"`
	BaseURL        string `toml:"base_url"`
	UploadBaseURL  string `toml:"upload_base_url"`
	APIToken       string `toml:"api_token"`
	PageSize       int    `toml:"page_size"`
	MaxFileSizeMB  int    `toml:"max_file_size_mb"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Combine contains configuration for the concatenation step.
type Combine struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	VideoBitrate   string `toml:"video_bitrate"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Selection contains configuration for source subset selection.
type Selection struct {
	// Seed fixes the random source when non-zero; zero seeds from the clock.
	Seed int64 `toml:"seed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the combiner.
//
// Configuration sections by subsystem:
//   - Paths: staging and log directories
//   - Queue: job queue backend (worksheet or SQLite) and store timeouts
//   - Sheets: spreadsheet API connection
//   - Storage: video folder backend (cloud or local filesystem)
//   - Combine: ffmpeg/ffprobe invocation settings
//   - Selection: random subset seeding
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Queue     Queue     `toml:"queue"`
	Sheets    Sheets    `toml:"sheets"`
	Storage   Storage   `toml:"storage"`
	Combine   Combine   `toml:"combine"`
	Selection Selection `toml:"selection"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/video-combiner/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and env fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("video-combiner.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the SQLite queue database location.
func (c *Config) QueueDBPath() string {
	if strings.TrimSpace(c.Queue.DBPath) != "" {
		return c.Queue.DBPath
	}
	return filepath.Join(c.Paths.LogDir, "queue.db")
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", pathValue, err)
	}
	return abs, nil
}

// ExpandPath resolves ~ and relative segments for callers outside the package.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
