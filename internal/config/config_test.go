package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arexur/video-combiner/internal/config"
)

func clearSecretEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SPREADSHEET_ID", "")
	t.Setenv("SHEETS_API_TOKEN", "")
	t.Setenv("DRIVE_API_TOKEN", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func localConfigBody(t *testing.T) string {
	base := t.TempDir()
	return `
[paths]
staging_dir = "` + filepath.Join(base, "staging") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[queue]
backend = "sqlite"

[storage]
backend = "local"
`
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("SPREADSHEET_ID", "env-sheet")
	t.Setenv("SHEETS_API_TOKEN", "env-sheets-token")
	t.Setenv("DRIVE_API_TOKEN", "env-drive-token")

	missing := filepath.Join(t.TempDir(), "absent.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if path != missing {
		t.Fatalf("unexpected resolved path %q", path)
	}
	if cfg.Queue.Backend != "sheets" || cfg.Storage.Backend != "drive" {
		t.Fatalf("unexpected default backends: %s/%s", cfg.Queue.Backend, cfg.Storage.Backend)
	}
	if cfg.Sheets.SpreadsheetID != "env-sheet" || cfg.Sheets.APIToken != "env-sheets-token" {
		t.Fatalf("env secrets not applied: %#v", cfg.Sheets)
	}
	if cfg.Storage.APIToken != "env-drive-token" {
		t.Fatalf("drive token not applied: %q", cfg.Storage.APIToken)
	}
	if cfg.Sheets.Worksheet != "JobQueue" {
		t.Fatalf("unexpected default worksheet %q", cfg.Sheets.Worksheet)
	}
	if cfg.Combine.FFmpegBinary != "ffmpeg" || cfg.Combine.VideoBitrate != "1000k" {
		t.Fatalf("unexpected combine defaults: %#v", cfg.Combine)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	clearSecretEnv(t)
	path := writeConfig(t, localConfigBody(t)+`
[combine]
video_bitrate = "2500k"

[selection]
seed = 7

[logging]
format = "JSON"
level = "Debug"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Queue.Backend != "sqlite" || cfg.Storage.Backend != "local" {
		t.Fatalf("unexpected backends: %s/%s", cfg.Queue.Backend, cfg.Storage.Backend)
	}
	if cfg.Combine.VideoBitrate != "2500k" {
		t.Fatalf("unexpected bitrate %q", cfg.Combine.VideoBitrate)
	}
	if cfg.Selection.Seed != 7 {
		t.Fatalf("unexpected seed %d", cfg.Selection.Seed)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %#v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.StagingDir) {
		t.Fatalf("staging dir not expanded: %q", cfg.Paths.StagingDir)
	}
}

func TestEnvOverridesFileSecrets(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("SPREADSHEET_ID", "env-wins")
	t.Setenv("SHEETS_API_TOKEN", "env-token")
	t.Setenv("DRIVE_API_TOKEN", "env-drive")

	base := t.TempDir()
	path := writeConfig(t, `
[paths]
staging_dir = "`+filepath.Join(base, "staging")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[sheets]
spreadsheet_id = "file-sheet"
api_token = "file-token"

[storage]
api_token = "file-drive"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sheets.SpreadsheetID != "env-wins" || cfg.Sheets.APIToken != "env-token" {
		t.Fatalf("env must win over file: %#v", cfg.Sheets)
	}
	if cfg.Storage.APIToken != "env-drive" {
		t.Fatalf("env must win over file: %q", cfg.Storage.APIToken)
	}
}

func TestLoadRejectsSheetsWithoutSecrets(t *testing.T) {
	clearSecretEnv(t)
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
staging_dir = "`+filepath.Join(base, "staging")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[queue]
backend = "sheets"
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if !strings.Contains(err.Error(), "spreadsheet_id") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	clearSecretEnv(t)
	path := writeConfig(t, strings.Replace(localConfigBody(t), `"sqlite"`, `"bogus"`, 1))
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown queue backend")
	}

	path = writeConfig(t, strings.Replace(localConfigBody(t), `"local"`, `"tape"`, 1))
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestQueueDBPathDefaultsUnderLogDir(t *testing.T) {
	clearSecretEnv(t)
	path := writeConfig(t, localConfigBody(t))
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := filepath.Join(cfg.Paths.LogDir, "queue.db")
	if got := cfg.QueueDBPath(); got != want {
		t.Fatalf("QueueDBPath = %q, want %q", got, want)
	}

	cfg.Queue.DBPath = "/tmp/custom.db"
	if got := cfg.QueueDBPath(); got != "/tmp/custom.db" {
		t.Fatalf("explicit db path ignored: %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(content), "[queue]") {
		t.Fatalf("sample missing queue section:\n%s", content)
	}
	if err := config.CreateSample(target); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
