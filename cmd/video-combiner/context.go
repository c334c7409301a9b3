package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/arexur/video-combiner/internal/combine"
	"github.com/arexur/video-combiner/internal/config"
	"github.com/arexur/video-combiner/internal/media"
	"github.com/arexur/video-combiner/internal/queue"
	"github.com/arexur/video-combiner/internal/queue/sheets"
	"github.com/arexur/video-combiner/internal/queue/sqlite"
	"github.com/arexur/video-combiner/internal/runner"
	"github.com/arexur/video-combiner/internal/storage"
	"github.com/arexur/video-combiner/internal/storage/drive"
	"github.com/arexur/video-combiner/internal/storage/local"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openStore wires the configured queue backend. The returned closer is a
// no-op for backends without persistent handles.
func (c *commandContext) openStore() (queue.AdminStore, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Queue.Backend {
	case "sqlite":
		store, err := sqlite.Open(cfg.QueueDBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open queue database: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "sheets":
		store := sheets.New(cfg.Sheets.SpreadsheetID, cfg.Sheets.APIToken,
			sheets.WithBaseURL(cfg.Sheets.BaseURL),
			sheets.WithWorksheet(cfg.Sheets.Worksheet),
		)
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}

func (c *commandContext) withStore(fn func(queue.AdminStore) error) error {
	store, closeStore, err := c.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(store)
}

func (c *commandContext) storageBackend(cfg *config.Config) (storage.Backend, error) {
	maxFileSize := int64(cfg.Storage.MaxFileSizeMB) * 1024 * 1024
	switch cfg.Storage.Backend {
	case "drive":
		return drive.New(cfg.Storage.APIToken,
			drive.WithBaseURL(cfg.Storage.BaseURL),
			drive.WithUploadBaseURL(cfg.Storage.UploadBaseURL),
			drive.WithPageSize(cfg.Storage.PageSize),
			drive.WithMaxFileSize(maxFileSize),
		), nil
	case "local":
		return local.New(
			local.WithProber(media.ProbeDuration(cfg.Combine.FFprobeBinary)),
			local.WithMaxFileSize(maxFileSize),
		), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (c *commandContext) buildRunner(cfg *config.Config, store queue.Store, logger *slog.Logger) (*runner.Runner, error) {
	backend, err := c.storageBackend(cfg)
	if err != nil {
		return nil, err
	}

	combiner := combine.NewCLI(
		combine.WithBinary(cfg.Combine.FFmpegBinary),
		combine.WithVideoBitrate(cfg.Combine.VideoBitrate),
	)

	opts := []runner.Option{
		runner.WithStoreTimeout(time.Duration(cfg.Queue.TimeoutSeconds) * time.Second),
		runner.WithStorageTimeout(time.Duration(cfg.Storage.TimeoutSeconds) * time.Second),
		runner.WithCombineTimeout(time.Duration(cfg.Combine.TimeoutSeconds) * time.Second),
	}
	if cfg.Selection.Seed != 0 {
		opts = append(opts, runner.WithRand(rand.New(rand.NewSource(cfg.Selection.Seed))))
	}

	return runner.New(store, backend, combiner, logger, cfg.Paths.StagingDir, opts...), nil
}
