package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/arexur/video-combiner/internal/logging"
	"github.com/arexur/video-combiner/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Claim and process one pending job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			// One runner per host; a concurrent invocation exits cleanly so
			// overlapping CI triggers never double-process.
			lockPath := filepath.Join(cfg.Paths.LogDir, "video-combiner.lock")
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				logger.Info("another runner holds the lock, nothing to do",
					logging.String("lock_path", lockPath))
				return nil
			}
			defer func() {
				_ = lock.Unlock()
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			jobRunner, err := ctx.buildRunner(cfg, store, logger)
			if err != nil {
				return err
			}

			result, err := jobRunner.RunOnce(runCtx)

			out := cmd.OutOrStdout()
			switch {
			case result.Claimed && result.Outcome.Status == queue.StatusSucceeded:
				fmt.Fprintf(out, "Job %s succeeded: %s\n", result.JobID, result.Outcome.OutputURL)
			case result.Claimed:
				fmt.Fprintf(out, "Job %s failed: %s\n", result.JobID, result.Outcome.Message)
			case err == nil:
				fmt.Fprintln(out, "No jobs processed")
			}
			return err
		},
	}
}
