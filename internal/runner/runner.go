package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arexur/video-combiner/internal/combine"
	"github.com/arexur/video-combiner/internal/logging"
	"github.com/arexur/video-combiner/internal/media"
	"github.com/arexur/video-combiner/internal/queue"
	"github.com/arexur/video-combiner/internal/selection"
	"github.com/arexur/video-combiner/internal/services"
	"github.com/arexur/video-combiner/internal/storage"
)

// Runner drives one queue-processing pass: claim a pending job, fetch its
// sources, combine them, upload the result, and finalize the row.
type Runner struct {
	store      queue.Store
	backend    storage.Backend
	combiner   combine.Combiner
	logger     *slog.Logger
	stagingDir string

	rng            *rand.Rand
	storeTimeout   time.Duration
	storageTimeout time.Duration
	combineTimeout time.Duration
}

// Option configures the runner.
type Option func(*Runner)

// WithRand injects the random source used for subset selection.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithStoreTimeout bounds queue store calls.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.storeTimeout = timeout
		}
	}
}

// WithStorageTimeout bounds folder listing, fetch, and upload calls.
func WithStorageTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.storageTimeout = timeout
		}
	}
}

// WithCombineTimeout bounds the external combine operation.
func WithCombineTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.combineTimeout = timeout
		}
	}
}

// New constructs a runner. The staging directory holds per-job scratch space
// and must exist.
func New(store queue.Store, backend storage.Backend, combiner combine.Combiner, logger *slog.Logger, stagingDir string, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{
		store:      store,
		backend:    backend,
		combiner:   combiner,
		logger:     logger.With(logging.String(logging.FieldComponent, "runner")),
		stagingDir: stagingDir,

		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		storeTimeout:   30 * time.Second,
		storageTimeout: 2 * time.Minute,
		combineTimeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// PassResult summarizes one queue-processing pass.
type PassResult struct {
	Claimed        bool
	JobID          string
	Outcome        queue.Outcome
	VideosCombined int
}

// RunOnce performs a single pass. No pending jobs is a clean no-op. Errors
// before any claim abort the pass without touching rows; errors after a claim
// finalize the row as failed and surface as a non-nil error so the process
// exits non-zero.
func (r *Runner) RunOnce(ctx context.Context) (PassResult, error) {
	rows, err := r.listPending(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("read job queue: %w", err)
	}

	candidates := selection.OrderPending(rows)
	if len(candidates) == 0 {
		r.logger.Info("no pending jobs")
		return PassResult{}, nil
	}
	r.logger.Info("found pending jobs", logging.Int("count", len(candidates)))

	// Walk the ordered candidates once; each lost claim race moves to the
	// next row instead of retrying the same one.
	for _, candidate := range candidates {
		row, err := r.claim(ctx, candidate.JobID)
		if errors.Is(err, queue.ErrAlreadyClaimed) || errors.Is(err, queue.ErrNotFound) {
			r.logger.Info("job claimed elsewhere, trying next candidate",
				logging.String(logging.FieldJobID, candidate.JobID))
			continue
		}
		if err != nil {
			return PassResult{}, fmt.Errorf("claim job %s: %w", candidate.JobID, err)
		}
		return r.process(ctx, row)
	}

	r.logger.Info("all pending jobs were claimed by other runners")
	return PassResult{}, nil
}

func (r *Runner) listPending(ctx context.Context) ([]*queue.Row, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	return r.store.ListPending(opCtx)
}

func (r *Runner) claim(ctx context.Context, jobID string) (*queue.Row, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	return r.store.Claim(opCtx, jobID)
}

// process owns a claimed row. Whatever happens, the row reaches a terminal
// status: step failures finalize as failed, and a deferred guard finalizes
// even when a step panics.
func (r *Runner) process(ctx context.Context, row *queue.Row) (result PassResult, err error) {
	jobCtx := services.WithJobID(ctx, row.JobID)
	logger := logging.WithContext(jobCtx, r.logger)
	logger.Info("processing job",
		logging.Int("max_videos", row.MaxVideos),
		logging.Duration("max_duration", row.MaxDuration))

	result = PassResult{Claimed: true, JobID: row.JobID}

	finalized := false
	finalize := func(outcome queue.Outcome) error {
		finalized = true
		result.Outcome = outcome
		opCtx, cancel := context.WithTimeout(context.WithoutCancel(jobCtx), r.storeTimeout)
		defer cancel()
		return r.store.Finalize(opCtx, row.JobID, outcome)
	}
	defer func() {
		if finalized {
			return
		}
		if ferr := finalize(queue.Failed("runner aborted unexpectedly")); ferr != nil {
			logger.Error("failed to finalize aborted job", logging.Error(ferr))
		}
	}()

	workDir, err := os.MkdirTemp(r.stagingDir, "job-"+row.JobID+"-")
	if err != nil {
		wrapped := services.Wrap(services.ErrConfiguration, "staging", "mkdir", "create scratch directory", err)
		r.finalizeFailed(logger, finalize, wrapped)
		return result, wrapped
	}
	defer os.RemoveAll(workDir)

	outputURL, combined, procErr := r.executeSteps(jobCtx, logger, row, workDir)
	if procErr != nil {
		r.finalizeFailed(logger, finalize, procErr)
		logger.Error("job failed", logging.Error(procErr))
		return result, procErr
	}

	outcome := queue.Succeeded(outputURL)
	outcome.Message = fmt.Sprintf("Successfully processed %d videos", combined)
	if ferr := finalize(outcome); ferr != nil {
		return result, fmt.Errorf("finalize job %s: %w", row.JobID, ferr)
	}
	result.VideosCombined = combined
	logger.Info("job succeeded",
		logging.Int("videos_combined", combined),
		logging.String("output_url", outputURL))
	return result, nil
}

func (r *Runner) finalizeFailed(logger *slog.Logger, finalize func(queue.Outcome) error, cause error) {
	if ferr := finalize(queue.Failed(failureMessage(cause))); ferr != nil {
		logger.Error("failed to finalize failed job", logging.Error(ferr))
	}
}

func (r *Runner) executeSteps(ctx context.Context, logger *slog.Logger, row *queue.Row, workDir string) (string, int, error) {
	r.note(ctx, logger, row.JobID, "Downloading videos...")

	files, err := r.listFolder(ctx, row.SourceFolderID)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTransient, "resolve", "list source folder", "", err)
	}

	picked, err := selection.Subset(files, row.MaxVideos, row.MaxDuration, r.rng)
	if err != nil {
		return "", 0, services.Wrap(services.ErrValidation, "resolve", "select sources", "no videos fit the job limits", err)
	}
	logger.Info("selected source videos",
		logging.Int("candidates", len(files)),
		logging.Int("selected", len(picked)))

	inputs := make([]string, 0, len(picked))
	for _, file := range picked {
		localPath, err := r.fetch(ctx, file, workDir)
		if err != nil {
			// A single bad source should not sink the job when others remain.
			logger.Warn("skipping source that failed to download",
				logging.String("file", file.Name), logging.Error(err))
			continue
		}
		inputs = append(inputs, localPath)
	}
	if len(inputs) == 0 {
		return "", 0, services.Wrap(services.ErrTransient, "fetch", "download sources", "failed to download any videos", nil)
	}

	r.note(ctx, logger, row.JobID, fmt.Sprintf("Combining %d videos...", len(inputs)))

	outputName := fmt.Sprintf("combined_%s_%s.mp4", row.JobID, shortID())
	outputPath := filepath.Join(workDir, outputName)
	combineCtx, cancel := context.WithTimeout(ctx, r.combineTimeout)
	err = r.combiner.Combine(combineCtx, inputs, outputPath)
	cancel()
	if err != nil {
		return "", 0, services.Wrap(services.ErrExternalTool, "combine", "concatenate videos", "", err)
	}

	r.note(ctx, logger, row.JobID, "Uploading result...")

	outputURL, err := r.upload(ctx, outputPath, row.OutputFolderID, outputName)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTransient, "upload", "store output", "", err)
	}
	return outputURL, len(inputs), nil
}

func (r *Runner) listFolder(ctx context.Context, folderID string) ([]media.File, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.storageTimeout)
	defer cancel()
	return r.backend.ListFolder(opCtx, folderID)
}

func (r *Runner) fetch(ctx context.Context, file media.File, destDir string) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.storageTimeout)
	defer cancel()
	return r.backend.Fetch(opCtx, file, destDir)
}

func (r *Runner) upload(ctx context.Context, localPath, folderID, name string) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.storageTimeout)
	defer cancel()
	return r.backend.Store(opCtx, localPath, folderID, name)
}

// note records best-effort progress on the row; failures are logged, never
// fatal to the run.
func (r *Runner) note(ctx context.Context, logger *slog.Logger, jobID, text string) {
	opCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	if err := r.store.SetMessage(opCtx, jobID, text); err != nil {
		logger.Warn("progress note not recorded", logging.Error(err))
	}
}

func failureMessage(err error) string {
	if err == nil {
		return "job failed without error detail"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "job failed without error detail"
	}
	return msg
}

func shortID() string {
	return uuid.NewString()[:8]
}
