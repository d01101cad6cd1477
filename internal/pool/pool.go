package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectern/internal/capture"
	"lectern/internal/config"
	"lectern/internal/cue"
	"lectern/internal/logging"
	"lectern/internal/queue"
	"lectern/internal/segments"
	"lectern/internal/session"
	"lectern/internal/transcript"
)

// Pool fans queued jobs out to N isolated worker contexts sharing one
// authenticated session. Workers start staggered, drain the queue until
// empty, and release their contexts unconditionally.
type Pool struct {
	cfg      *config.Config
	store    *queue.Store
	segments *segments.Store
	factory  capture.ContextFactory
	logger   *slog.Logger
}

// New constructs a pool over the shared queue store and segment store.
func New(cfg *config.Config, store *queue.Store, segStore *segments.Store, factory capture.ContextFactory, logger *slog.Logger) *Pool {
	return &Pool{
		cfg:      cfg,
		store:    store,
		segments: segStore,
		factory:  factory,
		logger:   logging.NewComponentLogger(logger, "pool"),
	}
}

// Run drives the queue to exhaustion with the given concurrency. The summary
// is only meaningful once every worker has closed; Run joins them all before
// returning. A failing job never stops the pool; only a nil credential
// bundle or zero concurrency is rejected up front.
func (p *Pool) Run(ctx context.Context, creds session.Credentials, concurrency int) (*RunSummary, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}
	if creds.Empty() {
		return nil, fmt.Errorf("refusing to start workers without session credentials")
	}

	runID := uuid.NewString()
	started := time.Now()
	stagger := time.Duration(p.cfg.Workers.StaggerSeconds) * time.Second

	p.logger.Info("starting run",
		logging.String("run_id", runID),
		logging.Int("workers", concurrency),
		logging.Duration("stagger", stagger),
	)

	var wg sync.WaitGroup
	for index := 0; index < concurrency; index++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			p.runWorker(ctx, index, creds, time.Duration(index)*stagger)
		}(index)
	}
	wg.Wait()

	summary, err := p.summarize(ctx, runID, time.Since(started))
	if err != nil {
		return nil, err
	}
	p.logger.Info("run finished",
		logging.String("run_id", runID),
		logging.Int("total", summary.Total),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// runWorker walks one worker through its whole lifecycle: staggered start,
// context acquisition and seeding, queue draining, unconditional release.
func (p *Pool) runWorker(ctx context.Context, index int, creds session.Credentials, delay time.Duration) {
	workerCtx := capture.WithWorker(ctx, index)
	logger := logging.WithContext(workerCtx, p.logger)

	if delay > 0 {
		logger.Debug("staggering start", logging.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			logger.Warn("cancelled before start")
			return
		}
	}

	// Each worker gets its own copy of the credentials; no worker can reach
	// the canonical bundle or another worker's copy.
	runner, err := p.factory.NewContext(workerCtx, creds.Clone())
	if err != nil {
		logger.Error("acquire context", logging.Error(err))
		return
	}
	defer func() {
		if closeErr := runner.Close(); closeErr != nil {
			logger.Warn("release context", logging.Error(closeErr))
		}
		logger.Debug("worker closed")
	}()
	logger.Debug("worker seeded")

	for {
		if ctx.Err() != nil {
			logger.Warn("cancelled while draining")
			return
		}
		job, err := p.store.ClaimNext(workerCtx)
		if err != nil {
			logger.Error("claim next job", logging.Error(err))
			return
		}
		if job == nil {
			logger.Debug("queue exhausted")
			return
		}
		p.processJob(workerCtx, runner, job)
	}
}

// processJob runs one job end to end and records its outcome. Failures are
// logged and recorded against the job; they never propagate to the worker
// loop.
func (p *Pool) processJob(ctx context.Context, runner capture.Runner, job *queue.Job) {
	jobCtx := capture.WithJobID(ctx, job.ID)
	logger := logging.WithContext(jobCtx, p.logger).With(
		logging.Args(
			logging.String(logging.FieldSection, job.SectionLabel),
			logging.String(logging.FieldTitle, job.Title),
		)...)

	fail := func(reason error) {
		logger.Error("job failed", logging.String("job", job.Identity()), logging.Error(reason))
		if err := p.store.MarkFailed(context.WithoutCancel(jobCtx), job.ID, reason.Error()); err != nil {
			logger.Error("record failure", logging.Error(err))
		}
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("job panicked: %v", r))
		}
	}()

	logger.Info("processing job")

	playbackCtx, cancel := context.WithTimeout(jobCtx, time.Duration(p.cfg.Workers.PlaybackTimeoutSeconds)*time.Second)
	result, err := runner.Run(playbackCtx, capture.Request{
		SectionLabel:     job.SectionLabel,
		Title:            job.Title,
		LectureID:        job.LectureID,
		SourceURL:        job.SourceURL,
		DiscoveryTimeout: time.Duration(p.cfg.Workers.DiscoveryTimeoutSeconds) * time.Second,
	}, p.segments)
	cancel()
	if err != nil {
		fail(capture.Wrap(nil, "capture", "run", job.LectureID, err))
		return
	}
	if result.VideoID == "" {
		fail(capture.Wrap(capture.ErrNoVideoID, "capture", "discover", job.LectureID, nil))
		return
	}
	if err := p.store.SetVideoID(jobCtx, job.ID, result.VideoID); err != nil {
		logger.Warn("record video id", logging.Error(err))
	}
	if result.EndReason == capture.EndTimeout {
		// Not fatal to the job: assemble whatever arrived in the window.
		logger.Warn("playback wait timed out", logging.String(logging.FieldVideoID, result.VideoID))
	}

	document, err := p.assemble(result.VideoID)
	if err != nil {
		fail(err)
		return
	}

	outPath := transcript.OutputPath(p.cfg.Paths.TranscriptDir, job.SectionLabel, job.Title)
	if err := transcript.Write(outPath, document); err != nil {
		fail(capture.Wrap(nil, "output", "write", outPath, err))
		return
	}

	if err := p.store.MarkCompleted(context.WithoutCancel(jobCtx), job.ID); err != nil {
		logger.Error("record completion", logging.Error(err))
		return
	}
	logger.Info("job completed",
		logging.String(logging.FieldVideoID, result.VideoID),
		logging.String("transcript", outPath),
	)
}

// assemble gathers every stored segment for the video and produces the final
// document.
func (p *Pool) assemble(videoID string) (string, error) {
	contents, err := p.segments.ReadAll(videoID)
	if err != nil {
		return "", capture.Wrap(nil, "assembly", "read segments", videoID, err)
	}
	if len(contents) == 0 {
		return "", capture.Wrap(capture.ErrNoSegments, "assembly", "gather", videoID, nil)
	}

	var cues []cue.Cue
	for _, data := range contents {
		cues = append(cues, cue.Decode(data)...)
	}

	document, err := transcript.Assemble(cues)
	if err != nil {
		return "", capture.Wrap(capture.ErrEmptyTranscript, "assembly", "assemble", videoID, err)
	}
	return document, nil
}

func (p *Pool) summarize(ctx context.Context, runID string, elapsed time.Duration) (*RunSummary, error) {
	counts, err := p.store.Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize run: %w", err)
	}
	failedJobs, err := p.store.Failed(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect failed jobs: %w", err)
	}

	summary := &RunSummary{
		RunID:     runID,
		Total:     counts.Total,
		Succeeded: counts.Completed,
		Failed:    counts.Failed,
		Remaining: counts.Pending + counts.Processing,
		Elapsed:   elapsed,
	}
	for _, job := range failedJobs {
		summary.FailedJobs = append(summary.FailedJobs, FailedJob{
			SectionLabel: job.SectionLabel,
			Title:        job.Title,
			LectureID:    job.LectureID,
			Reason:       job.ErrorMessage,
		})
	}
	return summary, nil
}
