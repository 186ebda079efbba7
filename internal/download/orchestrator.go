// Package download implements the asynchronous job lifecycle: it accepts
// download requests, executes them on a bounded worker pool, translates
// engine progress into expiring store writes, and reconciles the final
// artifact on disk.
package download

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediagrab/backend/internal/engine"
	apperrors "github.com/mediagrab/backend/internal/errors"
	"github.com/mediagrab/backend/internal/job"
	"github.com/mediagrab/backend/internal/logger"
	"github.com/mediagrab/backend/internal/validate"
)

const (
	DefaultWorkerCount   = 4
	DefaultQueueCapacity = 256
	DefaultJobTimeout    = 30 * time.Minute
)

// Notifier receives every job record the orchestrator writes, for live
// progress fan-out. Implementations must not block.
type Notifier interface {
	JobUpdated(rec job.Record)
}

// Archiver uploads a completed artifact to long-term storage, returning
// the storage key. Archival is best-effort and never fails a job.
type Archiver interface {
	Archive(ctx context.Context, jobID, path string) (string, error)
}

// Metrics is the subset of metrics the orchestrator reports.
type Metrics interface {
	JobSubmitted()
	JobCompleted()
	JobFailed()
	SetQueueDepth(n int)
}

// SubmitRequest is one download submission.
type SubmitRequest struct {
	URL     string
	Format  string
	Cookies string
}

// Config holds orchestrator configuration.
type Config struct {
	DownloadDir       string
	WorkerCount       int
	QueueCapacity     int
	JobTimeout        time.Duration
	PostprocessSettle time.Duration
}

// Orchestrator owns the job state machine and the worker pool that runs
// fetches out-of-band. Submissions return immediately; all failures inside
// the workers are converted into terminal store writes.
type Orchestrator struct {
	jobs     *job.Store
	engine   engine.Engine
	notifier Notifier
	archiver Archiver
	metrics  Metrics
	log      *logger.Logger

	downloadDir string
	jobTimeout  time.Duration
	settle      time.Duration

	queue    chan task
	wg       sync.WaitGroup
	stopChan chan struct{}
	mu       sync.RWMutex
	running  bool
	workers  int
}

type task struct {
	id      string
	url     string
	plan    FormatPlan
	cookies string
}

// Option configures optional orchestrator collaborators.
type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithArchiver(a Archiver) Option {
	return func(o *Orchestrator) { o.archiver = a }
}

func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an orchestrator. Start must be called before submissions are
// processed.
func New(jobs *job.Store, eng engine.Engine, cfg *Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = &Config{}
	}

	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	o := &Orchestrator{
		jobs:        jobs,
		engine:      eng,
		log:         logger.Default().WithComponent("download"),
		downloadDir: cfg.DownloadDir,
		jobTimeout:  timeout,
		settle:      cfg.PostprocessSettle,
		queue:       make(chan task, capacity),
		stopChan:    make(chan struct{}),
		workers:     workers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start launches the worker pool.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return
	}

	o.running = true
	o.stopChan = make(chan struct{})

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.worker(i)
	}

	o.log.Info(context.Background(), "worker pool started", map[string]interface{}{
		"workers": o.workers,
	})
}

// Stop drains the worker pool, waiting for in-flight jobs to finish or the
// context to expire. Queued but unstarted jobs are left to expire in the
// store.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = false
	close(o.stopChan)
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.log.Info(ctx, "worker pool stopped")
		return nil
	case <-ctx.Done():
		o.log.Warn(ctx, "worker pool shutdown timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the worker pool is currently running.
func (o *Orchestrator) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// Submit validates the request, seeds the job record and hands the fetch
// to the worker pool. Returns the new job id immediately; the download
// itself runs out-of-band. Validation failures create no job.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := validate.URL(req.URL); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Format) == "" {
		return "", apperrors.ValidationError("format is required")
	}

	id := uuid.New().String()

	if err := o.jobs.Save(ctx, job.Queued(id)); err != nil {
		return "", apperrors.StoreError("failed to create job").WithCause(err)
	}

	t := task{
		id:      id,
		url:     strings.TrimSpace(req.URL),
		plan:    DecodeSelector(req.Format),
		cookies: req.Cookies,
	}

	select {
	case o.queue <- t:
	default:
		// Queue saturated: surface the rejection both synchronously and
		// as the job's terminal state.
		o.saveRecord(ctx, job.Failed(id, "server is busy, try again later"))
		return "", apperrors.QueueFull()
	}

	if o.metrics != nil {
		o.metrics.JobSubmitted()
		o.metrics.SetQueueDepth(len(o.queue))
	}

	o.log.Info(ctx, "job submitted", map[string]interface{}{
		"job_id": id,
		"url":    t.url,
		"format": req.Format,
	})

	return id, nil
}

// Status returns the job record for polling. Absent or expired jobs map to
// the not_found sentinel; the read path never mutates.
func (o *Orchestrator) Status(ctx context.Context, id string) (job.Record, error) {
	rec, err := o.jobs.Get(ctx, id)
	if err != nil {
		if err == job.ErrNotFound {
			return job.NotFound(id), nil
		}
		return job.Record{}, apperrors.StoreError("failed to read job").WithCause(err)
	}
	return rec, nil
}

// ArtifactPath returns the resolved artifact path for a completed job.
func (o *Orchestrator) ArtifactPath(ctx context.Context, id string) (string, error) {
	path, err := o.jobs.ArtifactPath(ctx, id)
	if err != nil {
		if err == job.ErrNotFound {
			return "", apperrors.ArtifactMissing()
		}
		return "", apperrors.StoreError("failed to read artifact path").WithCause(err)
	}
	return path, nil
}

// worker is the main loop of one pool worker.
func (o *Orchestrator) worker(id int) {
	defer o.wg.Done()

	for {
		select {
		case <-o.stopChan:
			return
		case t := <-o.queue:
			if o.metrics != nil {
				o.metrics.SetQueueDepth(len(o.queue))
			}
			o.runJob(id, t)
		}
	}
}

// runJob is the out-of-band execution unit for one job. Every failure path
// ends in a terminal error record; nothing escapes the worker.
func (o *Orchestrator) runJob(workerID int, t task) {
	ctx, cancel := context.WithTimeout(context.Background(), o.jobTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			o.log.Error(ctx, "panic during job execution", nil, map[string]interface{}{
				"job_id": t.id,
				"panic":  fmt.Sprintf("%v", rec),
			})
			o.fail(ctx, t.id, "internal error during download")
		}
	}()

	o.log.Info(ctx, "job started", map[string]interface{}{
		"job_id": t.id,
		"worker": workerID,
	})

	o.saveRecord(ctx, job.Starting(t.id))

	cookiesFile, cleanup, err := engine.MaterializeCookies(t.cookies)
	if err != nil {
		o.fail(ctx, t.id, "failed to prepare credentials")
		return
	}
	defer cleanup()

	req := engine.FetchRequest{
		URL:         t.url,
		Format:      t.plan.Spec,
		OutputDir:   o.downloadDir,
		CookiesFile: cookiesFile,
		Progress: func(ev engine.ProgressEvent) {
			o.handleProgress(t.id, ev)
		},
	}
	if t.plan.ExtractAudio {
		req.ExtractAudio = true
		req.AudioFormat = targetAudioFormat
		req.AudioQuality = targetAudioQuality
	}

	res, err := o.engine.Fetch(ctx, req)
	if err != nil {
		o.log.Warn(ctx, "fetch failed", map[string]interface{}{
			"job_id": t.id,
			"error":  err.Error(),
		})
		o.fail(ctx, t.id, fmt.Sprintf("download failed: %v", err))
		return
	}

	path, size, err := o.resolveArtifact(res.Filename, t.plan.ExtractAudio)
	if err != nil {
		o.fail(ctx, t.id, err.Error())
		return
	}

	result := job.Result{Path: path, Size: size}

	if o.archiver != nil {
		key, err := o.archiver.Archive(ctx, t.id, path)
		if err != nil {
			o.log.Warn(ctx, "artifact archival failed", map[string]interface{}{
				"job_id": t.id,
				"error":  err.Error(),
			})
		} else {
			result.ArchiveKey = key
		}
	}

	o.saveRecord(ctx, job.Completed(t.id, result))
	if err := o.jobs.SaveArtifactPath(ctx, t.id, path); err != nil {
		o.log.Error(ctx, "failed to store artifact path", err, map[string]interface{}{
			"job_id": t.id,
		})
	}

	if o.metrics != nil {
		o.metrics.JobCompleted()
	}

	o.log.Info(ctx, "job completed", map[string]interface{}{
		"job_id": t.id,
		"path":   path,
		"size":   size,
	})
}

// handleProgress is the progress sink: it translates engine callbacks into
// store writes. Engine-reported completion is not written; the final
// completion write after Fetch returns is authoritative.
func (o *Orchestrator) handleProgress(id string, ev engine.ProgressEvent) {
	ctx := context.Background()

	switch ev.Status {
	case engine.ProgressDownloading:
		percent := 0
		if ev.TotalBytes > 0 {
			percent = int(float64(ev.DownloadedBytes) / float64(ev.TotalBytes) * 100)
		}
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}

		o.saveRecord(ctx, job.Downloading(id, job.Progress{
			Percent:    percent,
			Downloaded: ev.DownloadedBytes,
			Total:      ev.TotalBytes,
			Speed:      ev.Speed,
			ETA:        ev.ETA,
		}))

	case engine.ProgressFinished:
		// Intentionally no store write.

	case engine.ProgressError:
		o.saveRecord(ctx, job.Failed(id, "download failed"))
	}
}

// fail writes the terminal error record for a job.
func (o *Orchestrator) fail(ctx context.Context, id, msg string) {
	o.saveRecord(ctx, job.Failed(id, msg))
	if o.metrics != nil {
		o.metrics.JobFailed()
	}
}

// saveRecord persists a record and notifies subscribers. Store failures
// are logged, not propagated: the job keeps running on stale state rather
// than crashing the worker.
func (o *Orchestrator) saveRecord(ctx context.Context, rec job.Record) {
	if err := o.jobs.Save(ctx, rec); err != nil {
		o.log.Error(ctx, "failed to save job record", err, map[string]interface{}{
			"job_id": rec.ID,
			"status": string(rec.Status),
		})
		return
	}
	if o.notifier != nil {
		o.notifier.JobUpdated(rec)
	}
}
