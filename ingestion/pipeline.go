package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hearsay/ai"
	"github.com/poiesic/hearsay/storage"
	"github.com/poiesic/hearsay/watcher"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPollInterval is the delay between directory scans.
	DefaultPollInterval = 10 * time.Second

	// DefaultFileTimeout bounds the work on a single file.
	DefaultFileTimeout = 10 * time.Minute
)

// Pipeline polls a candidate source and records each new file exactly once.
type Pipeline struct {
	store       storage.RecordRepository
	transcriber ai.Transcriber
	extractor   Extractor
	source      CandidateSource

	// pool has a single non-blocking slot; a busy slot skips the tick.
	pool     *ants.Pool
	busy     atomic.Bool
	inflight sync.WaitGroup

	pollInterval time.Duration
	fileTimeout  time.Duration
	archiveDir   string
	logger       logrus.FieldLogger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPollInterval sets the delay between ticks.
// Default is DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return fmt.Errorf("poll interval %s: %w", d, ErrInvalidInterval)
		}
		p.pollInterval = d
		return nil
	}
}

// WithFileTimeout bounds the transcription, extraction and commit of one file.
// Default is DefaultFileTimeout.
func WithFileTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return fmt.Errorf("file timeout %s: %w", d, ErrInvalidInterval)
		}
		p.fileTimeout = d
		return nil
	}
}

// WithArchiveDir moves each successfully recorded audio file into dir.
// An empty dir leaves files in place.
func WithArchiveDir(dir string) Option {
	return func(p *Pipeline) error {
		p.archiveDir = dir
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is logrus.StandardLogger().
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPipeline creates a pipeline over the given collaborators.
// Call Release when done.
func NewPipeline(
	store storage.RecordRepository,
	transcriber ai.Transcriber,
	extractor Extractor,
	source CandidateSource,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if transcriber == nil {
		return nil, ErrTranscriberRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}

	p := &Pipeline{
		store:        store,
		transcriber:  transcriber,
		extractor:    extractor,
		source:       source,
		pollInterval: DefaultPollInterval,
		fileTimeout:  DefaultFileTimeout,
		logger:       logrus.StandardLogger(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.WithField("component", "pipeline")

	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p, nil
}

// Tick lists the current candidates and hands them to the worker.
// It reports whether a batch was enqueued. When the worker is still busy with
// a previous batch the tick is skipped: false with a nil error.
func (p *Pipeline) Tick(ctx context.Context) (bool, error) {
	if p.busy.Load() {
		p.logger.Debug("worker busy, skipping tick")
		return false, nil
	}

	candidates, err := p.source.Candidates(ctx)
	if err != nil {
		return false, fmt.Errorf("listing candidates: %w", err)
	}
	if len(candidates) == 0 {
		return false, nil
	}

	if !p.busy.CompareAndSwap(false, true) {
		return false, nil
	}
	p.inflight.Add(1)

	err = p.pool.Submit(func() {
		defer p.inflight.Done()
		defer p.busy.Store(false)
		p.processBatch(ctx, candidates)
	})
	if err != nil {
		p.busy.Store(false)
		p.inflight.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			// The previous task has returned but its worker is not idle yet.
			p.logger.Debug("worker slot not yet free, skipping tick")
			return false, nil
		}
		return false, fmt.Errorf("submitting batch: %w", err)
	}

	p.logger.WithField("candidates", len(candidates)).Debug("batch enqueued")
	return true, nil
}

// Run ticks immediately and then every poll interval until ctx is done.
// On cancellation it waits for the in-flight batch, which stops after its
// current file, and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.WithField("interval", p.pollInterval).Info("pipeline started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down, waiting for in-flight batch")
			p.Wait()
			p.logger.Info("pipeline stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Wait blocks until no batch is in flight.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Busy reports whether a batch is in flight.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) tick(ctx context.Context) {
	if _, err := p.Tick(ctx); err != nil {
		// A missing or unreadable folder only costs this tick.
		p.logger.WithError(err).Warn("tick failed")
	}
}

// ensure the watcher satisfies the source contract
var _ CandidateSource = (*watcher.Watcher)(nil)
