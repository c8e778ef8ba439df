package media

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
	"github.com/OtabekovsProject/bot-media/internal/infrastructure/metrics"
)

const (
	opDownload  = "download"
	opSearch    = "search"
	opRecognize = "recognize"

	resultOK      = "ok"
	resultError   = "error"
	resultTimeout = "timeout"
)

// Fetcher materializes remote media on disk
type Fetcher interface {
	Download(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error)
	SearchAndFetch(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error)
}

// Recognizer identifies songs in local files
type Recognizer interface {
	Recognize(ctx context.Context, path string) (*entities.Track, error)
}

// Pool bounds the number of concurrent media jobs.
// A job waits at most queueTimeout for a slot and runs at most jobTimeout.
type Pool struct {
	fetcher      Fetcher
	recognizer   Recognizer
	sem          *semaphore.Weighted
	jobTimeout   time.Duration
	queueTimeout time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

var _ deps.MediaRunner = (*Pool)(nil)

// NewPool creates a new bounded media runner
func NewPool(
	fetcher Fetcher,
	recognizer Recognizer,
	cfg *config.MediaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Pool {
	return &Pool{
		fetcher:      fetcher,
		recognizer:   recognizer,
		sem:          semaphore.NewWeighted(int64(cfg.MaxJobs)),
		jobTimeout:   cfg.JobTimeout,
		queueTimeout: cfg.QueueTimeout,
		metrics:      m,
		logger:       logger.With().Str("component", "media_pool").Logger(),
	}
}

// Download runs a URL download in the pool
func (p *Pool) Download(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	var res *entities.MediaResult
	err := p.do(ctx, opDownload, func(ctx context.Context) error {
		var err error
		res, err = p.fetcher.Download(ctx, job)
		return err
	})
	return res, err
}

// SearchAndFetch runs a song search in the pool
func (p *Pool) SearchAndFetch(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	var res *entities.MediaResult
	err := p.do(ctx, opSearch, func(ctx context.Context) error {
		var err error
		res, err = p.fetcher.SearchAndFetch(ctx, job)
		return err
	})
	return res, err
}

// Recognize runs song recognition in the pool
func (p *Pool) Recognize(ctx context.Context, path string) (*entities.Track, error) {
	var track *entities.Track
	err := p.do(ctx, opRecognize, func(ctx context.Context) error {
		var err error
		track, err = p.recognizer.Recognize(ctx, path)
		return err
	})
	return track, err
}

func (p *Pool) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(jobCtx)

	result := resultOK
	switch {
	case err == nil:
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result = resultTimeout
	default:
		result = resultError
	}
	p.metrics.RecordMediaJob(op, result, time.Since(start))

	if err != nil {
		p.logger.Warn().Err(err).Str("op", op).Str("result", result).Msg("Media job failed")
		return errors.Join(boterrors.ErrMediaJobFailed, err)
	}
	return nil
}

func (p *Pool) acquire(ctx context.Context) error {
	waitCtx := ctx
	if p.queueTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.queueTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.metrics.PoolRejected()
		return boterrors.ErrPoolSaturated
	}

	p.metrics.PoolAcquired()
	return nil
}

func (p *Pool) release() {
	p.sem.Release(1)
	p.metrics.PoolReleased()
}
