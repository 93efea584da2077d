package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agencia-oeste/viajes-api/internal/pkg/metrics"
)

const channelBuffer = 256

// ErrWriterClosed is returned for jobs submitted after Close.
var ErrWriterClosed = errors.New("writer closed")

// Job is a unit of work run by the writer goroutine.
type Job func(ctx context.Context) error

type request struct {
	ctx    context.Context
	job    Job
	result chan error
}

// Writer runs submitted jobs one at a time on a single goroutine, so
// read-modify-write cycles on the resource it owns never interleave.
type Writer struct {
	name string
	jobs chan request
	quit chan struct{}
	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

// NewWriter starts the writer goroutine. name labels its logs and metrics.
func NewWriter(name string, log zerolog.Logger) *Writer {
	w := &Writer{
		name: name,
		jobs: make(chan request, channelBuffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		log:  log.With().Str("queue", name).Logger(),
	}
	go w.run()
	return w
}

// Do enqueues job and waits for its result. A job whose context is done
// before it is dequeued is skipped and reports the context error.
func (w *Writer) Do(ctx context.Context, job Job) error {
	req := request{ctx: ctx, job: job, result: make(chan error, 1)}

	select {
	case <-w.quit:
		return ErrWriterClosed
	default:
	}

	select {
	case w.jobs <- req:
		metrics.WriteQueueDepth.WithLabelValues(w.name).Set(float64(len(w.jobs)))
	case <-w.quit:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-w.done:
		// run may have finished the job just before exiting.
		select {
		case err := <-req.result:
			return err
		default:
			return ErrWriterClosed
		}
	}
}

// Close stops the writer after the job in progress, if any. Jobs still
// queued fail with ErrWriterClosed.
func (w *Writer) Close() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			w.drain()
			return
		case req := <-w.jobs:
			metrics.WriteQueueDepth.WithLabelValues(w.name).Set(float64(len(w.jobs)))
			req.result <- w.exec(req)
		}
	}
}

func (w *Writer) exec(req request) (err error) {
	if err := req.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			w.log.Error().Interface("panic", p).Msg("write job panicked")
			err = errors.New("write job panicked")
		}
		metrics.WriteDuration.WithLabelValues(w.name).Observe(time.Since(start).Seconds())
	}()
	return req.job(req.ctx)
}

func (w *Writer) drain() {
	for {
		select {
		case req := <-w.jobs:
			req.result <- ErrWriterClosed
		default:
			return
		}
	}
}
