package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/redis/go-redis/v9"
)

// Handler processes one job payload. Returning an error wrapped with
// Permanent skips the remaining retries.
type Handler interface {
	Handle(ctx context.Context, payload json.RawMessage) error
}

type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f HandlerFunc) Handle(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

type WorkerOptions struct {
	Concurrency int
	MaxAttempts int
	// PollTimeout bounds a single blocking pop so cancellation is noticed.
	PollTimeout time.Duration
}

// Worker consumes one named queue.
type Worker struct {
	client  redis.UniversalClient
	name    string
	handler Handler
	logger  logging.Logger
	opts    WorkerOptions
}

func NewWorker(client redis.UniversalClient, name string, h Handler, l logging.Logger, opts WorkerOptions) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = time.Second
	}
	return &Worker{
		client:  client,
		name:    name,
		handler: h,
		logger:  l.With("module", "worker", "queue", name),
		opts:    opts,
	}
}

// Run recovers jobs left in the processing list by a previous run and then
// consumes the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	n, err := w.recover(ctx)
	if err != nil {
		return fmt.Errorf("recover %s: %w", w.name, err)
	}
	if n > 0 {
		w.logger.Warn(ctx, "requeued unfinished jobs", "count", n)
	}

	w.logger.Info(ctx, "Starting worker", "concurrency", w.opts.Concurrency)

	var wg sync.WaitGroup
	for i := 0; i < w.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()

	w.logger.Info(context.Background(), "Worker stopped")
	return nil
}

func (w *Worker) loop(ctx context.Context) {
	for ctx.Err() == nil {
		if _, err := w.processOne(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error(ctx, "queue error", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.opts.PollTimeout):
			}
		}
	}
}

// recover moves everything from the processing list back to the queue.
func (w *Worker) recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := w.client.LMove(ctx, processingKey(w.name), pendingKey(w.name), "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// processOne handles at most one job. It reports whether a job was taken.
func (w *Worker) processOne(ctx context.Context) (bool, error) {
	raw, err := w.client.BLMove(ctx, pendingKey(w.name), processingKey(w.name), "RIGHT", "LEFT", w.opts.PollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		w.logger.Error(ctx, "malformed job", "error", err)
		jobsProcessedTotal.WithLabelValues(w.name, resultFailed).Inc()
		return true, w.settle(ctx, raw, failedKey(w.name), raw)
	}

	herr := w.handler.Handle(ctx, env.Payload)

	// bookkeeping must survive shutdown once the handler has run
	ctx = context.WithoutCancel(ctx)
	if herr == nil {
		jobsProcessedTotal.WithLabelValues(w.name, resultDone).Inc()
		return true, w.client.LRem(ctx, processingKey(w.name), 1, raw).Err()
	}

	env.Attempts++
	if IsPermanent(herr) || env.Attempts >= w.opts.MaxAttempts {
		w.logger.Error(ctx, "job failed", "job_id", env.ID, "attempts", env.Attempts, "error", herr)
		env.LastError = herr.Error()
		jobsProcessedTotal.WithLabelValues(w.name, resultFailed).Inc()
		return true, w.settleEnvelope(ctx, raw, failedKey(w.name), env)
	}

	w.logger.Warn(ctx, "job will be retried", "job_id", env.ID, "attempts", env.Attempts, "error", herr)
	jobsProcessedTotal.WithLabelValues(w.name, resultRetried).Inc()
	return true, w.settleEnvelope(ctx, raw, pendingKey(w.name), env)
}

func (w *Worker) settleEnvelope(ctx context.Context, raw, dst string, env Envelope) error {
	next, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return w.settle(ctx, raw, dst, string(next))
}

// settle atomically drops raw from the processing list and pushes next on dst.
func (w *Worker) settle(ctx context.Context, raw, dst, next string) error {
	_, err := w.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, processingKey(w.name), 1, raw)
		p.LPush(ctx, dst, next)
		return nil
	})
	return err
}
