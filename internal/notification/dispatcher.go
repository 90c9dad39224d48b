package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a push synchronously.
type Sender interface {
	SendPush(ctx context.Context, tokens []string, p Push) error
}

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrStopped   = errors.New("notification dispatcher stopped")
)

type dispatchJob struct {
	tokens []string
	push   Push
}

// Dispatcher hands pushes to a small worker pool so callers such as the
// reset sweep never wait on FCM.
type Dispatcher struct {
	sender   Sender
	logger   *zap.Logger
	workers  int
	jobQueue chan dispatchJob
	wg       sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	enqueueTimeout time.Duration
	sendTimeout    time.Duration
}

func NewDispatcher(sender Sender, workers int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sender:         sender,
		logger:         logger,
		workers:        workers,
		jobQueue:       make(chan dispatchJob, 100),
		enqueueTimeout: 5 * time.Second,
		sendTimeout:    10 * time.Second,
	}
	d.startWorkers()
	return d
}

func (d *Dispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobQueue {
		d.processJob(job)
	}
}

func (d *Dispatcher) processJob(job dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.SendPush(ctx, job.tokens, job.push); err != nil {
		d.logger.Warn("push dispatch failed",
			zap.String("title", job.push.Title),
			zap.Int("tokens", len(job.tokens)),
			zap.Error(err))
	}
}

// SendPush queues p for delivery. It returns ErrQueueFull when the queue
// stays full for the enqueue timeout.
func (d *Dispatcher) SendPush(ctx context.Context, tokens []string, p Push) error {
	if len(tokens) == 0 {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	job := dispatchJob{tokens: append([]string(nil), tokens...), push: p}
	timer := time.NewTimer(d.enqueueTimeout)
	defer timer.Stop()

	select {
	case d.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrQueueFull
	}
}

// Stop delivers whatever is already queued and waits for the workers. Later
// SendPush calls return ErrStopped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.jobQueue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
