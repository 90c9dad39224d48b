// Package workers runs the in-process scheduled jobs.
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc runs one scheduled pass at now.
type JobFunc func(ctx context.Context, now time.Time) error

// DailyJob fires run once a day at hour:00 in loc. A run that is still going
// when the next one is due is not doubled up.
type DailyJob struct {
	name    string
	hour    int
	loc     *time.Location
	run     JobFunc
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

func NewDailyJob(name string, hour int, loc *time.Location, run JobFunc, logger *zap.Logger) *DailyJob {
	if loc == nil {
		loc = time.Local
	}
	return &DailyJob{
		name:    name,
		hour:    hour,
		loc:     loc,
		run:     run,
		logger:  logger,
		timeout: 30 * time.Minute,
	}
}

// NextRun is the first hour:00 in loc strictly after now.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// Start schedules the job in the background until ctx is cancelled.
func (j *DailyJob) Start(ctx context.Context) {
	go j.loop(ctx)
}

func (j *DailyJob) loop(ctx context.Context) {
	for {
		next := NextRun(time.Now(), j.hour, j.loc)
		j.logger.Info("next scheduled run",
			zap.String("job", j.name),
			zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("scheduler stopped", zap.String("job", j.name))
			return
		case fired := <-timer.C:
			go j.RunOnce(ctx, fired.In(j.loc))
		}
	}
}

// RunOnce runs the job now unless a previous run is still in progress. It
// reports whether the job ran.
func (j *DailyJob) RunOnce(ctx context.Context, now time.Time) bool {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		j.logger.Info("job already running, skipping", zap.String("job", j.name))
		return false
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.run(runCtx, now); err != nil {
		j.logger.Error("scheduled job failed",
			zap.String("job", j.name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return true
	}

	j.logger.Info("scheduled job finished",
		zap.String("job", j.name),
		zap.Duration("took", time.Since(start)))
	return true
}
