package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)

	before := time.Date(2024, 3, 15, 1, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 15, 3, 0, 0, 0, loc), NextRun(before, 3, loc))

	exactly := time.Date(2024, 3, 15, 3, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 16, 3, 0, 0, 0, loc), NextRun(exactly, 3, loc))

	endOfMonth := time.Date(2024, 2, 29, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), NextRun(endOfMonth, 0, loc))
}

func TestNextRunConvertsZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC) // 06:00 on the 16th in loc

	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, loc), NextRun(now, 0, loc))
}

func TestRunOnceSkipsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex

	job := NewDailyJob("test", 0, time.UTC, func(ctx context.Context, now time.Time) error {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
		return nil
	}, zap.NewNop())

	done := make(chan bool)
	go func() { done <- job.RunOnce(context.Background(), time.Now()) }()
	<-started

	assert.False(t, job.RunOnce(context.Background(), time.Now()))
	close(release)
	assert.True(t, <-done)

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestRunOnceReportsRunOnError(t *testing.T) {
	job := NewDailyJob("failing", 0, time.UTC, func(ctx context.Context, now time.Time) error {
		return errors.New("boom")
	}, zap.NewNop())

	assert.True(t, job.RunOnce(context.Background(), time.Now()))
	assert.True(t, job.RunOnce(context.Background(), time.Now()))
}
