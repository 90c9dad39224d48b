package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/metrics"
	"bounceBackAPI/internal/progress"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/activity"
	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/internal/types/contact"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/mood"
	"bounceBackAPI/internal/types/snapshot"
)

type ProgressService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewProgressService(st store.Store, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// TrackProgress builds and stores today's snapshot for the caller.
func (s *ProgressService) TrackProgress(ctx context.Context, uid string) (snapshot.ProgressSnapshot, error) {
	if err := requireUID(uid); err != nil {
		return snapshot.ProgressSnapshot{}, err
	}
	return s.BuildSnapshot(ctx, uid, s.now())
}

// BuildSnapshot reads the user's window, aggregates it and merges the result
// into progressSnapshots/{date}. Any failure aborts before the write.
func (s *ProgressService) BuildSnapshot(ctx context.Context, uid string, now time.Time) (snapshot.ProgressSnapshot, error) {
	in, err := s.readInput(ctx, uid, now)
	if err != nil {
		metrics.SnapshotsBuilt.WithLabelValues("error").Inc()
		s.logger.Error("failed to read progress data", zap.String("uid", uid), zap.Error(err))
		return snapshot.ProgressSnapshot{}, apperr.Upstream(err, "Failed to track user progress")
	}

	snap := progress.Build(in, now)

	data, err := store.Encode(snap)
	if err != nil {
		metrics.SnapshotsBuilt.WithLabelValues("error").Inc()
		return snapshot.ProgressSnapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.store.Set(ctx, uid, store.ProgressSnapshots, snap.DateKey, data, true); err != nil {
		metrics.SnapshotsBuilt.WithLabelValues("error").Inc()
		s.logger.Error("failed to store snapshot", zap.String("uid", uid), zap.Error(err))
		return snapshot.ProgressSnapshot{}, apperr.Upstream(err, "Failed to track user progress")
	}

	metrics.SnapshotsBuilt.WithLabelValues("ok").Inc()
	s.logger.Info("progress snapshot stored",
		zap.String("uid", uid),
		zap.String("date_key", snap.DateKey))
	return snap, nil
}

// readInput fans the five reads out and waits for all of them. The first
// failure cancels the rest.
func (s *ProgressService) readInput(ctx context.Context, uid string, now time.Time) (progress.Input, error) {
	since := isotime.Format(progress.WindowStart(now))
	var in progress.Input

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		docs, err := s.store.Query(gctx, uid, store.Journals, store.Query{Field: "timestamp", Since: since, Desc: true})
		if err != nil {
			return fmt.Errorf("read journals: %w", err)
		}
		in.Journals, err = store.DecodeAll[journal.Entry](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.Query(gctx, uid, store.MoodEntries, store.Query{Field: "timestamp", Since: since, Desc: true})
		if err != nil {
			return fmt.Errorf("read mood entries: %w", err)
		}
		in.MoodEntries, err = store.DecodeAll[mood.Entry](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.Query(gctx, uid, store.Activities, store.Query{Field: "startTime", Since: since, Desc: true})
		if err != nil {
			return fmt.Errorf("read activities: %w", err)
		}
		in.Activities, err = store.DecodeAll[activity.Activity](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.List(gctx, uid, store.Chores)
		if err != nil {
			return fmt.Errorf("read chores: %w", err)
		}
		in.Chores, err = store.DecodeAll[chore.Chore](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.List(gctx, uid, store.Contacts)
		if err != nil {
			return fmt.Errorf("read contacts: %w", err)
		}
		in.Contacts, err = store.DecodeAll[contact.Contact](docs)
		return err
	})

	if err := g.Wait(); err != nil {
		return progress.Input{}, err
	}
	return in, nil
}

// GetSnapshot returns a stored snapshot, today's when dateKey is empty.
func (s *ProgressService) GetSnapshot(ctx context.Context, uid string, req snapshot.GetRequest) (snapshot.ProgressSnapshot, error) {
	if err := requireUID(uid); err != nil {
		return snapshot.ProgressSnapshot{}, err
	}

	dateKey := req.DateKey
	if dateKey == "" {
		dateKey = progress.DateKey(s.now())
	} else if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		return snapshot.ProgressSnapshot{}, apperr.Validation("Invalid dateKey")
	}

	doc, err := s.store.Get(ctx, uid, store.ProgressSnapshots, dateKey)
	if err != nil {
		return snapshot.ProgressSnapshot{}, storeErr(err, "Snapshot not found", "Failed to get snapshot")
	}

	var snap snapshot.ProgressSnapshot
	if err := store.Decode(doc, &snap); err != nil {
		return snapshot.ProgressSnapshot{}, err
	}
	snap.DateKey = dateKey
	return snap, nil
}

// LatestSnapshot returns the most recent stored snapshot, or nil when the
// user has none.
func (s *ProgressService) LatestSnapshot(ctx context.Context, uid string) (*snapshot.ProgressSnapshot, error) {
	docs, err := s.store.Query(ctx, uid, store.ProgressSnapshots, store.Query{Field: "timestamp", Desc: true, Limit: 1})
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get snapshot")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var snap snapshot.ProgressSnapshot
	if err := store.Decode(docs[0], &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
