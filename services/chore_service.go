package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/metrics"
	"bounceBackAPI/internal/notification"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/profile"
	"bounceBackAPI/internal/validation"
)

const sweepLockName = "sweep:chores"

// PushProvider delivers a push message to device tokens.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []string, p notification.Push) error
}

// Locker hands out a lease by name. acquired is false while someone else
// holds it.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

type ChoreService struct {
	store   store.Store
	logger  *zap.Logger
	locker  Locker
	lockTTL time.Duration
	push    PushProvider
	now     func() time.Time
}

func NewChoreService(st store.Store, logger *zap.Logger) *ChoreService {
	return &ChoreService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// SetLocker makes sweeps take a shared lease so overlapping runs skip.
func (s *ChoreService) SetLocker(l Locker, ttl time.Duration) {
	s.locker = l
	s.lockTTL = ttl
}

// SetPushProvider enables the "chores are ready again" digest after a sweep.
func (s *ChoreService) SetPushProvider(p PushProvider) {
	s.push = p
}

func (s *ChoreService) AddChore(ctx context.Context, uid string, req chore.AddChoreRequest) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	icon := req.Icon
	if icon == "" {
		icon = chore.DefaultIcon
	}

	data, err := store.Encode(chore.Chore{
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
		Importance:  req.Importance,
		Icon:        icon,
		CreatedAt:   isotime.New(s.now()),
	})
	if err != nil {
		return "", err
	}
	// New chores have never been completed, so the field is absent rather
	// than null.
	delete(data, "lastCompleted")

	id, err := s.store.Create(ctx, uid, store.Chores, data)
	if err != nil {
		return "", apperr.Upstream(err, "Failed to add chore")
	}
	return id, nil
}

func (s *ChoreService) GetChores(ctx context.Context, uid string) ([]chore.Chore, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	docs, err := s.store.List(ctx, uid, store.Chores)
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get chores")
	}
	return store.DecodeAll[chore.Chore](docs)
}

func (s *ChoreService) getChore(ctx context.Context, uid, choreID string) (chore.Chore, error) {
	doc, err := s.store.Get(ctx, uid, store.Chores, choreID)
	if err != nil {
		return chore.Chore{}, storeErr(err, "Chore not found", "Failed to get chore")
	}

	var c chore.Chore
	if err := store.Decode(doc, &c); err != nil {
		return chore.Chore{}, err
	}
	return c, nil
}

func (s *ChoreService) DeleteChore(ctx context.Context, uid string, req chore.IDRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.getChore(ctx, uid, req.ChoreID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, uid, store.Chores, req.ChoreID); err != nil {
		return apperr.Upstream(err, "Failed to delete chore")
	}
	return nil
}

func (s *ChoreService) CompleteChore(ctx context.Context, uid string, req chore.IDRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.getChore(ctx, uid, req.ChoreID); err != nil {
		return err
	}

	err := s.store.Update(ctx, uid, store.Chores, req.ChoreID, map[string]any{
		"isCompleted":     true,
		"lastCompleted":   isotime.Format(s.now()),
		"completionCount": store.Increment{By: 1},
	})
	if err != nil {
		return storeErr(err, "Chore not found", "Failed to complete chore")
	}
	return nil
}

func (s *ChoreService) UncompleteChore(ctx context.Context, uid string, req chore.IDRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	c, err := s.getChore(ctx, uid, req.ChoreID)
	if err != nil {
		return err
	}

	fields := chore.ResetFields()
	fields["completionCount"] = max(0, c.CompletionCount-1)

	if err := s.store.Update(ctx, uid, store.Chores, req.ChoreID, fields); err != nil {
		return storeErr(err, "Chore not found", "Failed to uncomplete chore")
	}
	return nil
}

var progressRanges = map[string]time.Duration{
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

// GetChoreProgress summarises completion over the trailing day, week, month
// or year. An unknown range uses the week window but is echoed back as sent.
func (s *ChoreService) GetChoreProgress(ctx context.Context, uid string, req chore.ProgressRequest) (chore.Progress, error) {
	chores, err := s.GetChores(ctx, uid)
	if err != nil {
		return chore.Progress{}, err
	}

	timeRange := req.TimeRange
	if timeRange == "" {
		timeRange = "week"
	}
	span, ok := progressRanges[timeRange]
	if !ok {
		span = progressRanges["week"]
	}
	start := s.now().Add(-span)

	p := chore.Progress{
		TotalChores: len(chores),
		TimeRange:   timeRange,
		ByImportance: map[chore.Importance]int{
			chore.ImportanceHigh:   0,
			chore.ImportanceMedium: 0,
			chore.ImportanceLow:    0,
		},
		ByFrequency: map[chore.Frequency]int{
			chore.FrequencyDay:   0,
			chore.FrequencyWeek:  0,
			chore.FrequencyMonth: 0,
			chore.FrequencyYear:  0,
		},
	}

	totalCount := 0
	for _, c := range chores {
		inRange := c.LastCompleted.Valid() && !c.LastCompleted.Before(start)
		if inRange {
			p.CompletedInTimeRange++
			if c.IsCompleted {
				p.CompletedChores++
			}
		}
		if _, ok := p.ByImportance[c.Importance]; ok {
			p.ByImportance[c.Importance]++
		}
		if _, ok := p.ByFrequency[c.Frequency]; ok {
			p.ByFrequency[c.Frequency]++
		}
		totalCount += c.CompletionCount
	}

	p.PendingChores = p.TotalChores - p.CompletedChores
	if p.TotalChores > 0 {
		p.CompletionRate = round2(float64(p.CompletedChores) / float64(p.TotalChores) * 100)
		p.AverageCompletionCount = float64(totalCount) / float64(p.TotalChores)
	}
	return p, nil
}

// SweepFailure is one chore (or whole user, when ChoreID is empty) the sweep
// could not process.
type SweepFailure struct {
	UID     string `json:"uid"`
	ChoreID string `json:"choreId,omitempty"`
	Err     string `json:"error"`
}

type SweepReport struct {
	Policy        chore.Policy   `json:"policy"`
	Now           time.Time      `json:"now"`
	Skipped       bool           `json:"skipped"`
	Users         int            `json:"users"`
	ChoresChecked int            `json:"choresChecked"`
	ChoresReset   int            `json:"choresReset"`
	Failures      []SweepFailure `json:"failures"`
}

// Partial reports whether any chore or user failed during the sweep.
func (r SweepReport) Partial() bool {
	return len(r.Failures) > 0
}

// ResetSweep walks every user's chores and flips the ones whose cycle has
// elapsed back to incomplete. A failure on one user or chore is recorded in
// the report and the sweep carries on; only failing to start returns an
// error.
func (s *ChoreService) ResetSweep(ctx context.Context, now time.Time, policy chore.Policy) (SweepReport, error) {
	report := SweepReport{Policy: policy, Now: now, Failures: []SweepFailure{}}

	if _, err := chore.ParsePolicy(string(policy)); err != nil {
		return report, apperr.Validation("Invalid policy")
	}

	if s.locker != nil {
		unlock, acquired, err := s.locker.TryLock(ctx, sweepLockName, s.lockTTL)
		if err != nil {
			return report, apperr.Upstream(err, "Failed to acquire sweep lock")
		}
		if !acquired {
			s.logger.Info("reset sweep already running elsewhere, skipping",
				zap.String("policy", string(policy)))
			report.Skipped = true
			return report, nil
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	defer func() {
		metrics.SweepDuration.WithLabelValues(string(policy)).Observe(time.Since(start).Seconds())
	}()

	uids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return report, apperr.Upstream(err, "Failed to list users")
	}

	s.logger.Info("reset sweep started",
		zap.String("policy", string(policy)),
		zap.Time("now", now),
		zap.Int("users", len(uids)))

	for _, uid := range uids {
		report.Users++
		names := s.resetUser(ctx, uid, now, policy, &report)
		if len(names) > 0 {
			s.notifyReset(ctx, uid, names)
		}
	}

	s.logger.Info("reset sweep finished",
		zap.String("policy", string(policy)),
		zap.Int("users", report.Users),
		zap.Int("checked", report.ChoresChecked),
		zap.Int("reset", report.ChoresReset),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("took", time.Since(start)))

	return report, nil
}

// resetUser returns the names of the chores it reset.
func (s *ChoreService) resetUser(ctx context.Context, uid string, now time.Time, policy chore.Policy, report *SweepReport) []string {
	docs, err := s.store.List(ctx, uid, store.Chores)
	if err != nil {
		s.recordFailure(report, uid, "", err)
		return nil
	}

	var names []string
	for _, doc := range docs {
		report.ChoresChecked++

		var c chore.Chore
		if err := store.Decode(doc, &c); err != nil {
			s.recordFailure(report, uid, doc.ID, err)
			continue
		}
		if !chore.EvaluateReset(c, now, policy).ShouldReset {
			continue
		}

		if err := s.store.Update(ctx, uid, store.Chores, c.ID, chore.ResetFields()); err != nil {
			s.recordFailure(report, uid, c.ID, err)
			continue
		}

		report.ChoresReset++
		metrics.ChoresReset.WithLabelValues(string(policy)).Inc()
		s.logger.Info("chore reset",
			zap.String("uid", uid),
			zap.String("chore_id", c.ID),
			zap.String("frequency", string(c.Frequency)))
		names = append(names, c.Name)
	}
	return names
}

func (s *ChoreService) recordFailure(report *SweepReport, uid, choreID string, err error) {
	report.Failures = append(report.Failures, SweepFailure{UID: uid, ChoreID: choreID, Err: err.Error()})
	metrics.ChoreResetFailures.WithLabelValues(string(report.Policy)).Inc()
	s.logger.Warn("chore reset failed, continuing",
		zap.String("uid", uid),
		zap.String("chore_id", choreID),
		zap.Error(err))
}

func (s *ChoreService) notifyReset(ctx context.Context, uid string, names []string) {
	if s.push == nil {
		return
	}

	data, err := s.store.GetUser(ctx, uid)
	if err != nil {
		s.logger.Debug("no user document for reset digest", zap.String("uid", uid), zap.Error(err))
		return
	}

	var user profile.User
	if err := store.Decode(store.Document{ID: uid, Data: data}, &user); err != nil {
		s.logger.Warn("unreadable user document", zap.String("uid", uid), zap.Error(err))
		return
	}
	if len(user.DeviceTokens) == 0 {
		return
	}

	if err := s.push.SendPush(ctx, user.DeviceTokens, notification.ChoresReset(names)); err != nil {
		s.logger.Warn("reset digest push failed", zap.String("uid", uid), zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
