package services

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/activity"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/validation"
)

type ActivityService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewActivityService(st store.Store, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// StartWorkout opens an active workout or outdoor activity and returns its id.
func (s *ActivityService) StartWorkout(ctx context.Context, uid string, req activity.StartRequest) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if err := validation.Struct(req); err != nil {
		return "", apperr.Validation("Invalid activity type")
	}

	kind := req.Type
	if kind == "" {
		kind = activity.TypeWorkout
	}

	data, err := store.Encode(activity.Activity{
		Type:      kind,
		Status:    activity.StatusActive,
		StartTime: isotime.New(s.now()),
	})
	if err != nil {
		return "", err
	}
	delete(data, "endTime")
	if kind == activity.TypeOutdoor {
		data["locations"] = []any{}
		data["distance"] = 0
	}

	id, err := s.store.Create(ctx, uid, store.Activities, data)
	if err != nil {
		return "", apperr.Upstream(err, "Failed to start %s tracking.", kind)
	}
	return id, nil
}

// EndWorkout completes an activity and credits its XP to the profile. XP
// defaults to one point per full minute.
func (s *ActivityService) EndWorkout(ctx context.Context, uid string, req activity.EndRequest) (int, error) {
	if err := requireUID(uid); err != nil {
		return 0, err
	}
	if req.WorkoutID == "" || req.Duration == nil {
		return 0, apperr.Validation("Workout ID and duration are required")
	}
	if err := validation.Struct(req); err != nil {
		return 0, err
	}

	kind := req.Type
	if kind == "" {
		kind = activity.TypeWorkout
	}

	doc, err := s.store.Get(ctx, uid, store.Activities, req.WorkoutID)
	if err != nil {
		return 0, storeErr(err, "Workout not found", "Failed to end workout")
	}
	var current activity.Activity
	if err := store.Decode(doc, &current); err != nil {
		return 0, err
	}
	if current.Type != kind {
		return 0, apperr.Validation("Invalid activity type")
	}

	xp := req.XPGained
	if xp == 0 {
		xp = int(math.Floor(*req.Duration / 60))
	}

	fields := map[string]any{
		"endTime":  isotime.Format(s.now()),
		"duration": *req.Duration,
		"status":   activity.StatusCompleted,
		"xpGained": xp,
	}
	if kind == activity.TypeOutdoor {
		fields["distance"] = req.Distance
		fields["locations"] = orEmpty(req.Locations)
		fields["finalPath"] = orEmpty(req.FinalPath)
	}

	if err := s.store.Update(ctx, uid, store.Activities, req.WorkoutID, fields); err != nil {
		return 0, storeErr(err, "Workout not found", "Failed to end workout")
	}

	if err := s.creditXP(ctx, uid, xp); err != nil {
		return 0, err
	}
	return xp, nil
}

func (s *ActivityService) creditXP(ctx context.Context, uid string, xp int) error {
	err := s.store.UpdateUser(ctx, uid, map[string]any{
		"profile.xp": store.Increment{By: int64(xp)},
	})
	if errors.Is(err, store.ErrNotFound) {
		err = s.store.SetUser(ctx, uid, map[string]any{
			"profile": map[string]any{"xp": xp},
		}, true)
	}
	if err != nil {
		return apperr.Upstream(err, "Failed to update XP")
	}
	return nil
}

func (s *ActivityService) GetActivities(ctx context.Context, uid string) ([]activity.Activity, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, uid, store.Activities, store.Query{Field: "startTime", Desc: true})
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to fetch activities")
	}
	return store.DecodeAll[activity.Activity](docs)
}

func orEmpty(locs []activity.Location) []activity.Location {
	if locs == nil {
		return []activity.Location{}
	}
	return locs
}
