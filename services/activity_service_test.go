package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/activity"
)

func newActivityService(st store.Store) *ActivityService {
	s := NewActivityService(st, zap.NewNop())
	s.now = clock
	return s
}

func seconds(v float64) *float64 { return &v }

func TestWorkoutLifecycleCreditsXP(t *testing.T) {
	st := store.NewMemory()
	s := newActivityService(st)
	ctx := context.Background()
	require.NoError(t, st.SetUser(ctx, "u1", map[string]any{"profile": map[string]any{"xp": 10}}, false))

	id, err := s.StartWorkout(ctx, "u1", activity.StartRequest{})
	require.NoError(t, err)
	started := getDoc(t, st, "u1", store.Activities, id)
	assert.Equal(t, "workout", started["type"])
	assert.Equal(t, "active", started["status"])
	assert.NotContains(t, started, "endTime")

	xp, err := s.EndWorkout(ctx, "u1", activity.EndRequest{WorkoutID: id, Duration: seconds(185)})
	require.NoError(t, err)
	assert.Equal(t, 3, xp)

	ended := getDoc(t, st, "u1", store.Activities, id)
	assert.Equal(t, "completed", ended["status"])
	assert.Equal(t, float64(185), ended["duration"])

	user, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(13), user["profile"].(map[string]any)["xp"])
}

func TestEndWorkoutCreatesProfileXP(t *testing.T) {
	st := store.NewMemory()
	s := newActivityService(st)
	ctx := context.Background()

	id, err := s.StartWorkout(ctx, "u1", activity.StartRequest{Type: activity.TypeOutdoor})
	require.NoError(t, err)
	assert.Equal(t, []any{}, getDoc(t, st, "u1", store.Activities, id)["locations"])

	xp, err := s.EndWorkout(ctx, "u1", activity.EndRequest{
		WorkoutID: id,
		Duration:  seconds(600),
		Type:      activity.TypeOutdoor,
		Distance:  1200,
		XPGained:  25,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, xp)

	user, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(25), user["profile"].(map[string]any)["xp"])
	assert.Equal(t, float64(1200), getDoc(t, st, "u1", store.Activities, id)["distance"])
}

func TestEndWorkoutErrors(t *testing.T) {
	st := store.NewMemory()
	s := newActivityService(st)
	ctx := context.Background()

	_, err := s.EndWorkout(ctx, "u1", activity.EndRequest{WorkoutID: "w1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.EndWorkout(ctx, "u1", activity.EndRequest{WorkoutID: "missing", Duration: seconds(60)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	id, err := s.StartWorkout(ctx, "u1", activity.StartRequest{})
	require.NoError(t, err)
	_, err = s.EndWorkout(ctx, "u1", activity.EndRequest{WorkoutID: id, Duration: seconds(60), Type: activity.TypeOutdoor})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.StartWorkout(ctx, "u1", activity.StartRequest{Type: "swim"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetActivitiesNewestFirst(t *testing.T) {
	st := store.NewMemory()
	s := newActivityService(st)
	seed(t, st, "u1", store.Activities, "old", map[string]any{"type": "workout", "startTime": ago(2 * day)})
	seed(t, st, "u1", store.Activities, "new", map[string]any{"type": "workout", "startTime": ago(day)})

	acts, err := s.GetActivities(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "new", acts[0].ID)
}
