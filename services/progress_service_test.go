package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/snapshot"
)

func newProgressService(st store.Store) *ProgressService {
	s := NewProgressService(st, zap.NewNop())
	s.now = clock
	return s
}

func seedProgressFixture(t *testing.T, st store.Store) {
	for i, age := range []time.Duration{1 * day, 3 * day, 10 * day, 20 * day} {
		seed(t, st, "u1", store.Journals, string(rune('a'+i)), map[string]any{
			"text":      "entry",
			"timestamp": ago(age),
			"mood":      map[string]any{"mean_polarity": 0.4, "mood_strength": 0.6, "signed_strength": 0.6},
			"risk":      map[string]any{"mean_risk": 0.2, "max_risk": 0.3},
		})
	}
	seed(t, st, "u1", store.MoodEntries, "m1", map[string]any{"mood": "🙂", "timestamp": ago(2 * day)})
	seed(t, st, "u1", store.Activities, "w1", map[string]any{
		"type": "workout", "startTime": ago(1 * day), "duration": 30,
	})
	seed(t, st, "u1", store.Chores, "c1", map[string]any{
		"name": "Dishes", "importance": "high", "isCompleted": true, "lastCompleted": ago(2 * day),
	})
	seed(t, st, "u1", store.Contacts, "p1", map[string]any{
		"name": "Sam", "priorityTag": "High", "lastContacted": ago(1 * day),
	})
}

func TestBuildSnapshotStoresTodaysKey(t *testing.T) {
	st := store.NewMemory()
	seedProgressFixture(t, st)
	s := newProgressService(st)

	snap, err := s.TrackProgress(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", snap.DateKey)
	assert.Equal(t, 1.5, snap.UserData.Journals.Analytics.EntriesPerWeek)
	assert.Equal(t, 0.5, snap.UserData.MoodEntries.Analytics.EntriesPerWeek)
	assert.Equal(t, 4.0, snap.UserData.MoodEntries.Analytics.AverageMood)
	assert.Equal(t, 30, snap.UserData.Activities.Averages.AvgDurationMinutes)
	assert.Equal(t, 1, snap.UserData.Chores.CompletedLastWeek)
	assert.Equal(t, 1, snap.UserData.Contacts.TotalActive)

	stored := getDoc(t, st, "u1", store.ProgressSnapshots, "2024-03-15")
	assert.Equal(t, "2024-03-15T12:00:00.000Z", stored["timestamp"])
	assert.NotContains(t, stored, "id")
}

func TestBuildSnapshotMergesIntoSameDay(t *testing.T) {
	st := store.NewMemory()
	seedProgressFixture(t, st)
	s := newProgressService(st)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "u1", store.ProgressSnapshots, "2024-03-15", map[string]any{"note": "kept"}, false))

	_, err := s.BuildSnapshot(ctx, "u1", fixedNow)
	require.NoError(t, err)
	seed(t, st, "u1", store.Journals, "late", map[string]any{"text": "later", "timestamp": ago(time.Hour)})
	_, err = s.BuildSnapshot(ctx, "u1", fixedNow.Add(time.Hour))
	require.NoError(t, err)

	docs, err := st.List(ctx, "u1", store.ProgressSnapshots)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	stored := docs[0].Data
	assert.Equal(t, "kept", stored["note"])
	journals := stored["userData"].(map[string]any)["journals"].(map[string]any)
	assert.Equal(t, 2.0, journals["analytics"].(map[string]any)["entriesPerWeek"])
}

func TestBuildSnapshotWritesNothingWhenAReadFails(t *testing.T) {
	st := store.NewMemory()
	seedProgressFixture(t, st)
	st.FailOn = func(op, collection, id string) error {
		if op == "list" && collection == store.Contacts {
			return errors.New("deadline exceeded")
		}
		return nil
	}
	s := newProgressService(st)

	_, err := s.BuildSnapshot(context.Background(), "u1", fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Equal(t, "Failed to track user progress", apperr.PublicMessage(err))

	st.FailOn = nil
	_, err = st.Get(context.Background(), "u1", store.ProgressSnapshots, "2024-03-15")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBuildSnapshotEmptyUser(t *testing.T) {
	s := newProgressService(store.NewMemory())

	snap, err := s.BuildSnapshot(context.Background(), "nobody", fixedNow)
	require.NoError(t, err)
	assert.Nil(t, snap.UserData.Journals.MostRecent)
	assert.Equal(t, 0.0, snap.UserData.Journals.Analytics.EntriesPerWeek)
	assert.Empty(t, snap.UserData.Contacts.TopContacts)
}

func TestGetSnapshot(t *testing.T) {
	st := store.NewMemory()
	seedProgressFixture(t, st)
	s := newProgressService(st)
	ctx := context.Background()

	_, err := s.GetSnapshot(ctx, "u1", snapshot.GetRequest{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = s.TrackProgress(ctx, "u1")
	require.NoError(t, err)

	snap, err := s.GetSnapshot(ctx, "u1", snapshot.GetRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", snap.DateKey)
	assert.Equal(t, snapshot.Version, snap.Metadata.Version)

	_, err = s.GetSnapshot(ctx, "u1", snapshot.GetRequest{DateKey: "15/03/2024"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	latest, err := s.LatestSnapshot(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-03-15", latest.DateKey)
}
