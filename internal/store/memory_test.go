package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Create(ctx, "u1", Chores, map[string]any{
		"name":            "Dishes",
		"completionCount": 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, m.Update(ctx, "u1", Chores, id, map[string]any{
		"completionCount": Increment{By: 1},
		"isCompleted":     true,
	}))

	doc, err := m.Get(ctx, "u1", Chores, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Dishes", doc.Data["name"])
	assert.Equal(t, float64(3), doc.Data["completionCount"])
	assert.Equal(t, true, doc.Data["isCompleted"])
}

func TestMemoryMissingDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "u1", Chores, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = m.Update(ctx, "u1", Chores, "nope", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "u1", Contacts, "c1", map[string]any{"name": "Ana"}, false))

	doc, err := m.Get(ctx, "u1", Contacts, "c1")
	require.NoError(t, err)
	doc.Data["name"] = "changed"

	again, err := m.Get(ctx, "u1", Contacts, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Data["name"])
}

func TestMemoryQuery(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for id, ts := range map[string]any{
		"a": "2024-03-01T10:00:00.000Z",
		"b": "2024-03-05T10:00:00.000Z",
		"c": "2024-03-10T10:00:00.000Z",
		"d": nil,
	} {
		require.NoError(t, m.Set(ctx, "u1", Journals, id, map[string]any{"timestamp": ts}, false))
	}

	docs, err := m.Query(ctx, "u1", Journals, Query{
		Field: "timestamp",
		Since: "2024-03-02T00:00:00.000Z",
		Desc:  true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)

	docs, err = m.Query(ctx, "u1", Journals, Query{Field: "timestamp", Limit: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)
}

func TestMemorySetMerge(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SetUser(ctx, "u1", map[string]any{
		"profile": map[string]any{"name": "Ana", "xp": 10},
	}, false))
	require.NoError(t, m.SetUser(ctx, "u1", map[string]any{
		"profile": map[string]any{"onboardingComplete": true},
	}, true))

	user, err := m.GetUser(ctx, "u1")
	require.NoError(t, err)
	profile := user["profile"].(map[string]any)
	assert.Equal(t, "Ana", profile["name"])
	assert.Equal(t, float64(10), profile["xp"])
	assert.Equal(t, true, profile["onboardingComplete"])
}

func TestMemoryUpdateUserDottedPath(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SetUser(ctx, "u1", map[string]any{
		"profile": map[string]any{"xp": 5},
	}, false))
	require.NoError(t, m.UpdateUser(ctx, "u1", map[string]any{
		"profile.xp":   Increment{By: 7},
		"profile.name": "Sam",
	}))

	user, err := m.GetUser(ctx, "u1")
	require.NoError(t, err)
	profile := user["profile"].(map[string]any)
	assert.Equal(t, float64(12), profile["xp"])
	assert.Equal(t, "Sam", profile["name"])
}

func TestMemoryDeleteAllAndListUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "u2", Chores, "c1", map[string]any{}, false))
	require.NoError(t, m.Set(ctx, "u2", Journals, "j1", map[string]any{}, false))
	require.NoError(t, m.SetUser(ctx, "u1", map[string]any{}, false))

	ids, err := m.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)

	require.NoError(t, m.DeleteAll(ctx, "u2", []string{Chores}))

	chores, err := m.List(ctx, "u2", Chores)
	require.NoError(t, err)
	assert.Empty(t, chores)

	journals, err := m.List(ctx, "u2", Journals)
	require.NoError(t, err)
	assert.Len(t, journals, 1)
}

func TestMemoryFailOn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")
	m.FailOn = func(op, collection, id string) error {
		if op == "update" && id == "bad" {
			return boom
		}
		return nil
	}

	require.NoError(t, m.Set(ctx, "u1", Chores, "bad", map[string]any{}, false))
	err := m.Update(ctx, "u1", Chores, "bad", map[string]any{"x": 1})
	assert.ErrorIs(t, err, boom)
}
