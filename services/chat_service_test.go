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
	"bounceBackAPI/internal/llm"
	"bounceBackAPI/internal/store"
)

type fakeModel struct {
	system  string
	history []llm.Message
	reply   string
	err     error
}

func (f *fakeModel) Complete(ctx context.Context, system string, history []llm.Message) (string, error) {
	f.system = system
	f.history = history
	return f.reply, f.err
}

func newChatService(st store.Store, model ChatModel) *ChatService {
	progress := newProgressService(st)
	s := NewChatService(st, progress, model, zap.NewNop())
	s.now = clock
	return s
}

var hello = ChatRequest{Message: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}}

func TestChatWithBounceBot(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.SetUser(ctx, "u1", map[string]any{"profile": map[string]any{"name": "Jo"}}, false))
	seed(t, st, "u1", store.MoodEntries, "m1", map[string]any{"mood": "😔", "timestamp": ago(time.Hour)})
	seed(t, st, "u1", store.Journals, "j1", map[string]any{"text": "x", "timestamp": ago(2 * day)})
	seed(t, st, "u1", store.Activities, "a1", map[string]any{"type": "outdoor_activity", "startTime": ago(time.Hour)})
	seed(t, st, "u1", store.Activities, "a2", map[string]any{"type": "outdoor_activity", "startTime": ago(day)})

	model := &fakeModel{reply: "```json\n{\"message\":\"Hey Jo\",\"actions\":[\"breathe\"]}\n```"}
	s := newChatService(st, model)

	resp, err := s.ChatWithBounceBot(ctx, "u1", ChatRequest{Message: hello.Message, Mode: "Real Talk"})
	require.NoError(t, err)
	assert.Equal(t, "Hey Jo", resp.Parsed.Message)
	assert.Equal(t, []string{"breathe"}, resp.Parsed.Actions)
	assert.Equal(t, []string{}, resp.Parsed.Tags)

	assert.Contains(t, model.system, "Real Talk")
	assert.Contains(t, model.system, "User mood: 😔.")
	assert.Contains(t, model.system, "Last journal entry: 2024-03-13.")
	assert.Contains(t, model.system, "Outdoor activities today: 1.")
	assert.Equal(t, hello.Message, model.history)
}

func TestChatIncludesProgressDigest(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.SetUser(ctx, "u1", map[string]any{}, false))
	s := newChatService(st, &fakeModel{reply: "plain"})

	_, err := s.progress.BuildSnapshot(ctx, "u1", fixedNow)
	require.NoError(t, err)

	state, err := s.BuildState(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "neutral", state.Mood)
	assert.Nil(t, state.LastJournal)
	assert.Contains(t, state.ProgressDigest, "average mood 0.00/5")
}

func TestChatErrors(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	_, err := newChatService(st, &fakeModel{}).ChatWithBounceBot(ctx, "u1", hello)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = newChatService(st, nil).ChatWithBounceBot(ctx, "u1", hello)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	_, err = newChatService(st, &fakeModel{}).ChatWithBounceBot(ctx, "u1", ChatRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, st.SetUser(ctx, "u1", map[string]any{}, false))
	upstream := apperr.Upstream(errors.New("429"), "Failed to reach the assistant")
	_, err = newChatService(st, &fakeModel{err: upstream}).ChatWithBounceBot(ctx, "u1", hello)
	assert.ErrorIs(t, err, upstream)
}
