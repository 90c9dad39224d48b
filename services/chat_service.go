package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/llm"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/activity"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/mood"
	"bounceBackAPI/internal/types/snapshot"
	"bounceBackAPI/internal/validation"
)

// ChatModel completes a conversation under a system prompt.
type ChatModel interface {
	Complete(ctx context.Context, system string, history []llm.Message) (string, error)
}

type ChatRequest struct {
	Message []llm.Message `json:"message" validate:"required,min=1,dive"`
	Mode    string        `json:"mode"`
}

type ChatResponse struct {
	Reply  string    `json:"reply"`
	Parsed llm.Reply `json:"parsed"`
}

type ChatService struct {
	store    store.Store
	progress *ProgressService
	model    ChatModel
	logger   *zap.Logger
	now      func() time.Time
}

func NewChatService(st store.Store, progress *ProgressService, model ChatModel, logger *zap.Logger) *ChatService {
	return &ChatService{
		store:    st,
		progress: progress,
		model:    model,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ChatService) ChatWithBounceBot(ctx context.Context, uid string, req ChatRequest) (ChatResponse, error) {
	if err := requireUID(uid); err != nil {
		return ChatResponse{}, err
	}
	if err := validation.Struct(req); err != nil {
		return ChatResponse{}, err
	}
	if s.model == nil {
		return ChatResponse{}, apperr.Upstream(nil, "Chat is not configured")
	}

	if _, err := s.store.GetUser(ctx, uid); err != nil {
		return ChatResponse{}, storeErr(err, "User data not found", "Failed to load user data")
	}

	state, err := s.BuildState(ctx, uid)
	if err != nil {
		return ChatResponse{}, err
	}

	system := llm.SystemPrompt(llm.ParseMode(req.Mode)) + "\n\n" + llm.FormatContext(state)
	reply, err := s.model.Complete(ctx, system, req.Message)
	if err != nil {
		return ChatResponse{}, err
	}

	return ChatResponse{Reply: reply, Parsed: llm.ParseReply(reply)}, nil
}

// BuildState gathers what the assistant is told about the user: latest
// mood, last journal date, outdoor activities since local midnight and the
// latest progress snapshot. Proximity to avoidance zones is only known on
// the device, so NearTrigger stays false here.
func (s *ChatService) BuildState(ctx context.Context, uid string) (llm.State, error) {
	state := llm.State{Mood: "neutral"}

	moods, err := s.store.Query(ctx, uid, store.MoodEntries, store.Query{Field: "timestamp", Desc: true, Limit: 1})
	if err != nil {
		return llm.State{}, apperr.Upstream(err, "Failed to load mood entries")
	}
	if len(moods) > 0 {
		var m mood.Entry
		if err := store.Decode(moods[0], &m); err != nil {
			return llm.State{}, err
		}
		state.Mood = m.Mood
	}

	journals, err := s.store.Query(ctx, uid, store.Journals, store.Query{Field: "timestamp", Desc: true, Limit: 1})
	if err != nil {
		return llm.State{}, apperr.Upstream(err, "Failed to load journal entries")
	}
	if len(journals) > 0 {
		var j journal.Entry
		if err := store.Decode(journals[0], &j); err != nil {
			return llm.State{}, err
		}
		if j.Timestamp.Valid() {
			t := j.Timestamp.Time
			state.LastJournal = &t
		}
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	acts, err := s.store.Query(ctx, uid, store.Activities, store.Query{Field: "startTime", Since: isotime.Format(midnight)})
	if err != nil {
		return llm.State{}, apperr.Upstream(err, "Failed to load activities")
	}
	decoded, err := store.DecodeAll[activity.Activity](acts)
	if err != nil {
		return llm.State{}, err
	}
	for _, a := range decoded {
		if a.Type == activity.TypeOutdoor {
			state.OutdoorToday++
		}
	}

	if s.progress != nil {
		snap, err := s.progress.LatestSnapshot(ctx, uid)
		if err != nil {
			s.logger.Warn("chat: snapshot unavailable", zap.String("uid", uid), zap.Error(err))
		} else if snap != nil {
			state.ProgressDigest = digest(*snap)
		}
	}

	return state, nil
}

func digest(snap snapshot.ProgressSnapshot) string {
	d := snap.UserData
	return fmt.Sprintf("average mood %.2f/5, %.1f journal entries and %.1f activities per week, %d active chores, %d contacts reached this week.",
		d.MoodEntries.Analytics.AverageMood,
		d.Journals.Analytics.EntriesPerWeek,
		d.Activities.Averages.ActivitiesPerWeek,
		d.Chores.ActiveChores,
		d.Contacts.TotalActive)
}
