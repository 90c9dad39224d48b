package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/mood"
	"bounceBackAPI/internal/types/sentiment"
	"bounceBackAPI/internal/validation"
)

// MoodEntriesLimit caps how many mood entries are listed.
const MoodEntriesLimit = 100

// Analyzer scores free text for mood, risk and emotions.
type Analyzer interface {
	Analyze(ctx context.Context, paragraph string) (sentiment.Result, error)
}

// JournalService owns journal and mood entries. Both are sent through the
// analyzer before they are stored.
type JournalService struct {
	store    store.Store
	analyzer Analyzer
	logger   *zap.Logger
	now      func() time.Time
}

// NewJournalService accepts a nil analyzer, in which case entries are stored
// without analysis.
func NewJournalService(st store.Store, analyzer Analyzer, logger *zap.Logger) *JournalService {
	return &JournalService{
		store:    st,
		analyzer: analyzer,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *JournalService) analyze(ctx context.Context, text string) (sentiment.Result, error) {
	if s.analyzer == nil {
		return sentiment.Result{}, nil
	}
	return s.analyzer.Analyze(ctx, text)
}

func (s *JournalService) stamp(ts *isotime.Time) isotime.Time {
	if ts != nil && ts.Valid() {
		return *ts
	}
	return isotime.New(s.now())
}

func (s *JournalService) AddJournalEntry(ctx context.Context, uid string, req journal.AddEntryRequest) (journal.Entry, error) {
	if err := requireUID(uid); err != nil {
		return journal.Entry{}, err
	}
	if err := validation.Struct(req); err != nil {
		return journal.Entry{}, err
	}

	result, err := s.analyze(ctx, req.Entry)
	if err != nil {
		return journal.Entry{}, err
	}

	entry := journal.Entry{
		Text:      req.Entry,
		Timestamp: s.stamp(req.Timestamp),
		Mood:      result.Mood,
		Risk:      result.Risk,
		Emotion:   result.Emotion,
	}

	data, err := store.Encode(entry)
	if err != nil {
		return journal.Entry{}, err
	}
	entry.ID, err = s.store.Create(ctx, uid, store.Journals, data)
	if err != nil {
		return journal.Entry{}, apperr.Upstream(err, "Failed to add journal entry")
	}
	return entry, nil
}

func (s *JournalService) GetJournalEntries(ctx context.Context, uid string) ([]journal.Entry, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, uid, store.Journals, store.Query{Field: "timestamp", Desc: true})
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get journal entries")
	}
	return store.DecodeAll[journal.Entry](docs)
}

func (s *JournalService) DeleteJournalEntry(ctx context.Context, uid string, req journal.DeleteEntryRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, uid, store.Journals, req.EntryID); err != nil {
		return apperr.Upstream(err, "Failed to delete journal entry")
	}
	return nil
}

// AddMoodEntry stores a mood glyph with its analysed note.
func (s *JournalService) AddMoodEntry(ctx context.Context, uid string, req mood.AddEntryRequest) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if err := validation.Struct(req); err != nil {
		return "", apperr.Validation("Mood is required.")
	}

	result, err := s.analyze(ctx, req.Note)
	if err != nil {
		return "", err
	}

	data, err := store.Encode(mood.Entry{
		Mood:            req.Mood,
		Note:            req.Note,
		Timestamp:       s.stamp(req.Timestamp),
		MoodAnalysis:    result.Mood,
		RiskAnalysis:    result.Risk,
		EmotionAnalysis: result.Emotion,
	})
	if err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, uid, store.MoodEntries, data)
	if err != nil {
		return "", apperr.Upstream(err, "Failed to add mood entry")
	}
	return id, nil
}

func (s *JournalService) GetMoodEntries(ctx context.Context, uid string) ([]mood.Entry, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, uid, store.MoodEntries, store.Query{
		Field: "timestamp",
		Desc:  true,
		Limit: MoodEntriesLimit,
	})
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get mood entries")
	}
	return store.DecodeAll[mood.Entry](docs)
}
