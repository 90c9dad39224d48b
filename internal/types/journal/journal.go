package journal

import (
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/sentiment"
)

type Entry struct {
	ID        string                  `json:"id"`
	Text      string                  `json:"text"`
	Timestamp isotime.Time            `json:"timestamp"`
	Mood      *sentiment.MoodStats    `json:"mood"`
	Risk      *sentiment.RiskStats    `json:"risk"`
	Emotion   *sentiment.EmotionStats `json:"emotion"`
}

type AddEntryRequest struct {
	Entry     string        `json:"entry" validate:"required"`
	Timestamp *isotime.Time `json:"timestamp"`
}

type DeleteEntryRequest struct {
	EntryID string `json:"entryId" validate:"required"`
}

const WelcomeText = "Welcome to Bounce Back! This is your first journal entry."
