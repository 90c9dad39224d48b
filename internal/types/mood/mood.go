package mood

import (
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/sentiment"
)

type Entry struct {
	ID              string                  `json:"id"`
	Mood            string                  `json:"mood"`
	Note            string                  `json:"note"`
	Timestamp       isotime.Time            `json:"timestamp"`
	MoodAnalysis    *sentiment.MoodStats    `json:"moodAnalysis"`
	RiskAnalysis    *sentiment.RiskStats    `json:"riskAnalysis"`
	EmotionAnalysis *sentiment.EmotionStats `json:"emotionAnalysis"`
}

type AddEntryRequest struct {
	Mood      string        `json:"mood" validate:"required"`
	Note      string        `json:"note"`
	Timestamp *isotime.Time `json:"timestamp"`
}

// Scale maps the five mood glyphs offered by the client to 1 (very sad)
// through 5 (happy).
var Scale = map[string]int{
	"😭": 1,
	"😔": 2,
	"😐": 3,
	"🙂": 4,
	"😄": 5,
}

const NeutralScale = 3

// ScaleOf returns the numeric mood for a glyph, NeutralScale when unknown.
func ScaleOf(glyph string) int {
	if v, ok := Scale[glyph]; ok {
		return v
	}
	return NeutralScale
}
