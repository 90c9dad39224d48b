// Package sentiment mirrors the payload returned by the mood/risk/emotion
// model API for a paragraph of text.
package sentiment

type MoodStats struct {
	Sentences      []string  `json:"sentences,omitempty"`
	Moods          []float64 `json:"moods,omitempty"`
	MeanPolarity   float64   `json:"mean_polarity"`
	MoodStrength   float64   `json:"mood_strength"`
	SignedStrength float64   `json:"signed_strength"`
}

// RiskStats.MeanRisk is a pointer so a reading of 0 is kept apart from a
// missing one.
type RiskStats struct {
	Sentences  []string  `json:"sentences,omitempty"`
	RiskScores []float64 `json:"risk_scores,omitempty"`
	MeanRisk   *float64  `json:"mean_risk"`
	StdRisk    float64   `json:"std_risk"`
	MaxRisk    float64   `json:"max_risk"`
	MinRisk    float64   `json:"min_risk"`
}

type SentenceEmotions struct {
	Sentence          string             `json:"sentence"`
	EmotionScores     map[string]float64 `json:"emotion_scores"`
	PredictedEmotions []string           `json:"predicted_emotions,omitempty"`
}

type EmotionStats struct {
	PerSentence []SentenceEmotions `json:"per_sentence"`
}

type Result struct {
	Mood    *MoodStats    `json:"mood"`
	Risk    *RiskStats    `json:"risk"`
	Emotion *EmotionStats `json:"emotion"`
}
