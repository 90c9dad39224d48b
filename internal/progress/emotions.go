package progress

import (
	"sort"

	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/mood"
	"bounceBackAPI/internal/types/sentiment"
	"bounceBackAPI/internal/types/snapshot"
)

// SignificanceThreshold is the score an emotion must exceed to be reported.
const SignificanceThreshold = 0.5

// Analyzed is the model output attached to one stored entry. Journals and
// mood entries keep it under different field names.
type Analyzed struct {
	Emotion *sentiment.EmotionStats
	Mood    *sentiment.MoodStats
	Risk    *sentiment.RiskStats
}

func FromJournals(entries []journal.Entry) []Analyzed {
	out := make([]Analyzed, len(entries))
	for i, e := range entries {
		out[i] = Analyzed{Emotion: e.Emotion, Mood: e.Mood, Risk: e.Risk}
	}
	return out
}

// FromMoodEntries leaves Mood unset: a mood entry's "mood" field holds the
// emoji, so moodStrength for the section stays 0.
func FromMoodEntries(entries []mood.Entry) []Analyzed {
	out := make([]Analyzed, len(entries))
	for i, e := range entries {
		out[i] = Analyzed{Emotion: e.EmotionAnalysis, Risk: e.RiskAnalysis}
	}
	return out
}

// ProcessEmotions keeps the peak score of every emotion label above the
// threshold, averages signed mood strength over all entries and buckets the
// mean risk readings.
func ProcessEmotions(entries []Analyzed) snapshot.EmotionSummary {
	peaks := make(map[string]float64)
	var (
		strengthTotal float64
		riskTotal     float64
		levels        snapshot.RiskLevels
	)

	for _, e := range entries {
		if e.Emotion != nil {
			for _, s := range e.Emotion.PerSentence {
				for label, score := range s.EmotionScores {
					if score > SignificanceThreshold && score > peaks[label] {
						peaks[label] = score
					}
				}
			}
		}

		if e.Mood != nil {
			strengthTotal += e.Mood.SignedStrength
		}

		// A mean risk of exactly zero is not a reading.
		if e.Risk != nil && e.Risk.MeanRisk != nil && *e.Risk.MeanRisk != 0 {
			r := *e.Risk.MeanRisk
			switch {
			case r < 0.3:
				levels.Low++
			case r < 0.6:
				levels.Medium++
			default:
				levels.High++
			}
			riskTotal += r
		}
	}

	summary := snapshot.EmotionSummary{
		SignificantEmotions: rankEmotions(peaks),
		RiskLevels:          levels,
	}
	if len(entries) > 0 {
		summary.MoodStrength = round2(strengthTotal / float64(len(entries)))
	}
	if n := levels.Low + levels.Medium + levels.High; n > 0 {
		summary.AverageRisk = round2(riskTotal / float64(n))
	}
	return summary
}

func rankEmotions(peaks map[string]float64) []string {
	labels := make([]string, 0, len(peaks))
	for label := range peaks {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := peaks[labels[i]], peaks[labels[j]]
		if a != b {
			return a > b
		}
		return labels[i] < labels[j]
	})
	return labels
}
