// Package progress turns a user's recent records into a ProgressSnapshot.
// Nothing here reads the clock or the store; callers supply both the records
// and now.
package progress

import (
	"math"
	"time"

	"bounceBackAPI/internal/types/activity"
	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/internal/types/contact"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/mood"
	"bounceBackAPI/internal/types/snapshot"
)

const (
	Window       = 14 * 24 * time.Hour
	RecentWindow = 7 * 24 * time.Hour

	// windowWeeks converts window counts into weekly rates.
	windowWeeks = 2

	textPreviewLimit = 200
)

// Input holds the records read for one user. Journals and MoodEntries are
// newest first by timestamp, Activities newest first by startTime.
type Input struct {
	Journals    []journal.Entry
	MoodEntries []mood.Entry
	Activities  []activity.Activity
	Chores      []chore.Chore
	Contacts    []contact.Contact
}

func WindowStart(now time.Time) time.Time {
	return now.Add(-Window)
}

// DateKey is the UTC calendar date a snapshot taken at now is stored under.
func DateKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

func Build(in Input, now time.Time) snapshot.ProgressSnapshot {
	stamp := isotime.Format(now)
	weekAgo := now.Add(-RecentWindow)

	return snapshot.ProgressSnapshot{
		DateKey:   DateKey(now),
		Timestamp: stamp,
		UserData: snapshot.UserData{
			Journals:    buildJournals(in.Journals),
			MoodEntries: buildMoods(in.MoodEntries),
			Activities:  buildActivities(in.Activities),
			Chores:      buildChores(in.Chores, weekAgo),
			Contacts:    buildContacts(in.Contacts, weekAgo),
			TimeRange: snapshot.TimeRange{
				Start: isotime.Format(WindowStart(now)),
				End:   stamp,
			},
		},
		Metadata: snapshot.Metadata{
			Version:      snapshot.Version,
			CalculatedAt: stamp,
			UpdatedAt:    stamp,
			TimeRange:    snapshot.RangeName,
		},
	}
}

func buildJournals(entries []journal.Entry) snapshot.JournalSection {
	section := snapshot.JournalSection{
		Analytics: snapshot.JournalAnalytics{
			EntriesPerWeek: perWeek(len(entries)),
			EmotionSummary: ProcessEmotions(FromJournals(entries)),
		},
	}

	if len(entries) > 0 {
		latest := entries[0]
		recent := &snapshot.RecentJournal{
			Timestamp: formatTime(latest.Timestamp),
			Text:      Preview(latest.Text),
		}
		if latest.Mood != nil {
			recent.Mood = snapshot.JournalMood{
				Strength:     latest.Mood.SignedStrength,
				MeanPolarity: latest.Mood.MeanPolarity,
			}
		}
		if latest.Risk != nil {
			if latest.Risk.MeanRisk != nil {
				recent.Risk.Mean = *latest.Risk.MeanRisk
			}
			recent.Risk.Max = latest.Risk.MaxRisk
		}
		section.MostRecent = recent
	}
	return section
}

func buildMoods(entries []mood.Entry) snapshot.MoodSection {
	total := 0
	for _, e := range entries {
		total += mood.ScaleOf(e.Mood)
	}
	avg := 0.0
	if len(entries) > 0 {
		avg = round2(float64(total) / float64(len(entries)))
	}

	section := snapshot.MoodSection{
		Analytics: snapshot.MoodAnalytics{
			EntriesPerWeek: perWeek(len(entries)),
			AverageMood:    avg,
			EmotionSummary: ProcessEmotions(FromMoodEntries(entries)),
		},
	}

	if len(entries) > 0 {
		latest := entries[0]
		recent := &snapshot.RecentMood{
			Timestamp: formatTime(latest.Timestamp),
			MoodScale: mood.ScaleOf(latest.Mood),
			Note:      latest.Note,
		}
		if latest.MoodAnalysis != nil {
			recent.Analysis.MeanPolarity = latest.MoodAnalysis.MeanPolarity
			recent.Analysis.SignedStrength = latest.MoodAnalysis.SignedStrength
		}
		if latest.RiskAnalysis != nil && latest.RiskAnalysis.MeanRisk != nil {
			recent.Analysis.Risk = *latest.RiskAnalysis.MeanRisk
		}
		section.MostRecent = recent
	}
	return section
}

func buildActivities(acts []activity.Activity) snapshot.ActivitySection {
	var (
		totalDuration float64
		dist          snapshot.TypeDistribution
	)
	for _, a := range acts {
		totalDuration += a.Duration
		switch a.Type {
		case activity.TypeWorkout:
			dist.Workout++
		case activity.TypeOutdoor:
			dist.Outdoor++
		}
	}

	avgDuration := 0
	if len(acts) > 0 {
		avgDuration = int(math.Round(totalDuration / float64(len(acts))))
	}

	section := snapshot.ActivitySection{
		Averages: snapshot.ActivityAverages{
			ActivitiesPerWeek:  perWeek(len(acts)),
			AvgDurationMinutes: avgDuration,
			TypeDistribution:   dist,
		},
	}
	if len(acts) > 0 {
		latest := acts[0]
		section.MostRecent = &snapshot.RecentActivity{
			Timestamp: formatTime(latest.StartTime),
			Type:      string(latest.Type),
			Duration:  latest.Duration,
		}
	}
	return section
}

func buildChores(chores []chore.Chore, weekAgo time.Time) snapshot.ChoreSection {
	var section snapshot.ChoreSection
	for _, c := range chores {
		recent := c.LastCompleted.Valid() && !c.LastCompleted.Before(weekAgo)
		if !c.LastCompleted.Valid() || recent {
			section.ActiveChores++
		}
		if recent {
			section.CompletedLastWeek++
		}

		switch c.Importance {
		case chore.ImportanceHigh:
			section.ByImportance.High++
		case chore.ImportanceMedium:
			section.ByImportance.Medium++
		case chore.ImportanceLow:
			section.ByImportance.Low++
		}
	}
	return section
}

// Preview truncates text to its first 200 characters, marking the cut.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= textPreviewLimit {
		return text
	}
	return string(runes[:textPreviewLimit]) + "..."
}

func formatTime(t isotime.Time) string {
	if !t.Valid() {
		return ""
	}
	return isotime.Format(t.Time)
}

func perWeek(n int) float64 {
	return round1(float64(n) / windowWeeks)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
