package chore

import (
	"fmt"
	"time"

	"bounceBackAPI/internal/types/isotime"
)

type Frequency string
type Importance string

const (
	FrequencyDay   Frequency = "day"
	FrequencyWeek  Frequency = "week"
	FrequencyMonth Frequency = "month"
	FrequencyYear  Frequency = "year"

	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"

	DefaultIcon = "list-outline"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDay, FrequencyWeek, FrequencyMonth, FrequencyYear:
		return true
	}
	return false
}

func (i Importance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	}
	return false
}

// Chore is a recurring task. IsCompleted implies LastCompleted is set.
type Chore struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Frequency       Frequency    `json:"frequency"`
	Importance      Importance   `json:"importance"`
	Icon            string       `json:"icon"`
	IsCompleted     bool         `json:"isCompleted"`
	LastCompleted   isotime.Time `json:"lastCompleted"`
	CompletionCount int          `json:"completionCount"`
	CreatedAt       isotime.Time `json:"createdAt"`
}

type AddChoreRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Frequency   Frequency  `json:"frequency" validate:"required,frequency"`
	Importance  Importance `json:"importance" validate:"required,importance"`
	Icon        string     `json:"icon"`
}

type IDRequest struct {
	ChoreID string `json:"choreId" validate:"required"`
}

type ProgressRequest struct {
	TimeRange string `json:"timeRange"`
}

type Progress struct {
	TotalChores            int                `json:"totalChores"`
	CompletedChores        int                `json:"completedChores"`
	CompletionRate         float64            `json:"completionRate"`
	PendingChores          int                `json:"pendingChores"`
	ByImportance           map[Importance]int `json:"byImportance"`
	ByFrequency            map[Frequency]int  `json:"byFrequency"`
	TimeRange              string             `json:"timeRange"`
	CompletedInTimeRange   int                `json:"completedInTimeRange"`
	AverageCompletionCount float64            `json:"averageCompletionCount"`
}

// Policy selects how the day and month rollover rules are measured. The two
// historical reset triggers disagreed on this, so callers pick one explicitly.
type Policy string

const (
	// PolicyCalendar resets day chores once the local date changes and month
	// chores once the calendar month (or year) changes.
	PolicyCalendar Policy = "calendar"
	// PolicyElapsed resets day chores after 24h and month chores once the
	// month number differs or 30 days have passed.
	PolicyElapsed Policy = "elapsed"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyCalendar, PolicyElapsed:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown reset policy %q", s)
}

const day = 24 * time.Hour

type Decision struct {
	ShouldReset bool `json:"shouldReset"`
}

// EvaluateReset decides whether a completed chore is due to roll back to
// incomplete. Calendar comparisons are made in now's location.
func EvaluateReset(c Chore, now time.Time, policy Policy) Decision {
	if !c.IsCompleted || !c.LastCompleted.Valid() {
		return Decision{}
	}

	last := c.LastCompleted.In(now.Location())
	elapsed := now.Sub(last)

	var due bool
	switch c.Frequency {
	case FrequencyDay:
		if policy == PolicyElapsed {
			due = elapsed >= day
		} else {
			due = !sameDate(now, last)
		}
	case FrequencyWeek:
		due = elapsed >= 7*day
	case FrequencyMonth:
		if policy == PolicyElapsed {
			due = now.Month() != last.Month() || elapsed >= 30*day
		} else {
			due = now.Month() != last.Month() || now.Year() != last.Year()
		}
	case FrequencyYear:
		due = now.Year() != last.Year()
	}

	return Decision{ShouldReset: due}
}

// Reset clears the completion state. CompletionCount is history and survives.
func (c *Chore) Reset() {
	c.IsCompleted = false
	c.LastCompleted = isotime.Time{}
}

// ResetFields is the partial update persisted for a reset.
func ResetFields() map[string]any {
	return map[string]any{
		"isCompleted":   false,
		"lastCompleted": nil,
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
