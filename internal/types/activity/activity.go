package activity

import "bounceBackAPI/internal/types/isotime"

type Type string

const (
	TypeWorkout Type = "workout"
	TypeOutdoor Type = "outdoor_activity"

	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Activity durations are seconds and distances are meters.
type Activity struct {
	ID        string       `json:"id"`
	Type      Type         `json:"type"`
	Status    string       `json:"status"`
	StartTime isotime.Time `json:"startTime"`
	EndTime   isotime.Time `json:"endTime"`
	Duration  float64      `json:"duration"`
	Distance  float64      `json:"distance,omitempty"`
	XPGained  int          `json:"xpGained"`
	Locations []Location   `json:"locations,omitempty"`
	FinalPath []Location   `json:"finalPath,omitempty"`
}

type StartRequest struct {
	Type Type `json:"type" validate:"omitempty,activity_type"`
}

type EndRequest struct {
	WorkoutID string     `json:"workoutId" validate:"required"`
	Duration  *float64   `json:"duration" validate:"required,min=0"`
	Type      Type       `json:"type" validate:"omitempty,activity_type"`
	Distance  float64    `json:"distance" validate:"min=0"`
	XPGained  int        `json:"xpGained" validate:"min=0"`
	Locations []Location `json:"locations"`
	FinalPath []Location `json:"finalPath"`
}
