package contact

import "bounceBackAPI/internal/types/isotime"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities for sorting; unknown or missing tags rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Contact struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Phone            string       `json:"phone"`
	Relationship     string       `json:"relationship"`
	ClosenessRating  *int         `json:"closenessRating,omitempty"`
	SupportType      []string     `json:"supportType"`
	LastContacted    isotime.Time `json:"lastContacted"`
	PriorityTag      Priority     `json:"priorityTag"`
	ContactFrequency string       `json:"contactFrequency"`
	CreatedAt        isotime.Time `json:"createdAt"`
	UpdatedAt        isotime.Time `json:"updatedAt"`
}

// Public strips fields that are never returned to the client.
func (c Contact) Public() Contact {
	c.ClosenessRating = nil
	return c
}

type AddContactRequest struct {
	Name             string       `json:"name" validate:"required"`
	Phone            string       `json:"phone" validate:"required"`
	Relationship     string       `json:"relationship"`
	ClosenessRating  *int         `json:"closenessRating" validate:"omitempty,min=1,max=5"`
	SupportType      []string     `json:"supportType"`
	LastContacted    isotime.Time `json:"lastContacted"`
	PriorityTag      Priority     `json:"priorityTag" validate:"omitempty,priority"`
	ContactFrequency string       `json:"contactFrequency"`
}

// UpdateContactRequest carries a partial update. Only the listed fields may
// be changed.
type UpdateContactRequest struct {
	ContactID string         `json:"contactId" validate:"required"`
	Updates   map[string]any `json:"updates" validate:"required"`
}

var UpdatableFields = map[string]bool{
	"name":             true,
	"phone":            true,
	"relationship":     true,
	"closenessRating":  true,
	"supportType":      true,
	"lastContacted":    true,
	"priorityTag":      true,
	"contactFrequency": true,
}

type IDRequest struct {
	ContactID string `json:"contactId" validate:"required"`
}

type InteractionType string

const (
	InteractionCall InteractionType = "call"
	InteractionText InteractionType = "text"
)

type Interaction struct {
	ID        string          `json:"id"`
	Type      InteractionType `json:"type"`
	Timestamp isotime.Time    `json:"timestamp"`
}

type TrackInteractionRequest struct {
	ContactID       string          `json:"contactId" validate:"required"`
	InteractionType InteractionType `json:"interactionType" validate:"required,interaction_type"`
	Timestamp       *isotime.Time   `json:"timestamp"`
}

const InteractionsLimit = 50
