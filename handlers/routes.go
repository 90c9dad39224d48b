package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Chore    *ChoreHandler
	Progress *ProgressHandler
	Contact  *ContactHandler
	Journal  *JournalHandler
	Activity *ActivityHandler
	Zone     *ZoneHandler
	Profile  *ProfileHandler
	Data     *DataHandler
	Chat     *ChatHandler
}

// Register mounts every callable as POST /{function} on r. The caller
// decides the prefix and the auth middleware.
func (h *Handlers) Register(r *mux.Router) {
	routes := map[string]http.HandlerFunc{
		"addChore":                h.Chore.AddChore,
		"getChores":               h.Chore.GetChores,
		"getChoreProgress":        h.Chore.GetChoreProgress,
		"deleteChore":             h.Chore.DeleteChore,
		"completeChore":           h.Chore.CompleteChore,
		"uncompleteChore":         h.Chore.UncompleteChore,
		"trackUserProgress":       h.Progress.TrackUserProgress,
		"getProgressSnapshot":     h.Progress.GetProgressSnapshot,
		"addContact":              h.Contact.AddContact,
		"getContacts":             h.Contact.GetContacts,
		"updateContact":           h.Contact.UpdateContact,
		"deleteContact":           h.Contact.DeleteContact,
		"trackContactInteraction": h.Contact.TrackContactInteraction,
		"getContactInteractions":  h.Contact.GetContactInteractions,
		"addJournalEntry":         h.Journal.AddJournalEntry,
		"getJournalEntries":       h.Journal.GetJournalEntries,
		"deleteJournalEntry":      h.Journal.DeleteJournalEntry,
		"addMoodEntry":            h.Journal.AddMoodEntry,
		"getMoodEntries":          h.Journal.GetMoodEntries,
		"startWorkout":            h.Activity.StartWorkout,
		"endWorkout":              h.Activity.EndWorkout,
		"getActivities":           h.Activity.GetActivities,
		"toggleAvoidanceZones":    h.Zone.ToggleAvoidanceZones,
		"addAvoidanceZone":        h.Zone.AddAvoidanceZone,
		"deleteAvoidanceZone":     h.Zone.DeleteAvoidanceZone,
		"getAvoidanceZones":       h.Zone.GetAvoidanceZones,
		"createUserData":          h.Profile.CreateUserData,
		"getProfile":              h.Profile.GetProfile,
		"updateUserData":          h.Profile.UpdateUserData,
		"getOnboardingStatus":     h.Profile.GetOnboardingStatus,
		"registerDevice":          h.Profile.RegisterDevice,
		"getDataTypes":            h.Data.GetDataTypes,
		"deleteUserData":          h.Data.DeleteUserData,
		"chatWithBounceBot":       h.Chat.ChatWithBounceBot,
	}

	for name, fn := range routes {
		r.HandleFunc("/"+name, fn).Methods(http.MethodPost)
	}
}
