package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/contact"
	"bounceBackAPI/internal/types/isotime"
)

func newContactService(st store.Store) *ContactService {
	s := NewContactService(st, zap.NewNop())
	s.now = clock
	return s
}

func TestAddAndGetContactsHidesCloseness(t *testing.T) {
	st := store.NewMemory()
	s := newContactService(st)
	ctx := context.Background()
	rating := 5

	id, err := s.AddContact(ctx, "u1", contact.AddContactRequest{
		Name:            "Sam",
		Phone:           "555-0100",
		ClosenessRating: &rating,
		PriorityTag:     contact.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(5), getDoc(t, st, "u1", store.Contacts, id)["closenessRating"])

	contacts, err := s.GetContacts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Sam", contacts[0].Name)
	assert.Nil(t, contacts[0].ClosenessRating)
}

func TestAddContactRequiresPhone(t *testing.T) {
	s := newContactService(store.NewMemory())

	_, err := s.AddContact(context.Background(), "u1", contact.AddContactRequest{Name: "Sam"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateContact(t *testing.T) {
	st := store.NewMemory()
	s := newContactService(st)
	ctx := context.Background()
	seed(t, st, "u1", store.Contacts, "p1", map[string]any{"name": "Sam", "phone": "1"})

	err := s.UpdateContact(ctx, "u1", contact.UpdateContactRequest{
		ContactID: "p1",
		Updates:   map[string]any{"relationship": "friend", "priorityTag": "Medium"},
	})
	require.NoError(t, err)
	data := getDoc(t, st, "u1", store.Contacts, "p1")
	assert.Equal(t, "friend", data["relationship"])
	assert.Equal(t, "2024-03-15T12:00:00.000Z", data["updatedAt"])

	err = s.UpdateContact(ctx, "u1", contact.UpdateContactRequest{
		ContactID: "p1",
		Updates:   map[string]any{"createdAt": "x", "name": "Alex"},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Sam", getDoc(t, st, "u1", store.Contacts, "p1")["name"])

	err = s.UpdateContact(ctx, "u1", contact.UpdateContactRequest{
		ContactID: "p1",
		Updates:   map[string]any{"priorityTag": "Urgent"},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = s.UpdateContact(ctx, "u1", contact.UpdateContactRequest{
		ContactID: "missing",
		Updates:   map[string]any{"name": "Alex"},
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTrackInteraction(t *testing.T) {
	st := store.NewMemory()
	s := newContactService(st)
	ctx := context.Background()
	seed(t, st, "u1", store.Contacts, "p1", map[string]any{"name": "Sam"})

	earlier := isotime.Ptr(fixedNow.Add(-time.Hour))
	_, err := s.TrackInteraction(ctx, "u1", contact.TrackInteractionRequest{
		ContactID: "p1", InteractionType: contact.InteractionText, Timestamp: earlier,
	})
	require.NoError(t, err)
	_, err = s.TrackInteraction(ctx, "u1", contact.TrackInteractionRequest{
		ContactID: "p1", InteractionType: contact.InteractionCall,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15T12:00:00.000Z", getDoc(t, st, "u1", store.Contacts, "p1")["lastContacted"])

	interactions, err := s.GetInteractions(ctx, "u1", contact.IDRequest{ContactID: "p1"})
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.Equal(t, contact.InteractionCall, interactions[0].Type)
	assert.Equal(t, contact.InteractionText, interactions[1].Type)

	_, err = s.TrackInteraction(ctx, "u1", contact.TrackInteractionRequest{
		ContactID: "p1", InteractionType: "email",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.TrackInteraction(ctx, "u1", contact.TrackInteractionRequest{
		ContactID: "ghost", InteractionType: contact.InteractionCall,
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteContactRemovesInteractions(t *testing.T) {
	st := store.NewMemory()
	s := newContactService(st)
	ctx := context.Background()
	seed(t, st, "u1", store.Contacts, "p1", map[string]any{"name": "Sam"})
	seed(t, st, "u1", store.Interactions("p1"), "i1", map[string]any{"type": "call", "timestamp": ago(time.Hour)})

	require.NoError(t, s.DeleteContact(ctx, "u1", contact.IDRequest{ContactID: "p1"}))

	_, err := st.Get(ctx, "u1", store.Contacts, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	docs, err := st.List(ctx, "u1", store.Interactions("p1"))
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = s.DeleteContact(ctx, "u1", contact.IDRequest{ContactID: "p1"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
