package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/contact"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/validation"
)

type ContactService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewContactService(st store.Store, logger *zap.Logger) *ContactService {
	return &ContactService{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ContactService) AddContact(ctx context.Context, uid string, req contact.AddContactRequest) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	now := isotime.New(s.now())
	data, err := store.Encode(contact.Contact{
		Name:             req.Name,
		Phone:            req.Phone,
		Relationship:     req.Relationship,
		ClosenessRating:  req.ClosenessRating,
		SupportType:      req.SupportType,
		LastContacted:    req.LastContacted,
		PriorityTag:      req.PriorityTag,
		ContactFrequency: req.ContactFrequency,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, uid, store.Contacts, data)
	if err != nil {
		return "", apperr.Upstream(err, "Failed to add contact")
	}
	return id, nil
}

// GetContacts lists contacts without their closeness rating.
func (s *ContactService) GetContacts(ctx context.Context, uid string) ([]contact.Contact, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	docs, err := s.store.List(ctx, uid, store.Contacts)
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get contacts")
	}
	contacts, err := store.DecodeAll[contact.Contact](docs)
	if err != nil {
		return nil, err
	}

	for i := range contacts {
		contacts[i] = contacts[i].Public()
	}
	return contacts, nil
}

func (s *ContactService) UpdateContact(ctx context.Context, uid string, req contact.UpdateContactRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	fields := make(map[string]any, len(req.Updates)+1)
	var rejected []string
	for k, v := range req.Updates {
		if !contact.UpdatableFields[k] {
			rejected = append(rejected, k)
			continue
		}
		fields[k] = v
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return apperr.Validation("Cannot update %s", strings.Join(rejected, ", "))
	}
	if len(fields) == 0 {
		return apperr.Validation("No updates provided")
	}
	if p, ok := fields["priorityTag"].(string); ok && contact.Priority(p).Rank() == 0 {
		return apperr.Validation("Invalid priorityTag")
	}
	fields["updatedAt"] = isotime.Format(s.now())

	if err := s.store.Update(ctx, uid, store.Contacts, req.ContactID, fields); err != nil {
		return storeErr(err, "Contact not found", "Failed to update contact")
	}
	return nil
}

func (s *ContactService) DeleteContact(ctx context.Context, uid string, req contact.IDRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, uid, store.Contacts, req.ContactID); err != nil {
		return storeErr(err, "Contact not found", "Failed to delete contact")
	}

	if err := s.store.DeleteAll(ctx, uid, []string{store.Interactions(req.ContactID)}); err != nil {
		return apperr.Upstream(err, "Failed to delete contact")
	}
	if err := s.store.Delete(ctx, uid, store.Contacts, req.ContactID); err != nil {
		return apperr.Upstream(err, "Failed to delete contact")
	}
	return nil
}

// TrackInteraction logs a call or text and moves the contact's
// lastContacted to it.
func (s *ContactService) TrackInteraction(ctx context.Context, uid string, req contact.TrackInteractionRequest) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	at := isotime.New(s.now())
	if req.Timestamp != nil && req.Timestamp.Valid() {
		at = *req.Timestamp
	}

	if err := s.store.Update(ctx, uid, store.Contacts, req.ContactID, map[string]any{
		"lastContacted": isotime.Format(at.Time),
	}); err != nil {
		return "", storeErr(err, "Contact not found", "Failed to track interaction")
	}

	data, err := store.Encode(contact.Interaction{Type: req.InteractionType, Timestamp: at})
	if err != nil {
		return "", err
	}
	id, err := s.store.Create(ctx, uid, store.Interactions(req.ContactID), data)
	if err != nil {
		return "", apperr.Upstream(err, "Failed to track interaction")
	}

	s.logger.Debug("contact interaction tracked",
		zap.String("uid", uid),
		zap.String("contact_id", req.ContactID),
		zap.String("type", string(req.InteractionType)))
	return id, nil
}

func (s *ContactService) GetInteractions(ctx context.Context, uid string, req contact.IDRequest) ([]contact.Interaction, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, uid, store.Interactions(req.ContactID), store.Query{
		Field: "timestamp",
		Desc:  true,
		Limit: contact.InteractionsLimit,
	})
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get interactions")
	}
	return store.DecodeAll[contact.Interaction](docs)
}
