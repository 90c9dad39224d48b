package services

import (
	"context"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
)

type DataType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// dataTypes are the collections a user may wipe themselves.
var dataTypes = []DataType{
	{ID: store.Activities, Label: "Activity History", Icon: "fitness-outline"},
	{ID: store.AvoidanceZones, Label: "Avoidance Zones", Icon: "ban-outline"},
	{ID: store.Chores, Label: "Chore History", Icon: "checkbox-outline"},
	{ID: store.Journals, Label: "Journal Entries", Icon: "book-outline"},
	{ID: store.MoodEntries, Label: "Mood Entries", Icon: "happy-outline"},
	{ID: store.Contacts, Label: "Support Contacts", Icon: "people-outline"},
	{ID: store.ProgressSnapshots, Label: "Progress Snapshots", Icon: "stats-chart-outline"},
}

type DeleteDataRequest struct {
	Collections []string `json:"collections" validate:"required"`
}

type DataService struct {
	store  store.Store
	logger *zap.Logger
}

func NewDataService(st store.Store, logger *zap.Logger) *DataService {
	return &DataService{store: st, logger: logger}
}

// GetDataTypes lists the deletable collections sorted by label.
func (s *DataService) GetDataTypes(ctx context.Context, uid string) ([]DataType, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	out := slices.Clone(dataTypes)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// DeleteUserData wipes the requested collections in one batch. Every name
// must be on the allow-list or nothing is deleted.
func (s *DataService) DeleteUserData(ctx context.Context, uid string, req DeleteDataRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if req.Collections == nil {
		return apperr.Validation("Invalid collections parameter")
	}

	var invalid []string
	for _, c := range req.Collections {
		if !slices.ContainsFunc(dataTypes, func(d DataType) bool { return d.ID == c }) {
			invalid = append(invalid, c)
		}
	}
	if len(invalid) > 0 {
		return apperr.Validation("Invalid collections: %s", strings.Join(invalid, ", "))
	}

	targets := slices.Clone(req.Collections)
	if slices.Contains(req.Collections, store.Contacts) {
		docs, err := s.store.List(ctx, uid, store.Contacts)
		if err != nil {
			return apperr.Upstream(err, "Failed to delete user data")
		}
		for _, doc := range docs {
			targets = append(targets, store.Interactions(doc.ID))
		}
	}

	if err := s.store.DeleteAll(ctx, uid, targets); err != nil {
		s.logger.Error("failed to delete user data", zap.String("uid", uid), zap.Error(err))
		return apperr.Upstream(err, "Failed to delete user data")
	}

	s.logger.Info("user data deleted",
		zap.String("uid", uid),
		zap.Strings("collections", req.Collections))
	return nil
}
