package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/zone"
	"bounceBackAPI/internal/validation"
)

type ZoneService struct {
	store  store.Store
	logger *zap.Logger
}

func NewZoneService(st store.Store, logger *zap.Logger) *ZoneService {
	return &ZoneService{store: st, logger: logger}
}

func (s *ZoneService) ToggleAvoidanceZones(ctx context.Context, uid string, req zone.ToggleRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return apperr.Validation("Invalid value for enabled")
	}

	err := s.store.UpdateUser(ctx, uid, map[string]any{
		"profile.avoidanceZonesEnabled": *req.Enabled,
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Upstream(err, "Failed to update avoidance zones")
	}
	return nil
}

func (s *ZoneService) AddAvoidanceZone(ctx context.Context, uid string, req zone.AddRequest) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	if err := validation.Struct(req); err != nil {
		return "", err
	}

	data, err := store.Encode(zone.AvoidanceZone{
		Label:       req.Label,
		Coordinates: zone.Coordinates{Lat: *req.Lat, Lng: *req.Lng},
		Radius:      req.Radius,
	})
	if err != nil {
		return "", err
	}

	id, err := s.store.Create(ctx, uid, store.AvoidanceZones, data)
	if err != nil {
		return "", apperr.Upstream(err, "Failed to add avoidance zone")
	}
	return id, nil
}

func (s *ZoneService) DeleteAvoidanceZone(ctx context.Context, uid string, req zone.DeleteRequest) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, uid, store.AvoidanceZones, req.ZoneID); err != nil {
		return storeErr(err, "Avoidance zone not found", "Failed to delete avoidance zone")
	}

	if err := s.store.Delete(ctx, uid, store.AvoidanceZones, req.ZoneID); err != nil {
		return apperr.Upstream(err, "Failed to delete avoidance zone")
	}
	return nil
}

func (s *ZoneService) GetAvoidanceZones(ctx context.Context, uid string) ([]zone.AvoidanceZone, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	docs, err := s.store.List(ctx, uid, store.AvoidanceZones)
	if err != nil {
		return nil, apperr.Upstream(err, "Failed to get avoidance zones")
	}
	return store.DecodeAll[zone.AvoidanceZone](docs)
}
