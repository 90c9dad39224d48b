package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
	"bounceBackAPI/internal/types/zone"
)

func TestAvoidanceZones(t *testing.T) {
	st := store.NewMemory()
	s := NewZoneService(st, zap.NewNop())
	ctx := context.Background()
	lat, lng := 42.69, 23.32

	id, err := s.AddAvoidanceZone(ctx, "u1", zone.AddRequest{Label: "Old bar", Lat: &lat, Lng: &lng, Radius: 150})
	require.NoError(t, err)

	zones, err := s.GetAvoidanceZones(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, id, zones[0].ID)
	assert.Equal(t, 42.69, zones[0].Coordinates.Lat)

	require.NoError(t, s.DeleteAvoidanceZone(ctx, "u1", zone.DeleteRequest{ZoneID: id}))
	err = s.DeleteAvoidanceZone(ctx, "u1", zone.DeleteRequest{ZoneID: id})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	bad := 120.0
	_, err = s.AddAvoidanceZone(ctx, "u1", zone.AddRequest{Label: "x", Lat: &bad, Lng: &lng})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestToggleAvoidanceZones(t *testing.T) {
	st := store.NewMemory()
	s := NewZoneService(st, zap.NewNop())
	ctx := context.Background()
	on := true

	err := s.ToggleAvoidanceZones(ctx, "u1", zone.ToggleRequest{Enabled: &on})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = s.ToggleAvoidanceZones(ctx, "u1", zone.ToggleRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, st.SetUser(ctx, "u1", map[string]any{"profile": map[string]any{"name": "Jo"}}, false))
	require.NoError(t, s.ToggleAvoidanceZones(ctx, "u1", zone.ToggleRequest{Enabled: &on}))

	user, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	profile := user["profile"].(map[string]any)
	assert.Equal(t, true, profile["avoidanceZonesEnabled"])
	assert.Equal(t, "Jo", profile["name"])
}
