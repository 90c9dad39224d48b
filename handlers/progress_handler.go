package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/types/snapshot"
	"bounceBackAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
	logger          *zap.Logger
}

func NewProgressHandler(progressService *services.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		logger:          logger,
	}
}

// TrackUserProgress rebuilds today's snapshot. Five collections are read, so
// it gets a longer deadline than the other callables.
func (h *ProgressHandler) TrackUserProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	snap, err := h.progressService.TrackProgress(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"userData": snap.UserData})
}

func (h *ProgressHandler) GetProgressSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req snapshot.GetRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	snap, err := h.progressService.GetSnapshot(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"snapshot": snap})
}
