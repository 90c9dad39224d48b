package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bounceBackAPI/internal/types/activity"
	"bounceBackAPI/services"
)

type ActivityHandler struct {
	activityService *services.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *services.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

func (h *ActivityHandler) StartWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req activity.StartRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	id, err := h.activityService.StartWorkout(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "workoutId": id})
}

func (h *ActivityHandler) EndWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req activity.EndRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	xp, err := h.activityService.EndWorkout(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "xpGained": xp})
}

func (h *ActivityHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	activities, err := h.activityService.GetActivities(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "activities": activities})
}
