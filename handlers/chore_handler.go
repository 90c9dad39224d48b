package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bounceBackAPI/internal/types/chore"
	"bounceBackAPI/services"
)

type ChoreHandler struct {
	choreService *services.ChoreService
	logger       *zap.Logger
}

func NewChoreHandler(choreService *services.ChoreService, logger *zap.Logger) *ChoreHandler {
	return &ChoreHandler{
		choreService: choreService,
		logger:       logger,
	}
}

func (h *ChoreHandler) AddChore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req chore.AddChoreRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	id, err := h.choreService.AddChore(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true, ID: id})
}

func (h *ChoreHandler) GetChores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	chores, err := h.choreService.GetChores(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"chores": chores})
}

func (h *ChoreHandler) GetChoreProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req chore.ProgressRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	progress, err := h.choreService.GetChoreProgress(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "progress": progress})
}

func (h *ChoreHandler) DeleteChore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.choreService.DeleteChore)
}

func (h *ChoreHandler) CompleteChore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.choreService.CompleteChore)
}

func (h *ChoreHandler) UncompleteChore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.choreService.UncompleteChore)
}

func (h *ChoreHandler) byID(w http.ResponseWriter, r *http.Request, op func(context.Context, string, chore.IDRequest) error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req chore.IDRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	if err := op(ctx, uid, req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}
