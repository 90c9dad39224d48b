package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/internal/types/journal"
	"bounceBackAPI/internal/types/mood"
	"bounceBackAPI/services"
)

// analysisTimeout covers the round trip to the sentiment model.
const analysisTimeout = 35 * time.Second

type JournalHandler struct {
	journalService *services.JournalService
	logger         *zap.Logger
}

func NewJournalHandler(journalService *services.JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		logger:         logger,
	}
}

func (h *JournalHandler) AddJournalEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req journal.AddEntryRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	entry, err := h.journalService.AddJournalEntry(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": entry.ID, "entry": entry})
}

func (h *JournalHandler) GetJournalEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.journalService.GetJournalEntries(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *JournalHandler) DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req journal.DeleteEntryRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	if err := h.journalService.DeleteJournalEntry(ctx, uid, req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *JournalHandler) AddMoodEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req mood.AddEntryRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	id, err := h.journalService.AddMoodEntry(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true, ID: id})
}

func (h *JournalHandler) GetMoodEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	moods, err := h.journalService.GetMoodEntries(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"moods": moods})
}
