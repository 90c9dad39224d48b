package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bounceBackAPI/internal/types/contact"
	"bounceBackAPI/services"
)

type ContactHandler struct {
	contactService *services.ContactService
	logger         *zap.Logger
}

func NewContactHandler(contactService *services.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

func (h *ContactHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req contact.AddContactRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	id, err := h.contactService.AddContact(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true, ID: id})
}

func (h *ContactHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	contacts, err := h.contactService.GetContacts(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "contacts": contacts})
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req contact.UpdateContactRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	if err := h.contactService.UpdateContact(ctx, uid, req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req contact.IDRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	if err := h.contactService.DeleteContact(ctx, uid, req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *ContactHandler) TrackContactInteraction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req contact.TrackInteractionRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	id, err := h.contactService.TrackInteraction(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true, ID: id})
}

func (h *ContactHandler) GetContactInteractions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req contact.IDRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	interactions, err := h.contactService.GetInteractions(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true, "interactions": interactions})
}
