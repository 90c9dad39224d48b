package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bounceBackAPI/services"
)

type DataHandler struct {
	dataService *services.DataService
	logger      *zap.Logger
}

func NewDataHandler(dataService *services.DataService, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		dataService: dataService,
		logger:      logger,
	}
}

func (h *DataHandler) GetDataTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	dataTypes, err := h.dataService.GetDataTypes(ctx, uid)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"dataTypes": dataTypes})
}

func (h *DataHandler) DeleteUserData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.DeleteDataRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	if err := h.dataService.DeleteUserData(ctx, uid, req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse{Success: true})
}
