package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"bounceBackAPI/internal/llm"
	"bounceBackAPI/services"
)

type ChatHandler struct {
	chatService *services.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

func (h *ChatHandler) ChatWithBounceBot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), llm.DefaultTimeout+requestTimeout)
	defer cancel()

	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.ChatRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	resp, err := h.chatService.ChatWithBounceBot(ctx, uid, req)
	if err != nil {
		respondWithAppError(w, h.logger, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
