package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/civicpulse/civic-server/internal/oracle"
	"github.com/civicpulse/civic-server/internal/services"
)

// ChatHandler handles the assistant endpoint
type ChatHandler struct {
	svc    *services.ChatService
	errs   errorResponder
	logger *zap.SugaredLogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc *services.ChatService, exposeInternal bool, logger *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{svc: svc, errs: errorResponder{logger: logger, exposeInternal: exposeInternal}, logger: logger}
}

type chatRequest struct {
	Message string            `json:"message"`
	History []oracle.ChatTurn `json:"history"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.svc.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		h.errs.fail(w, err, "Failed to answer chat")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": !out.Degraded,
		"reply":   out.Value,
	})
}
