package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/visage-chat/visage/internal/api"
)

type Handler struct {
	orchestrator *Orchestrator
	validate     *validator.Validate
}

func NewHandler(orchestrator *Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		validate:     validator.New(),
	}
}

// HandleTurn serves POST /api/v1/chat.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.orchestrator.Turn(r.Context(), req.SessionID, req.UserMessage)
	if err != nil {
		slog.Error("chat turn failed", "error", err, "session_id", req.SessionID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, result)
}
