package transcript

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/visage-chat/visage/internal/api"
	"github.com/visage-chat/visage/internal/history"
)

type Handler struct {
	repo     Repository
	history  *history.Index
	validate *validator.Validate
}

func NewHandler(repo Repository, hist *history.Index) *Handler {
	return &Handler{
		repo:     repo,
		history:  hist,
		validate: validator.New(),
	}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	// The body is optional: an empty request creates a default-titled session.
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	session, err := h.repo.CreateSession(r.Context(), req.Title)
	if err != nil {
		slog.Error("creating session", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, session)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListSessions(r.Context())
	if err != nil {
		slog.Error("listing sessions", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}
	api.JSON(w, http.StatusOK, sessions)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.repo.GetSession(r.Context(), sessionID)
	if err != nil {
		slog.Error("fetching session", "error", err, "session_id", sessionID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if session == nil {
		api.HandleError(w, api.NewNotFoundError("session not found"))
		return
	}

	messages, err := h.repo.ListMessages(r.Context(), sessionID)
	if err != nil {
		slog.Error("listing messages", "error", err, "session_id", sessionID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	api.JSON(w, http.StatusOK, messages)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.repo.GetSession(r.Context(), sessionID)
	if err != nil {
		slog.Error("fetching session", "error", err, "session_id", sessionID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if session == nil {
		api.HandleError(w, api.NewNotFoundError("session not found"))
		return
	}

	if err := h.repo.DeleteSession(r.Context(), sessionID); err != nil {
		slog.Error("deleting session", "error", err, "session_id", sessionID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	// History documents go with the owning session.
	if err := h.history.DeleteSession(r.Context(), sessionID); err != nil {
		slog.Warn("deleting session history", "error", err, "session_id", sessionID)
	}

	api.JSONMessage(w, http.StatusOK, "session deleted")
}
