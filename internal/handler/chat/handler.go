package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	identitymodel "github.com/counslerai/counslerai/internal/model/identity"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
	"github.com/counslerai/counslerai/pkg/utils"
)

// Handler serves the chat session operations.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/sessions", h.handleListSessions)
	r.Get("/chat/sessions/{sessionID}", h.handleGetSession)
	r.Post("/chat/sessions", h.handleCreateSession)
	r.Post("/chat/messages", h.handleAddMessage)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	actor := identitymodel.Actor{
		UserID:  r.URL.Query().Get("userId"),
		GuestID: r.URL.Query().Get("guestId"),
	}

	sessions, err := h.chatSvc.ListSessions(r.Context(), actor)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"userId"`
		GuestID string `json:"guestId"`
		Topic   string `json:"topic"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := identitymodel.Actor{UserID: payload.UserID, GuestID: payload.GuestID}
	session, err := h.chatSvc.CreateSession(r.Context(), actor, payload.Topic)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Sender    string `json:"sender"`
		Content   string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.chatSvc.AppendMessage(r.Context(), payload.SessionID, payload.Sender, payload.Content)
	switch {
	case errors.Is(err, chatservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, chatservice.ErrInvalidSender), errors.Is(err, chatservice.ErrEmptyContent):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, "failed to append message")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, message)
}
