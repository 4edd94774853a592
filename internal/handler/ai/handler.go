package ai

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	aiservice "github.com/counslerai/counslerai/internal/service/ai"
	"github.com/counslerai/counslerai/pkg/utils"
)

// Advisor produces one assistant reply for a prompt plus context.
type Advisor interface {
	GetAdvice(ctx context.Context, prompt string, contextTurns []aiservice.Turn) (string, error)
}

// SessionLoader loads a session so the stream endpoint can build context
// from its persisted messages.
type SessionLoader interface {
	GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error)
}

// Handler serves the advice operations.
type Handler struct {
	advisor  Advisor
	sessions SessionLoader
}

// New creates the advice handler. sessions may be nil; the stream endpoint
// then answers without conversation context.
func New(advisor Advisor, sessions SessionLoader) *Handler {
	return &Handler{advisor: advisor, sessions: sessions}
}

// RegisterRoutes mounts the advice routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/advice", h.handleGetAdvice)
	r.Get("/ai/stream", h.handleStream)
}

func (h *Handler) handleGetAdvice(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt  string           `json:"prompt"`
		Context []aiservice.Turn `json:"context"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	response, err := h.advisor.GetAdvice(r.Context(), payload.Prompt, payload.Context)
	if err != nil {
		log.Printf("[ai] advice request failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "advice provider unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": response})
}

// handleStream wraps one advice call in an SSE stream so browser clients get
// a status event while the provider call is in flight.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("message")
	if prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var contextTurns []aiservice.Turn
	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" && h.sessions != nil {
		session, err := h.sessions.GetSession(r.Context(), sessionID)
		if err != nil {
			log.Printf("[ai] stream context unavailable for session=%s: %v", sessionID, err)
		} else {
			for _, message := range session.Messages {
				contextTurns = append(contextTurns, aiservice.Turn{Sender: message.Sender, Content: message.Content})
			}
		}
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "status", map[string]string{"message": "thinking"})

	response, err := h.advisor.GetAdvice(r.Context(), prompt, contextTurns)
	if err != nil {
		log.Printf("[ai] stream advice request failed: %v", err)
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"message": "advice provider unavailable"})
		return
	}

	utils.SendSSEEvent(w, flusher, "message", map[string]string{"sender": chatmodel.SenderAI, "content": response})
	utils.SendSSEEvent(w, flusher, "done", map[string]string{})
}
