package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	identitymodel "github.com/counslerai/counslerai/internal/model/identity"
)

var (
	// ErrSessionNotFound marks operations addressing a session id the store
	// does not recognize. The orchestrator recovers from it by recreating
	// the session; every other fault propagates as-is.
	ErrSessionNotFound = errors.New("chat session does not exist")

	ErrInvalidSender = errors.New("sender must be user or ai")
	ErrEmptyContent  = errors.New("message content is required")
)

// Store abstracts session and message persistence. Implementations return
// ErrSessionNotFound when an addressed session is missing and must never
// write a message in that case.
type Store interface {
	ListSessionsByUser(ctx context.Context, userID string) ([]chatmodel.ChatSession, error)
	ListSessionsByGuest(ctx context.Context, guestID string) ([]chatmodel.ChatSession, error)
	GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error)
	CreateSession(ctx context.Context, session chatmodel.ChatSession) error
	AppendMessage(ctx context.Context, message chatmodel.Message) error
}

// Service implements the chat session operations over a Store.
type Service struct {
	store Store
}

// NewService wraps the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListSessions returns the actor's sessions, most recent first, each with its
// messages in insertion order. An actor with neither identifier gets an empty
// list, not an error.
func (s *Service) ListSessions(ctx context.Context, actor identitymodel.Actor) ([]chatmodel.ChatSession, error) {
	switch {
	case actor.UserID != "":
		return s.store.ListSessionsByUser(ctx, actor.UserID)
	case actor.GuestID != "":
		return s.store.ListSessionsByGuest(ctx, actor.GuestID)
	default:
		return []chatmodel.ChatSession{}, nil
	}
}

// GetSession returns the session with its full message sequence, or
// ErrSessionNotFound.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error) {
	if sessionID == "" {
		return chatmodel.ChatSession{}, ErrSessionNotFound
	}
	return s.store.GetSession(ctx, sessionID)
}

// CreateSession creates a session owned by the actor. When both identifiers
// are somehow present the user id wins; when neither is, the session is
// created ownerless rather than rejected.
func (s *Service) CreateSession(ctx context.Context, actor identitymodel.Actor, topic string) (chatmodel.ChatSession, error) {
	owner := actor
	if owner.UserID != "" {
		owner.GuestID = ""
	}

	session := chatmodel.ChatSession{
		ID:           uuid.NewString(),
		OwnerUserID:  owner.UserID,
		OwnerGuestID: owner.GuestID,
		Topic:        strings.TrimSpace(topic),
		CreatedAt:    time.Now().UTC(),
		Messages:     []chatmodel.Message{},
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return chatmodel.ChatSession{}, fmt.Errorf("chat: creating session: %w", err)
	}

	log.Printf("[chat] created session id=%s user=%q guest=%q", session.ID, session.OwnerUserID, session.OwnerGuestID)
	return session, nil
}

// AppendMessage inserts a message into an existing session and returns it.
// The session's other fields are never touched. A missing session yields
// ErrSessionNotFound with no write.
func (s *Service) AppendMessage(ctx context.Context, sessionID, sender, content string) (chatmodel.Message, error) {
	if sessionID == "" {
		return chatmodel.Message{}, ErrSessionNotFound
	}
	if !chatmodel.ValidSender(sender) {
		return chatmodel.Message{}, ErrInvalidSender
	}
	if content == "" {
		return chatmodel.Message{}, ErrEmptyContent
	}

	message := chatmodel.Message{
		ID:            uuid.NewString(),
		ChatSessionID: sessionID,
		Sender:        sender,
		Content:       content,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.AppendMessage(ctx, message); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return chatmodel.Message{}, ErrSessionNotFound
		}
		return chatmodel.Message{}, fmt.Errorf("chat: appending message: %w", err)
	}

	return message, nil
}
