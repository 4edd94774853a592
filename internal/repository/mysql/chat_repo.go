package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
)

// Store implements the chat store against MySQL via GORM.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open GORM handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListSessionsByUser returns sessions owned by userID, most recent first.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]chatmodel.ChatSession, error) {
	return s.listSessions(ctx, "owner_user_id = ?", userID)
}

// ListSessionsByGuest returns sessions owned by guestID, most recent first.
func (s *Store) ListSessionsByGuest(ctx context.Context, guestID string) ([]chatmodel.ChatSession, error) {
	return s.listSessions(ctx, "owner_guest_id = ?", guestID)
}

func (s *Store) listSessions(ctx context.Context, query string, owner string) ([]chatmodel.ChatSession, error) {
	list := make([]chatmodel.ChatSession, 0)
	err := s.db.WithContext(ctx).
		Where(query, owner).
		Order("created_at DESC").
		Preload("Messages", orderedMessages).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("mysql: listing sessions: %w", err)
	}
	return list, nil
}

// GetSession returns the session with its messages in insertion order.
func (s *Store) GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error) {
	var session chatmodel.ChatSession
	err := s.db.WithContext(ctx).
		Preload("Messages", orderedMessages).
		First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return chatmodel.ChatSession{}, chatservice.ErrSessionNotFound
	}
	if err != nil {
		return chatmodel.ChatSession{}, fmt.Errorf("mysql: getting session: %w", err)
	}
	if session.Messages == nil {
		session.Messages = []chatmodel.Message{}
	}
	return session, nil
}

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, session chatmodel.ChatSession) error {
	if err := s.db.WithContext(ctx).Omit("Messages").Create(&session).Error; err != nil {
		return fmt.Errorf("mysql: creating session: %w", err)
	}
	return nil
}

// AppendMessage inserts a message after verifying its session exists. The
// lookup-then-insert pair is not transactional; a session deleted in between
// is an accepted race, not a protected one.
func (s *Store) AppendMessage(ctx context.Context, message chatmodel.Message) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&chatmodel.ChatSession{}).
		Where("id = ?", message.ChatSessionID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("mysql: checking session: %w", err)
	}
	if count == 0 {
		return chatservice.ErrSessionNotFound
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return fmt.Errorf("mysql: inserting message: %w", err)
	}
	return nil
}

func orderedMessages(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}
