package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
)

// Store implements the chat store with in-memory maps. It backs tests and
// DSN-less development runs; the MySQL store is the durable production path.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	sessions map[string]sessionRecord
	messages map[string][]chatmodel.Message
}

type sessionRecord struct {
	session chatmodel.ChatSession
	seq     int64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]sessionRecord),
		messages: make(map[string][]chatmodel.Message),
	}
}

// ListSessionsByUser returns sessions owned by userID, most recent first.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]chatmodel.ChatSession, error) {
	return s.list(func(session chatmodel.ChatSession) bool {
		return session.OwnerUserID == userID
	})
}

// ListSessionsByGuest returns sessions owned by guestID, most recent first.
func (s *Store) ListSessionsByGuest(ctx context.Context, guestID string) ([]chatmodel.ChatSession, error) {
	return s.list(func(session chatmodel.ChatSession) bool {
		return session.OwnerGuestID == guestID
	})
}

func (s *Store) list(match func(chatmodel.ChatSession) bool) ([]chatmodel.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]sessionRecord, 0, len(s.sessions))
	for _, record := range s.sessions {
		if match(record.session) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	list := make([]chatmodel.ChatSession, 0, len(records))
	for _, record := range records {
		list = append(list, s.withMessages(record.session))
	}
	return list, nil
}

// GetSession returns the session with its messages in insertion order.
func (s *Store) GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[sessionID]
	if !ok {
		return chatmodel.ChatSession{}, chatservice.ErrSessionNotFound
	}
	return s.withMessages(record.session), nil
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, session chatmodel.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("memory: session %s already exists", session.ID)
	}

	s.seq++
	session.Messages = nil
	s.sessions[session.ID] = sessionRecord{session: session, seq: s.seq}
	s.messages[session.ID] = make([]chatmodel.Message, 0, 16)
	return nil
}

// AppendMessage appends a message to an existing session.
func (s *Store) AppendMessage(ctx context.Context, message chatmodel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.ChatSessionID]; !ok {
		return chatservice.ErrSessionNotFound
	}

	s.seq++
	message.Seq = s.seq
	s.messages[message.ChatSessionID] = append(s.messages[message.ChatSessionID], message)
	return nil
}

// withMessages copies the session with its message slice attached. Callers
// hold at least a read lock.
func (s *Store) withMessages(session chatmodel.ChatSession) chatmodel.ChatSession {
	stored := s.messages[session.ID]
	session.Messages = make([]chatmodel.Message, len(stored))
	copy(session.Messages, stored)
	return session
}
