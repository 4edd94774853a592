// Package client implements the chat surface's side of the protocol: it
// resolves identity, lazily creates a session, appends messages with a
// single stale-session retry, requests advice, and reconciles local
// optimistic state against the server snapshot.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	identitymodel "github.com/counslerai/counslerai/internal/model/identity"
	aiservice "github.com/counslerai/counslerai/internal/service/ai"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
	"github.com/counslerai/counslerai/pkg/keyvalue"
)

// SessionIDKey is the durable-storage key caching the active session id.
const SessionIDKey = "counslerai_sessionId"

// State of the send loop. Failed records that the last send ended in an
// error; it does not block the next send.
type State int

const (
	StateIdle State = iota
	StateSending
	StateFailed
)

var (
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrSendInFlight    = errors.New("a send is already in flight")
	ErrIdentityLoading = errors.New("identity resolution is still loading")
	ErrNoIdentity      = errors.New("no resolved identity")
)

// SessionAPI is the slice of the chat API the orchestrator drives.
type SessionAPI interface {
	CreateSession(ctx context.Context, actor identitymodel.Actor, topic string) (chatmodel.ChatSession, error)
	AppendMessage(ctx context.Context, sessionID, sender, content string) (chatmodel.Message, error)
	GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error)
}

// AdviceAPI requests a single assistant reply for a prompt plus context.
type AdviceAPI interface {
	GetAdvice(ctx context.Context, prompt string, contextTurns []aiservice.Turn) (string, error)
}

// IdentityAPI resolves the current actor.
type IdentityAPI interface {
	Resolve() (actor identitymodel.Actor, loading bool)
}

// Orchestrator drives the send protocol for one chat surface. Each instance
// owns its own state; two instances never share an in-flight flag.
type Orchestrator struct {
	sessions SessionAPI
	advice   AdviceAPI
	identity IdentityAPI
	store    keyvalue.Store

	mu        sync.Mutex
	state     State
	sessionID string
	server    []chatmodel.Message // authoritative snapshot from the last fetch
	pending   []chatmodel.Message // optimistic entries not yet reconciled
}

// New builds an Orchestrator. A previously cached session id is restored
// from the store, if any.
func New(sessions SessionAPI, advice AdviceAPI, identity IdentityAPI, store keyvalue.Store) *Orchestrator {
	o := &Orchestrator{
		sessions: sessions,
		advice:   advice,
		identity: identity,
		store:    store,
	}
	if store != nil {
		if cached, ok := store.Get(SessionIDKey); ok {
			o.sessionID = cached
		}
	}
	return o
}

// Send runs one full send cycle for prompt. Empty prompts, unresolved
// identity, and concurrent sends are rejected up front; the in-flight flag
// is released on every exit path.
func (o *Orchestrator) Send(ctx context.Context, prompt string) error {
	if prompt == "" {
		return ErrEmptyPrompt
	}

	o.mu.Lock()
	if o.state == StateSending {
		o.mu.Unlock()
		return ErrSendInFlight
	}
	actor, loading := o.identity.Resolve()
	if loading {
		o.mu.Unlock()
		return ErrIdentityLoading
	}
	if actor.Zero() {
		o.mu.Unlock()
		return ErrNoIdentity
	}
	o.state = StateSending
	o.mu.Unlock()

	err := o.send(ctx, actor, prompt)

	o.mu.Lock()
	if err != nil {
		o.state = StateFailed
	} else {
		o.state = StateIdle
	}
	o.mu.Unlock()

	return err
}

func (o *Orchestrator) send(ctx context.Context, actor identitymodel.Actor, prompt string) error {
	sessionID := o.currentSessionID()
	if sessionID == "" {
		session, err := o.sessions.CreateSession(ctx, actor, "")
		if err != nil {
			return fmt.Errorf("client: creating session: %w", err)
		}
		sessionID = session.ID
		o.cacheSessionID(sessionID)
	}

	// The user's message shows up locally before any round trip completes.
	o.appendPending(chatmodel.Message{
		ChatSessionID: sessionID,
		Sender:        chatmodel.SenderUser,
		Content:       prompt,
	})

	_, err := o.sessions.AppendMessage(ctx, sessionID, chatmodel.SenderUser, prompt)
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		// The cached id went stale server-side: drop it, create a fresh
		// session, and retry the append exactly once.
		o.clearSessionID()
		session, createErr := o.sessions.CreateSession(ctx, actor, "")
		if createErr != nil {
			return fmt.Errorf("client: recreating session: %w", createErr)
		}
		sessionID = session.ID
		o.cacheSessionID(sessionID)
		_, err = o.sessions.AppendMessage(ctx, sessionID, chatmodel.SenderUser, prompt)
	}
	if err != nil {
		return fmt.Errorf("client: appending user message: %w", err)
	}

	reply, err := o.advice.GetAdvice(ctx, prompt, o.transcript(prompt))
	if err != nil {
		return fmt.Errorf("client: requesting advice: %w", err)
	}

	o.appendPending(chatmodel.Message{
		ChatSessionID: sessionID,
		Sender:        chatmodel.SenderAI,
		Content:       reply,
	})
	// No stale-session retry here: a session vanishing between the two
	// appends ends this send.
	if _, err := o.sessions.AppendMessage(ctx, sessionID, chatmodel.SenderAI, reply); err != nil {
		return fmt.Errorf("client: appending ai message: %w", err)
	}

	if err := o.refresh(ctx, sessionID); err != nil {
		// The messages are persisted; a failed reconcile only leaves the
		// optimistic copies on screen until the next refresh.
		log.Printf("[client] failed to refresh session %s: %v", sessionID, err)
	}
	return nil
}

// Refresh reloads the canonical session from the server and replaces local
// state with it. A no-op when no session id is cached.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	sessionID := o.currentSessionID()
	if sessionID == "" {
		return nil
	}
	return o.refresh(ctx, sessionID)
}

func (o *Orchestrator) refresh(ctx context.Context, sessionID string) error {
	session, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// Replace-on-refetch: the server snapshot supersedes pending entries
	// wholesale, keyed by nothing finer than the whole session.
	o.server = session.Messages
	o.pending = nil
	return nil
}

// Messages returns the conversation for rendering: the server snapshot
// followed by pending optimistic entries.
func (o *Orchestrator) Messages() []chatmodel.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	merged := make([]chatmodel.Message, 0, len(o.server)+len(o.pending))
	merged = append(merged, o.server...)
	merged = append(merged, o.pending...)
	return merged
}

// SessionID returns the active session id, or "" before the first send.
func (o *Orchestrator) SessionID() string {
	return o.currentSessionID()
}

// State returns the send loop's current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// transcript is the context for an advice call: the server snapshot plus the
// just-sent user turn.
func (o *Orchestrator) transcript(prompt string) []aiservice.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	turns := make([]aiservice.Turn, 0, len(o.server)+1)
	for _, message := range o.server {
		turns = append(turns, aiservice.Turn{Sender: message.Sender, Content: message.Content})
	}
	return append(turns, aiservice.Turn{Sender: chatmodel.SenderUser, Content: prompt})
}

func (o *Orchestrator) appendPending(message chatmodel.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, message)
}

func (o *Orchestrator) currentSessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

func (o *Orchestrator) cacheSessionID(sessionID string) {
	o.mu.Lock()
	o.sessionID = sessionID
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.Set(SessionIDKey, sessionID); err != nil {
			log.Printf("[client] failed to persist session id: %v", err)
		}
	}
}

func (o *Orchestrator) clearSessionID() {
	o.mu.Lock()
	o.sessionID = ""
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.Delete(SessionIDKey); err != nil {
			log.Printf("[client] failed to clear session id: %v", err)
		}
	}
}
