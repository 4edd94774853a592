package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	identitymodel "github.com/counslerai/counslerai/internal/model/identity"
	aiservice "github.com/counslerai/counslerai/internal/service/ai"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
)

// HTTPAPI talks to a CounslerAI server's JSON API. It implements both
// SessionAPI and AdviceAPI, mapping a 404 on message append back to
// chatservice.ErrSessionNotFound so the orchestrator's retry fires.
type HTTPAPI struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAPI builds an API client for the server at baseURL.
func NewHTTPAPI(baseURL string) *HTTPAPI {
	return &HTTPAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// CreateSession creates a session owned by actor.
func (c *HTTPAPI) CreateSession(ctx context.Context, actor identitymodel.Actor, topic string) (chatmodel.ChatSession, error) {
	payload := struct {
		UserID  string `json:"userId,omitempty"`
		GuestID string `json:"guestId,omitempty"`
		Topic   string `json:"topic,omitempty"`
	}{UserID: actor.UserID, GuestID: actor.GuestID, Topic: topic}

	var session chatmodel.ChatSession
	if _, err := c.do(ctx, http.MethodPost, "/api/chat/sessions", payload, &session); err != nil {
		return chatmodel.ChatSession{}, err
	}
	return session, nil
}

// AppendMessage appends a message to an existing session.
func (c *HTTPAPI) AppendMessage(ctx context.Context, sessionID, sender, content string) (chatmodel.Message, error) {
	payload := struct {
		SessionID string `json:"sessionId"`
		Sender    string `json:"sender"`
		Content   string `json:"content"`
	}{SessionID: sessionID, Sender: sender, Content: content}

	var message chatmodel.Message
	status, err := c.do(ctx, http.MethodPost, "/api/chat/messages", payload, &message)
	if status == http.StatusNotFound {
		return chatmodel.Message{}, chatservice.ErrSessionNotFound
	}
	if err != nil {
		return chatmodel.Message{}, err
	}
	return message, nil
}

// GetSession fetches a session with its messages.
func (c *HTTPAPI) GetSession(ctx context.Context, sessionID string) (chatmodel.ChatSession, error) {
	var session chatmodel.ChatSession
	status, err := c.do(ctx, http.MethodGet, "/api/chat/sessions/"+sessionID, nil, &session)
	if status == http.StatusNotFound {
		return chatmodel.ChatSession{}, chatservice.ErrSessionNotFound
	}
	if err != nil {
		return chatmodel.ChatSession{}, err
	}
	return session, nil
}

// GetAdvice requests an assistant reply for prompt plus context.
func (c *HTTPAPI) GetAdvice(ctx context.Context, prompt string, contextTurns []aiservice.Turn) (string, error) {
	payload := struct {
		Prompt  string           `json:"prompt"`
		Context []aiservice.Turn `json:"context,omitempty"`
	}{Prompt: prompt, Context: contextTurns}

	var result struct {
		Response string `json:"response"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/ai/advice", payload, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

// do issues one JSON request and decodes the response into out. It returns
// the HTTP status so callers can special-case 404 before inspecting err.
func (c *HTTPAPI) do(ctx context.Context, method, path string, payload, out any) (int, error) {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("client: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return resp.StatusCode, fmt.Errorf("client: %s %s: %s", method, path, apiErr.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("client: decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
