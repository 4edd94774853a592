package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	aiservice "github.com/counslerai/counslerai/internal/service/ai"
)

type fakeAdvisor struct {
	reply string
	err   error
	got   []aiservice.Turn
}

func (f *fakeAdvisor) GetAdvice(_ context.Context, _ string, contextTurns []aiservice.Turn) (string, error) {
	f.got = contextTurns
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func setupRouter(advisor Advisor) *chi.Mux {
	r := chi.NewRouter()
	New(advisor, nil).RegisterRoutes(r)
	return r
}

func TestGetAdvice(t *testing.T) {
	advisor := &fakeAdvisor{reply: "Explore your strengths."}
	r := setupRouter(advisor)

	body, _ := json.Marshal(map[string]any{
		"prompt": "What career fits me?",
		"context": []map[string]string{
			{"sender": "ai", "content": "Hi"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/ai/advice", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.Response != "Explore your strengths." {
		t.Fatalf("unexpected response %q", result.Response)
	}
	if len(advisor.got) != 1 || advisor.got[0].Sender != "ai" {
		t.Fatalf("context not forwarded: %+v", advisor.got)
	}
}

func TestGetAdviceMissingPrompt(t *testing.T) {
	r := setupRouter(&fakeAdvisor{reply: "x"})

	req := httptest.NewRequest(http.MethodPost, "/ai/advice", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetAdviceProviderFault(t *testing.T) {
	r := setupRouter(&fakeAdvisor{err: errors.New("rate limited")})

	req := httptest.NewRequest(http.MethodPost, "/ai/advice", strings.NewReader(`{"prompt":"hi"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestStreamMissingMessage(t *testing.T) {
	r := setupRouter(&fakeAdvisor{reply: "x"})

	req := httptest.NewRequest(http.MethodGet, "/ai/stream", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStreamEmitsMessageAndDone(t *testing.T) {
	r := setupRouter(&fakeAdvisor{reply: "take a breath"})

	req := httptest.NewRequest(http.MethodGet, "/ai/stream?message=help", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := resp.Body.String()
	if !strings.Contains(body, "event: message") {
		t.Fatalf("missing message event in %q", body)
	}
	if !strings.Contains(body, "take a breath") {
		t.Fatalf("missing advice text in %q", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Fatalf("missing done event in %q", body)
	}
}
