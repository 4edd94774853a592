package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/counslerai/counslerai/internal/client"
	"github.com/counslerai/counslerai/internal/handler"
	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	identitymodel "github.com/counslerai/counslerai/internal/model/identity"
	memoryrepo "github.com/counslerai/counslerai/internal/repository/memory"
	chatservice "github.com/counslerai/counslerai/internal/service/chat"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	chatSvc := chatservice.NewService(memoryrepo.NewStore())
	server := httptest.NewServer(handler.NewRouter(chatSvc, nil))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPAPISessionLifecycle(t *testing.T) {
	server := newTestServer(t)
	api := client.NewHTTPAPI(server.URL)
	ctx := context.Background()

	session, err := api.CreateSession(ctx, identitymodel.Actor{GuestID: "g1"}, "careers")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if session.ID == "" || session.OwnerGuestID != "g1" {
		t.Fatalf("unexpected session %+v", session)
	}

	message, err := api.AppendMessage(ctx, session.ID, chatmodel.SenderUser, "hello")
	if err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	if message.ID == "" || message.Content != "hello" {
		t.Fatalf("unexpected message %+v", message)
	}

	got, err := api.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestHTTPAPIMapsNotFound(t *testing.T) {
	server := newTestServer(t)
	api := client.NewHTTPAPI(server.URL)
	ctx := context.Background()

	if _, err := api.AppendMessage(ctx, "missing", chatmodel.SenderUser, "hi"); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from append, got %v", err)
	}
	if _, err := api.GetSession(ctx, "missing"); !errors.Is(err, chatservice.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from get, got %v", err)
	}
}

func TestHTTPAPIGetAdvice(t *testing.T) {
	advice := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/advice" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"try journaling"}`))
	}))
	defer advice.Close()

	api := client.NewHTTPAPI(advice.URL)
	response, err := api.GetAdvice(context.Background(), "help", nil)
	if err != nil {
		t.Fatalf("GetAdvice err: %v", err)
	}
	if response != "try journaling" {
		t.Fatalf("unexpected response %q", response)
	}
}
