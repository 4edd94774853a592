// Command chatcli is a terminal chat client for a running CounslerAI server.
// It exercises the full client protocol: guest identity, lazy session
// creation, optimistic sends, and reconcile-on-refetch.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/counslerai/counslerai/internal/client"
	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
	identityservice "github.com/counslerai/counslerai/internal/service/identity"
	"github.com/counslerai/counslerai/pkg/keyvalue"
)

// staticUser is an AuthProvider for a pre-authenticated user id passed on
// the command line.
type staticUser string

func (u staticUser) CurrentUser() (string, bool) { return string(u), false }

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	server := flag.String("server", "http://localhost:8080", "CounslerAI server base URL")
	statePath := flag.String("state", defaultStatePath(), "path of the durable client state file")
	user := flag.String("user", "", "authenticated user id (default: resolve as guest)")
	reset := flag.Bool("reset", false, "forget the cached session and start a new conversation")
	flag.Parse()

	store, err := openStore(*statePath)
	if err != nil {
		log.Printf("[cli] %v, falling back to in-memory state", err)
		store = keyvalue.NewMemoryStore()
	}

	if *reset {
		if err := store.Delete(client.SessionIDKey); err != nil {
			log.Fatalf("failed to reset session: %v", err)
		}
	}

	var auth identityservice.AuthProvider = identityservice.Anonymous{}
	if *user != "" {
		auth = staticUser(*user)
	}
	resolver := identityservice.NewResolver(auth, store)

	api := client.NewHTTPAPI(*server)
	orchestrator := client.New(api, api, resolver, store)

	ctx := context.Background()

	if orchestrator.SessionID() != "" {
		if err := orchestrator.Refresh(ctx); err != nil {
			log.Printf("[cli] could not restore previous conversation: %v", err)
		}
	}
	for _, message := range orchestrator.Messages() {
		printMessage(message)
	}

	actor, _ := resolver.Resolve()
	switch {
	case actor.UserID != "":
		fmt.Printf("chatting as user %s — type a message, or /quit to exit\n", actor.UserID)
	case actor.GuestID != "":
		fmt.Printf("chatting as guest %s — type a message, or /quit to exit\n", actor.GuestID)
	default:
		log.Fatal("could not resolve an identity")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			break
		}

		if err := orchestrator.Send(ctx, line); err != nil {
			log.Printf("[cli] send failed: %v", err)
			continue
		}

		messages := orchestrator.Messages()
		if len(messages) > 0 {
			printMessage(messages[len(messages)-1])
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("reading input: %v", err)
	}
}

func openStore(path string) (keyvalue.Store, error) {
	return keyvalue.NewFileStore(path)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "counslerai-state.json"
	}
	return filepath.Join(home, ".counslerai", "state.json")
}

func printMessage(message chatmodel.Message) {
	prefix := "you"
	if message.Sender == chatmodel.SenderAI {
		prefix = "counslerai"
	}
	fmt.Printf("%s: %s\n", prefix, message.Content)
}
