package config_test

import (
	"testing"
	"time"

	"github.com/counslerai/counslerai/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("unexpected dsn %q", cfg.Database.DSN)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without an api key")
	}
	if cfg.AI.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.AI.BaseURL)
	}
	if cfg.AI.Model != "openai/gpt-4o" {
		t.Fatalf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.MaxTokens != 1000 {
		t.Fatalf("unexpected max tokens %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AI.Timeout)
	}
}

func TestLoadPortForms(t *testing.T) {
	cases := []struct {
		name string
		port string
		want string
	}{
		{name: "bare port", port: "9090", want: ":9090"},
		{name: "with colon", port: ":9090", want: ":9090"},
		{name: "host and port", port: "127.0.0.1:9090", want: "127.0.0.1:9090"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PORT", tc.port)
			cfg, err := config.Load()
			if err != nil {
				t.Fatalf("Load err: %v", err)
			}
			if cfg.Server.Addr != tc.want {
				t.Fatalf("got %q, want %q", cfg.Server.Addr, tc.want)
			}
		})
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "90 90")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestLoadAIOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_MODEL", "anthropic/claude-3.5")
	t.Setenv("AI_MAX_TOKENS", "256")
	t.Setenv("AI_TIMEOUT_SECONDS", "10")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if !cfg.AI.Enabled() {
		t.Fatal("expected AI enabled")
	}
	if cfg.AI.Model != "anthropic/claude-3.5" {
		t.Fatalf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.MaxTokens != 256 {
		t.Fatalf("unexpected max tokens %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AI.Timeout)
	}
}

func TestLoadInvalidMaxTokens(t *testing.T) {
	t.Setenv("AI_MAX_TOKENS", "zero")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid AI_MAX_TOKENS")
	}
}
