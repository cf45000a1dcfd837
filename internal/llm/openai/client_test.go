package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/openai/openai-go/option"

	"resume-review/internal/llm"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, func() map[string]any) {
	t.Helper()
	var mu sync.Mutex
	var lastBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		lastBody = payload
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func() map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return lastBody
	}
}

func TestGenerateSendsSingleUserMessage(t *testing.T) {
	server, last := newTestServer(t, http.StatusOK,
		`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"grammar\":\"ok\"}"}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`)

	client, err := NewClient("test-key", "", option.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := client.Generate(context.Background(), "review please")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"grammar":"ok"}` {
		t.Fatalf("unexpected content: %q", out)
	}

	body := last()
	if body["model"] != DefaultModel {
		t.Fatalf("expected default model, got %v", body["model"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}
	msg, _ := messages[0].(map[string]any)
	if msg["role"] != "user" {
		t.Fatalf("unexpected role: %+v", msg)
	}
	parts, _ := msg["content"].([]any)
	if len(parts) != 1 {
		t.Fatalf("expected one content part, got %+v", msg["content"])
	}
	part, _ := parts[0].(map[string]any)
	if part["type"] != "text" || part["text"] != "review please" {
		t.Fatalf("unexpected content part: %+v", part)
	}
}

func TestGenerateNoRetryOnServerError(t *testing.T) {
	var calls int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", "gpt-4o", option.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestGenerateMissingChoices(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`)

	client, err := NewClient("test-key", "m", option.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error for missing choices")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "gpt-4o-mini")
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
