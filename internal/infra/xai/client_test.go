package xai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/illsk1lls/Grokory/internal/domain"
	"github.com/illsk1lls/Grokory/internal/infra/xai"
)

func TestClient_Ask(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization: got %q, want bearer token", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}

		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Hello! How can I help?"}},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := xai.NewClientWithURL("test-key", "grok-test", server.URL)

	reply, err := client.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if reply != "Hello! How can I help?" {
		t.Errorf("reply: got %q", reply)
	}

	server.Close() // waits for the handler, so gotBody is settled

	if gotBody["stream"] != false {
		t.Errorf("stream: got %v, want false", gotBody["stream"])
	}
	if gotBody["temperature"] != float64(0) {
		t.Errorf("temperature: got %v, want 0", gotBody["temperature"])
	}
	if gotBody["model"] != "grok-test" {
		t.Errorf("model: got %v, want grok-test", gotBody["model"])
	}

	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("messages: got %v, want system + user pair", gotBody["messages"])
	}
	system := messages[0].(map[string]any)
	if system["role"] != "system" || system["content"] != "You are Grok, a helpful AI assistant." {
		t.Errorf("system message: got %v", system)
	}
	user := messages[1].(map[string]any)
	if user["role"] != "user" || user["content"] != "hello" {
		t.Errorf("user message: got %v", user)
	}
}

func TestClient_AskWithoutKeyReturnsCannedReply(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := xai.NewClientWithURL("", "grok-test", server.URL)

	for _, utterance := range []string{"", "what time is it"} {
		reply, err := client.Ask(context.Background(), utterance)
		if err != nil {
			t.Fatalf("Ask(%q) error: %v", utterance, err)
		}
		if reply != xai.CannedReply {
			t.Errorf("Ask(%q): got %q, want canned reply", utterance, reply)
		}
	}

	if calls.Load() != 0 {
		t.Errorf("demo mode made %d network calls, want 0", calls.Load())
	}
}

func TestClient_AskClassifiesQuotaExhaustion(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"payment required", http.StatusPaymentRequired, `{"error":"payment required"}`},
		{"too many requests", http.StatusTooManyRequests, `{"error":"rate limited"}`},
		{"prose credits message", http.StatusForbidden, `{"error":"Your team has no API credits remaining"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tt.body, tt.status)
			}))
			defer server.Close()

			client := xai.NewClientWithURL("test-key", "grok-test", server.URL)

			_, err := client.Ask(context.Background(), "hello")
			var aerr *domain.AssistantError
			if !errors.As(err, &aerr) {
				t.Fatalf("expected *domain.AssistantError, got %v", err)
			}
			if aerr.Kind != domain.FailureQuotaExceeded {
				t.Errorf("kind: got %s, want %s", aerr.Kind, domain.FailureQuotaExceeded)
			}
		})
	}
}

func TestClient_AskClassifiesNetworkFailure(t *testing.T) {
	// Reserved TLD, never resolves: the transport surfaces a DNS error.
	client := xai.NewClientWithURL("test-key", "grok-test", "http://grokory.invalid")

	_, err := client.Ask(context.Background(), "hello")
	var aerr *domain.AssistantError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *domain.AssistantError, got %v", err)
	}
	if aerr.Kind != domain.FailureNetworkUnreachable {
		t.Errorf("kind: got %s, want %s", aerr.Kind, domain.FailureNetworkUnreachable)
	}
}

func TestClient_AskClassifiesConnectionRefused(t *testing.T) {
	// Grab a port, then close the listener so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client := xai.NewClientWithURL("test-key", "grok-test", "http://"+addr)

	_, askErr := client.Ask(context.Background(), "hello")
	var aerr *domain.AssistantError
	if !errors.As(askErr, &aerr) {
		t.Fatalf("expected *domain.AssistantError, got %v", askErr)
	}
	if aerr.Kind != domain.FailureNetworkUnreachable {
		t.Errorf("kind: got %s, want %s", aerr.Kind, domain.FailureNetworkUnreachable)
	}
}

func TestClient_AskClassifiesMalformedBodyAsOther(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	client := xai.NewClientWithURL("test-key", "grok-test", server.URL)

	_, err := client.Ask(context.Background(), "hello")
	var aerr *domain.AssistantError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *domain.AssistantError, got %v", err)
	}
	if aerr.Kind != domain.FailureOther {
		t.Errorf("kind: got %s, want %s", aerr.Kind, domain.FailureOther)
	}
}

func TestClient_AskEmptyChoicesIsOther(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := xai.NewClientWithURL("test-key", "grok-test", server.URL)

	_, err := client.Ask(context.Background(), "hello")
	var aerr *domain.AssistantError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *domain.AssistantError, got %v", err)
	}
	if aerr.Kind != domain.FailureOther {
		t.Errorf("kind: got %s, want %s", aerr.Kind, domain.FailureOther)
	}
}
