package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProviderComplete(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    gotReq.Model,
			Response: `{"quality_score": 0.7}`,
			Done:     true,
		})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatal(err)
	}

	reply, err := p.Complete(context.Background(), Request{
		Task:   "quality",
		System: "You are a librarian.",
		Prompt: "Score this.",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != `{"quality_score": 0.7}` {
		t.Errorf("reply = %q", reply)
	}
	if gotReq.Stream {
		t.Error("streaming requested; replies must be single-shot")
	}
	if gotReq.System != "You are a librarian." {
		t.Errorf("system prompt = %q", gotReq.System)
	}
}

func TestOllamaProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Complete(context.Background(), Request{Task: "relevance"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Complete() error = %v, want ErrUnavailable", err)
	}
}

func TestOllamaProviderIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false against a live /api/tags")
	}

	down, err := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	if down.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true against an unreachable host")
	}
}
