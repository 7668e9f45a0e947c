package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAI_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var body struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body.Model != "text-embedding-3-small" || body.Input != "debounce hook" {
			t.Errorf("unexpected request: %+v", body)
		}
		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI(&Config{
		Model:   "text-embedding-3-small",
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	vec, err := p.Embed(context.Background(), "debounce hook")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("got %d dims, want 3", len(vec))
	}
	if p.Dim() != 3 {
		t.Fatalf("Dim() = %d after embed, want 3", p.Dim())
	}
	if got := p.ModelID(); got != "openai:text-embedding-3-small" {
		t.Fatalf("ModelID() = %q", got)
	}
}

func TestOpenAI_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI(&Config{Model: "m", APIKey: "k", BaseURL: srv.URL})
	_, err := p.Embed(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry the status: %v", err)
	}
}

func TestOpenAI_MissingEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	p := NewOpenAI(&Config{Model: "m", APIKey: "k", BaseURL: srv.URL})
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestOpenAI_UnconfiguredAndEmptyInput(t *testing.T) {
	p := NewOpenAI(&Config{APIKey: "k", BaseURL: "http://localhost"})
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Fatal("missing model must be rejected")
	}

	p = NewOpenAI(&Config{Model: "m", BaseURL: "http://localhost"})
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Fatal("missing API key must be rejected")
	}

	p = NewOpenAI(&Config{Model: "m", APIKey: "k", BaseURL: "http://localhost"})
	if _, err := p.Embed(context.Background(), "   "); err == nil {
		t.Fatal("blank text must be rejected")
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, err := NewFromConfig(nil); err == nil {
		t.Fatal("nil config must be rejected")
	}
	if _, err := NewFromConfig(&Config{}); err == nil {
		t.Fatal("empty provider must be rejected")
	}
	if _, err := NewFromConfig(&Config{Provider: "mystery"}); err == nil {
		t.Fatal("unknown provider must be rejected")
	}
	p, err := NewFromConfig(&Config{Provider: "openai", Model: "m"})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if p == nil {
		t.Fatal("nil provider")
	}
}
