package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClaudeClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "k" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.System != "sys" || len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Temperature != 0.2 || req.MaxTokens != 512 {
			t.Errorf("expected temperature 0.2 and max tokens 512, got %v %d", req.Temperature, req.MaxTokens)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("k", "claude-test", Options{Temperature: 0.2, MaxTokens: 512, Timeout: 5 * time.Second, BaseURL: srv.URL})
	defer c.Close()

	out, err := c.Complete(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"a":1}` {
		t.Errorf("expected joined text blocks, got %q", out)
	}
}

func TestClaudeClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClaudeClient("k", "m", Options{Timeout: 5 * time.Second, BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "", "hi")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable || !se.Transient() {
		t.Errorf("expected transient 503, got %+v", se)
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req["model"] != "gpt-test" {
			t.Errorf("expected model gpt-test, got %v", req["model"])
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("expected system and user messages, got %v", req["messages"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-test",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"ok\": true}"}}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-test", Options{Temperature: 0.2, MaxTokens: 256, Timeout: 5 * time.Second, BaseURL: srv.URL + "/"})
	out, err := c.Complete(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok": true}` {
		t.Errorf("unexpected content %q", out)
	}
	if c.Model() != "gpt-test" {
		t.Errorf("expected model name passthrough, got %q", c.Model())
	}
}

func TestOpenAIClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-test", Options{Timeout: 5 * time.Second, BaseURL: srv.URL + "/"})
	_, err := c.Complete(context.Background(), "sys", "hello")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusUnauthorized || se.Transient() {
		t.Errorf("expected non-transient 401, got %+v", se)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := New("openai", "k", "m", Options{}); err != nil {
		t.Errorf("openai: %v", err)
	}
	if c, err := New("anthropic", "k", "m", Options{}); err != nil {
		t.Errorf("anthropic: %v", err)
	} else if _, ok := c.(*ClaudeClient); !ok {
		t.Errorf("expected *ClaudeClient, got %T", c)
	}
	if _, err := New("cohere", "k", "m", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
