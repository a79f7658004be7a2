package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateTextMissingKey(t *testing.T) {
	client := NewGeminiClient(Config{})
	_, err := client.GenerateText(context.Background(), "hello")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerateText(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(candidateResponse("  • save more  ")))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "test-key", Model: "gemini-pro", BaseURL: srv.URL})
	text, err := client.GenerateText(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "• save more" {
		t.Fatalf("expected trimmed completion, got %q", text)
	}
	if gotPath != "/models/gemini-pro:generateContent" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "analyze this" {
		t.Fatalf("prompt not carried in request: %+v", gotBody)
	}
}

func TestGenerateTextEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := client.GenerateText(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestGenerateTextUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := client.GenerateText(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}
