// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- Helpers ----------

// newTestServer creates an httptest.Server that responds with the given status
// code and body bytes. The caller must call Close on the returned server.
func newTestServer(t *testing.T, statusCode int, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
}

// openAISuccessBody builds a JSON body matching the OpenAI chat completions
// response format with a single choice containing the given text.
func openAISuccessBody(text string) []byte {
	resp := openAIResponse{
		Choices: []openAIChoice{
			{Message: openAIMessage{Role: "assistant", Content: text}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// geminiSuccessBody builds a JSON body matching the Gemini generateContent
// response format with a single candidate containing the given text.
func geminiSuccessBody(text string) []byte {
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

// =====================================================================
// OpenAI Provider Tests
// =====================================================================

func TestOpenAIGenerate_Success(t *testing.T) {
	want := "Hello from OpenAI"
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(want))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o",
		BaseURL: srv.URL,
	})

	got, err := p.Generate(context.Background(), Request{System: "system prompt", Prompt: "user prompt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOpenAIGenerate_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, []byte(`{"error":"internal"}`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), Request{Prompt: "user"})
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should mention status 500, got: %v", err)
	}
}

func TestOpenAIGenerate_EmptyChoices(t *testing.T) {
	body, _ := json.Marshal(openAIResponse{Choices: []openAIChoice{}})
	srv := newTestServer(t, http.StatusOK, body)
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), Request{Prompt: "user"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAIGenerate_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`not json`))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Generate(context.Background(), Request{Prompt: "user"})
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "openai unmarshal") {
		t.Errorf("error should mention unmarshal, got: %v", err)
	}
}

func TestOpenAIGenerate_VerifiesRequest(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody openAIRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAISuccessBody("ok"))
	}))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "sk-secret", Model: "gpt-4o-mini", BaseURL: srv.URL + "/"})

	_, err := p.Generate(context.Background(), Request{
		System:      "be terse",
		Prompt:      "write a test",
		Temperature: Temperature(0.7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer sk-secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer sk-secret")
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "write a test" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", gotBody.Temperature)
	}
}

func TestOpenAIGenerate_OmitsUnsetTemperature(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.Write(openAISuccessBody("ok"))
	}))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := p.Generate(context.Background(), Request{Prompt: "p"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(raw, "temperature") {
		t.Errorf("request body should omit temperature, got %s", raw)
	}
	if strings.Contains(raw, `"system"`) {
		t.Errorf("request body should omit the system message, got %s", raw)
	}
}

func TestOpenAIGenerate_ContextCanceled(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, openAISuccessBody("late"))
	defer srv.Close()

	p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Generate(ctx, Request{Prompt: "p"}); err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

// =====================================================================
// Gemini Provider Tests
// =====================================================================

func newTestGemini(t *testing.T, baseURL string) Provider {
	t.Helper()
	p, err := New(context.Background(), ProviderGemini, ProviderConfig{
		APIKey:  "gem-key",
		Model:   "gemini-test",
		BaseURL: baseURL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestGeminiGenerate_Success(t *testing.T) {
	want := "1. Key scenarios covered"
	srv := newTestServer(t, http.StatusOK, geminiSuccessBody(want))
	defer srv.Close()

	got, err := newTestGemini(t, srv.URL).Generate(context.Background(), Request{Prompt: "analyze"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGeminiGenerate_VerifiesRequest(t *testing.T) {
	var gotKey, gotPath, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write(geminiSuccessBody("ok"))
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv.URL).Generate(context.Background(), Request{
		System:      "You are a QA engineer.",
		Prompt:      "Generate a test case",
		Temperature: Temperature(0.7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "gem-key" {
		t.Errorf("x-goog-api-key = %q, want gem-key", gotKey)
	}
	if !strings.Contains(gotPath, "gemini-test:generateContent") {
		t.Errorf("path = %q, want it to call gemini-test:generateContent", gotPath)
	}
	for _, fragment := range []string{"Generate a test case", "You are a QA engineer.", "temperature"} {
		if !strings.Contains(gotBody, fragment) {
			t.Errorf("request body missing %q: %s", fragment, gotBody)
		}
	}
}

func TestGeminiGenerate_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusForbidden, []byte(`{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`))
	defer srv.Close()

	_, err := newTestGemini(t, srv.URL).Generate(context.Background(), Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error for HTTP 403, got nil")
	}
	if !strings.Contains(err.Error(), "gemini generate") {
		t.Errorf("error should be wrapped with provider context, got: %v", err)
	}
}

func TestGeminiGenerate_NoCandidates(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"candidates":[]}`))
	defer srv.Close()

	_, err := newTestGemini(t, srv.URL).Generate(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
