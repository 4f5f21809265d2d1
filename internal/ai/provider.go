// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai talks to hosted text-generation models. Each backend
// implements Provider; New picks one by name. Google Gemini is the default
// backend, with an OpenAI-compatible chat completions backend as an
// alternative.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// DefaultTimeout bounds a single generation round trip.
const DefaultTimeout = 60 * time.Second

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("ai: empty response")

// Request is a single prompt sent to a model.
type Request struct {
	// System sets the model's behaviour. Optional.
	System string
	// Prompt is the user turn.
	Prompt string
	// Temperature overrides the provider's sampling temperature when set.
	Temperature *float32
}

// Provider generates free-form text from a prompt.
type Provider interface {
	// Generate sends req to the model and returns the generated text.
	Generate(ctx context.Context, req Request) (string, error)

	// Name returns the provider identifier (e.g., "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // empty selects the provider's public endpoint
	Timeout time.Duration // zero selects DefaultTimeout
}

// New returns the provider registered under name. An empty name selects
// Gemini. The API key is required.
func New(ctx context.Context, name string, cfg ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: provider %q requires an API key", name)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch name {
	case ProviderGemini, "":
		return newGemini(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", name)
	}
}

// Temperature is a convenience for building Request.Temperature.
func Temperature(t float32) *float32 {
	return &t
}
