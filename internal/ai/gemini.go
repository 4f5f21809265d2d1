// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiProvider implements Provider on top of the Google GenAI SDK
// (models.generateContent on the Gemini Developer API).
type geminiProvider struct {
	client *genai.Client
	model  string
}

// newGemini creates a Gemini provider. BaseURL, when set, replaces the
// public endpoint (used by tests and proxies).
func newGemini(ctx context.Context, cfg ProviderConfig) (*geminiProvider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &geminiProvider{client: client, model: cfg.Model}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini }

// Generate sends a generateContent request and returns the concatenated
// text of the first candidate.
func (p *geminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	var gc *genai.GenerateContentConfig
	if req.System != "" || req.Temperature != nil {
		gc = &genai.GenerateContentConfig{Temperature: req.Temperature}
		if req.System != "" {
			gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return text, nil
}
