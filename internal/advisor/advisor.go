// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package advisor issues the two QA advisory prompts to an AI provider and
// runs them as background jobs the browser polls for.
//
// Advisory calls never fail from the caller's point of view: any provider
// error is logged and replaced by a static fallback message.
package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"testifyhub/internal/ai"
)

// Fallback messages shown when the provider cannot answer.
const (
	AnalysisFallback   = "Unable to perform AI analysis at this time. Please try again later."
	GenerationFallback = "AI Generation failed."
)

// GenerationTemperature is the sampling temperature used for test case
// generation.
const GenerationTemperature float32 = 0.7

// Cache keeps successful answers keyed by prompt. Implementations treat
// their own errors as misses.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// Advisor wraps a provider with the fixed prompt templates.
type Advisor struct {
	provider ai.Provider
	cache    Cache
	group    singleflight.Group
}

// New creates an advisor backed by p. A nil cache disables caching.
func New(p ai.Provider, c Cache) *Advisor {
	return &Advisor{provider: p, cache: c}
}

// AnalyzeTemplate asks for a three-point QA review of a test suite
// template. Identical in-flight requests share one provider call.
func (a *Advisor) AnalyzeTemplate(ctx context.Context, name, description string) string {
	req := ai.Request{Prompt: AnalysisPrompt(name, description)}

	text, err := a.generate(ctx, "analyze", req)
	if err != nil {
		slog.Error("ai analyze template failed", "provider", a.provider.Name(), "template", name, "error", err)
		return AnalysisFallback
	}
	return text
}

// GenerateTestCase drafts a structured test case for a free-form
// requirement.
func (a *Advisor) GenerateTestCase(ctx context.Context, requirement string) string {
	req := ai.Request{
		Prompt:      TestCasePrompt(requirement),
		Temperature: ai.Temperature(GenerationTemperature),
	}

	text, err := a.generate(ctx, "generate", req)
	if err != nil {
		slog.Error("ai generate test case failed", "provider", a.provider.Name(), "error", err)
		return GenerationFallback
	}
	return text
}

// generate answers from the cache when possible, otherwise calls the
// provider once per distinct in-flight prompt.
func (a *Advisor) generate(ctx context.Context, kind string, req ai.Request) (string, error) {
	key := cacheKey(a.provider.Name(), kind, req.Prompt)

	if a.cache != nil {
		if text, ok := a.cache.Get(ctx, key); ok {
			return text, nil
		}
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		text, err := a.provider.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		if a.cache != nil {
			a.cache.Set(ctx, key, text)
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func cacheKey(provider, kind, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + kind + "\x00" + prompt))
	return kind + ":" + hex.EncodeToString(sum[:])
}

// AnalysisPrompt builds the template analysis prompt.
func AnalysisPrompt(name, description string) string {
	var b strings.Builder
	b.WriteString("Act as a senior QA Automation Engineer. Analyze this test suite template:\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	b.WriteString("Provide a concise analysis in 3 points:\n")
	b.WriteString("1. Key scenarios covered.\n")
	b.WriteString("2. Potential missing edge cases.\n")
	b.WriteString("3. A recommended tool for this specific suite.\n")
	b.WriteString("Format as plain text with clear headings.")
	return b.String()
}

// TestCasePrompt builds the test case generation prompt.
func TestCasePrompt(requirement string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a structured test case for the following requirement: \"%s\".\n", requirement)
	b.WriteString("Include:\n")
	b.WriteString("- Title\n")
	b.WriteString("- Pre-conditions\n")
	b.WriteString("- Steps (Action and Expected Result)\n")
	b.WriteString("- Priority")
	return b.String()
}
