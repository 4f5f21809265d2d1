// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns template titles into URL path segments.
package slug

import (
	"regexp"
	"strings"
)

var (
	// separators become word boundaries so "UI/UX" reads "ui-ux".
	separators = regexp.MustCompile(`[\s/&_|+.]+`)
	// disallowed drops anything that is not a lowercase letter, digit, or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from s.
// Example: "Banking API Security Suite" → "banking-api-security-suite".
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = separators.ReplaceAllString(result, "-")
	result = disallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
