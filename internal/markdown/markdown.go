// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts Markdown source text into HTML using goldmark.
// Input comes from catalog long descriptions and AI advisory answers, so
// raw HTML is never passed through: goldmark replaces it with a comment.
// Single newlines become line breaks because model answers are usually
// plain text laid out line by line.
package markdown

import (
	"bytes"
	"html/template"
	"log/slog"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM, // tables, strikethrough, autolinks, task lists
		highlighting.NewHighlighting( // fenced code blocks in generated test cases
			highlighting.WithStyle("github"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Safe converts source for direct use in html/template. On conversion
// failure it logs and falls back to the escaped source in a paragraph.
func Safe(source string) template.HTML {
	out, err := ToHTML(source)
	if err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML("<p>" + template.HTMLEscapeString(source) + "</p>")
	}
	return template.HTML(out)
}
