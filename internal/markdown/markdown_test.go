// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    []string
		notWant []string
	}{
		{
			name:   "heading and list",
			source: "## Key scenarios\n\n1. Login\n2. Checkout",
			want:   []string{`<h2 id="key-scenarios">Key scenarios</h2>`, "<ol>", "<li>Login</li>"},
		},
		{
			name:   "hard wraps keep plain text lines apart",
			source: "Title: Reset password\nPriority: High",
			want:   []string{"Title: Reset password<br>", "Priority: High"},
		},
		{
			name:    "raw html is omitted",
			source:  "Hello <script>alert(1)</script>",
			want:    []string{"raw HTML omitted"},
			notWant: []string{"<script>"},
		},
		{
			name:    "javascript links are dropped",
			source:  "[click](javascript:alert(1))",
			notWant: []string{"javascript:"},
		},
		{
			name:   "gfm table",
			source: "| Step | Expected |\n|---|---|\n| Open app | Home shown |",
			want:   []string{"<table>", "<td>Open app</td>"},
		},
		{
			name:   "fenced code is highlighted",
			source: "```go\nfunc main() {}\n```",
			want:   []string{"<pre", "func"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output should not contain %q:\n%s", nw, got)
				}
			}
		})
	}
}

func TestSafe(t *testing.T) {
	got := string(Safe("Unable to perform AI analysis at this time. Please try again later."))
	if got != "<p>Unable to perform AI analysis at this time. Please try again later.</p>\n" {
		t.Errorf("Safe = %q", got)
	}
}
