// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the marketplace and
// the admin area. It supports full-page and HTMX partial rendering,
// automatically detecting the request type via the HX-Request header, and
// renders the small fragments HTMX swaps in on its own.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"testifyhub/internal/markdown"
	"testifyhub/internal/middleware"
	"testifyhub/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template files with a special role.
const (
	baseFile      = "base.html"
	fragmentsFile = "fragments.html"
)

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active navigation section ("marketplace", "generate", "categories")
	Session   *session.Data  // Current visitor session
	CSRFToken string         // CSRF token for forms and HTMX headers
	AdminOpen bool           // Admin area reachable without login
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Advice is the view of one AI advisory slot, rendered by the "advice"
// fragment. A pending slot polls PollURL until the job finishes.
type Advice struct {
	Pending      bool
	PollURL      string
	PendingLabel string
	Text         string // markdown
	Failed       bool
	RetryURL     string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	fragments *template.Template
	funcMap   template.FuncMap
	adminOpen bool
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout and the
// shared fragments. adminOpen is shown in the layout so an unprotected
// admin area never goes unnoticed.
func New(devMode, adminOpen bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		adminOpen: adminOpen,
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "nav-link active"
				}
				return "nav-link"
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"isDev": func() bool {
				return devMode
			},
			"markdown": markdown.Safe,
			"join":     strings.Join,
			"plural": func(n int, one, many string) string {
				if n == 1 {
					return one
				}
				return many
			},
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	r.fragments, err = template.New(fragmentsFile).Funcs(r.funcMap).ParseFS(templateFS, "templates/"+fragmentsFile)
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == baseFile || name == fragmentsFile || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error

		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				templateFS, "templates/"+name, "templates/"+fragmentsFile,
			)
		} else {
			tmpl, parseErr = template.New(baseFile).Funcs(r.funcMap).ParseFS(
				templateFS, "templates/"+baseFile, "templates/"+fragmentsFile, "templates/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page or an HTMX partial with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
// For full page loads, the entire base layout is rendered.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	// Inject CSRF token and session from context.
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	data.AdminOpen = rn.adminOpen
	if data.Data == nil {
		data.Data = map[string]any{}
	}

	execName := baseFile
	switch {
	case isHTMX(r) && !standaloneTemplates[name]:
		execName = "content"
	case standaloneTemplates[name]:
		execName = name + ".html"
	}

	rn.write(w, status, tmpl, execName, data)
}

// Fragment renders one of the shared fragments (e.g. "advice", "flash").
func (rn *Renderer) Fragment(w http.ResponseWriter, status int, name string, data any) {
	rn.write(w, status, rn.fragments, name, data)
}

// write executes into a buffer first so a failing template never leaves
// a half-written page behind a 200 status.
func (rn *Renderer) write(w http.ResponseWriter, status int, tmpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
