// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"testifyhub/internal/advisor"
	"testifyhub/internal/browse"
	"testifyhub/internal/catalog"
	"testifyhub/internal/models"
	"testifyhub/internal/render"
	"testifyhub/internal/slug"
)

// UnknownCategory is shown for templates whose category no longer exists.
const UnknownCategory = "Unknown category"

// Card is a template as shown in the marketplace grid.
type Card struct {
	Template     models.Template
	Slug         string
	CategoryName string
}

// CategoryLink is one sidebar entry with its template count.
type CategoryLink struct {
	Category models.Category
	Count    int
	Active   bool
}

// Marketplace groups the public browsing handlers.
type Marketplace struct {
	renderer *render.Renderer
	catalog  *catalog.Store
	jobs     *advisor.Jobs
}

// NewMarketplace creates a new Marketplace handler group. jobs is used to
// resume an analysis started before a full page load.
func NewMarketplace(renderer *render.Renderer, store *catalog.Store, jobs *advisor.Jobs) *Marketplace {
	return &Marketplace{renderer: renderer, catalog: store, jobs: jobs}
}

// List renders the marketplace for the selection carried in the query
// string. The visible list is recomputed on every request.
func (m *Marketplace) List(w http.ResponseWriter, r *http.Request) {
	sel := browse.ParseSelection(r.URL.Query())
	sel.Search = clampSearch(sel.Search)
	templates := m.catalog.Templates()
	visible := browse.Visible(templates, sel)

	cards := make([]Card, len(visible))
	for i, t := range visible {
		cards[i] = m.card(t)
	}

	counts := browse.CountByCategory(templates)
	cats := m.catalog.Categories()
	sidebar := make([]CategoryLink, len(cats))
	for i, c := range cats {
		sidebar[i] = CategoryLink{Category: c, Count: counts[c.ID], Active: c.ID == sel.CategoryID}
	}

	heading := "All Templates"
	if sel.CategoryID != 0 {
		heading = m.categoryName(sel.CategoryID)
	}

	m.renderer.Page(w, r, "marketplace", &render.PageData{
		Title:   "Marketplace",
		Section: "marketplace",
		Data: map[string]any{
			"Selection": sel,
			"Heading":   heading,
			"Cards":     cards,
			"Total":     len(templates),
			"Sidebar":   sidebar,
			"Tags":      m.catalog.Tags(),
			"SortKeys":  browse.SortKeys,
		},
	})
}

// Detail renders a single template with its long description and the AI
// analysis panel. A ?job= parameter resumes a running or finished analysis.
func (m *Marketplace) Detail(w http.ResponseWriter, r *http.Request) {
	t, ok := m.catalog.TemplateBySlug(chi.URLParam(r, "slug"))
	if !ok {
		notFound(m.renderer, w, r, "Template not found.")
		return
	}

	card := m.card(t)
	var advice *render.Advice
	if id := r.URL.Query().Get("job"); id != "" {
		// A stale or unknown job just shows the analyze button again.
		advice, _ = jobAdvice(m.jobs, id, advisor.TemplateSubject(t.ID), analysisView(card.Slug))
	}

	var flashes []render.Flash
	if r.URL.Query().Get("cloned") != "" {
		if msg, err := m.catalog.Clone(t.ID); err == nil {
			flashes = append(flashes, render.Flash{Type: "success", Message: msg})
		}
	}

	m.renderer.Page(w, r, "template_detail", &render.PageData{
		Title:   t.Title,
		Section: "marketplace",
		Flashes: flashes,
		Data: map[string]any{
			"Card":   card,
			"Advice": advice,
		},
	})
}

// Clone acknowledges a clone request. Nothing is duplicated; HTMX requests
// get a flash fragment, plain form posts are redirected back with a notice.
func (m *Marketplace) Clone(w http.ResponseWriter, r *http.Request) {
	sl := chi.URLParam(r, "slug")
	t, ok := m.catalog.TemplateBySlug(sl)
	if !ok {
		notFound(m.renderer, w, r, "Template not found.")
		return
	}

	msg, err := m.catalog.Clone(t.ID)
	if err != nil {
		slog.Error("clone failed", "template", t.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("template clone requested", "template", t.ID)

	if isHTMX(r) {
		m.renderer.Fragment(w, http.StatusOK, "flash", render.Flash{Type: "success", Message: msg})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/templates/%s?cloned=1", sl), http.StatusSeeOther)
}

func (m *Marketplace) card(t models.Template) Card {
	return Card{Template: t, Slug: slug.Generate(t.Title), CategoryName: m.categoryName(t.CategoryID)}
}

// categoryName resolves a soft category reference; dangling IDs are shown
// as UnknownCategory.
func (m *Marketplace) categoryName(id int) string {
	if name, ok := m.catalog.CategoryName(id); ok {
		return name
	}
	return UnknownCategory
}
