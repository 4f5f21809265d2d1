// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"testifyhub/internal/catalog"
	"testifyhub/internal/editor"
	"testifyhub/internal/middleware"
	"testifyhub/internal/render"
	"testifyhub/internal/session"
)

// CategoriesPath is the category manager page.
const CategoriesPath = "/admin/categories"

// CategoryGoneMessage is shown when the loaded category was deleted before
// the draft could be saved.
const CategoryGoneMessage = "This category no longer exists."

// Notices shown after a redirect, keyed by the ?notice= value.
var categoryNotices = map[string]string{
	"created": "Category created.",
	"saved":   "Category saved.",
	"deleted": "Category deleted.",
}

// Categories groups the category manager handlers. Each request restores
// the visitor's editor from the session, applies one action and stores the
// editor back before redirecting to the page (POST/Redirect/GET).
type Categories struct {
	renderer *render.Renderer
	sessions *session.Store
	catalog  *catalog.Store
}

// NewCategories creates a new Categories handler group.
func NewCategories(renderer *render.Renderer, sessions *session.Store, store *catalog.Store) *Categories {
	return &Categories{renderer: renderer, sessions: sessions, catalog: store}
}

// Page renders the category list and the editor panel.
func (c *Categories) Page(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	c.render(w, r, ed, clampSearch(r.URL.Query().Get("q")), "", false)
}

// New enters the Creating state with a blank draft.
func (c *Categories) New(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	ed.StartCreate()
	c.persist(r, ed)
	c.redirect(w, r, "")
}

// Select loads an existing category into the editor. Unknown IDs leave
// the current draft untouched.
func (c *Categories) Select(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err == nil && ed.Select(id) {
		c.persist(r, ed)
	}
	c.redirect(w, r, "")
}

// Cancel discards the draft.
func (c *Categories) Cancel(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	ed.Cancel()
	c.persist(r, ed)
	c.redirect(w, r, "")
}

// AddSubcategory appends the submitted subcategory to the draft.
func (c *Categories) AddSubcategory(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	name, sub := r.FormValue("name"), r.FormValue("subcategory")
	if msg := validateCategoryInput(name, sub); msg != "" {
		c.render(w, r, ed, c.query(r), msg, false)
		return
	}

	ed.RenameDraft(name)
	ed.AddSubcategory(sub)
	c.persist(r, ed)
	c.redirect(w, r, "")
}

// RemoveSubcategory drops the subcategory at the index in the URL.
func (c *Categories) RemoveSubcategory(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	name := r.FormValue("name")
	if msg := validateCategoryInput(name, ""); msg != "" {
		c.render(w, r, ed, c.query(r), msg, false)
		return
	}

	ed.RenameDraft(name)
	if i, err := strconv.Atoi(chi.URLParam(r, "index")); err == nil {
		ed.RemoveSubcategory(i)
	}
	c.persist(r, ed)
	c.redirect(w, r, "")
}

// Save writes the draft to the catalog. Validation errors are rendered
// inline with status 200 so HTMX swaps them in.
func (c *Categories) Save(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	name := r.FormValue("name")
	if msg := validateCategoryInput(name, ""); msg != "" {
		c.render(w, r, ed, c.query(r), msg, false)
		return
	}

	ed.RenameDraft(name)
	creating := ed.Mode() == editor.ModeCreating

	saved, err := ed.Save()
	var verr *editor.ValidationError
	switch {
	case errors.As(err, &verr):
		c.persist(r, ed)
		c.render(w, r, ed, c.query(r), verr.Message, false)
		return
	case errors.Is(err, editor.ErrNoDraft):
		c.redirect(w, r, "")
		return
	case errors.Is(err, catalog.ErrCategoryNotFound):
		// Deleted from another session while loaded here.
		ed.Cancel()
		c.persist(r, ed)
		c.render(w, r, ed, c.query(r), CategoryGoneMessage, false)
		return
	case err != nil:
		slog.Error("category save failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.persist(r, ed)
	notice := "saved"
	if creating {
		notice = "created"
	}
	slog.Info("category "+notice, "id", saved.ID, "name", saved.Name)
	c.redirect(w, r, notice)
}

// Delete removes the loaded category once the user confirms. Without a
// confirm answer the confirmation dialog is rendered; any answer other
// than "yes" leaves the catalog untouched.
func (c *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	ed := c.restore(r)
	answer := r.FormValue("confirm")

	if answer == "" {
		if ed.Mode() != editor.ModeEditing {
			c.redirect(w, r, "")
			return
		}
		// Keep any unsaved rename visible behind the dialog.
		if name := r.FormValue("name"); name != "" && validateCategoryInput(name, "") == "" {
			ed.RenameDraft(name)
			c.persist(r, ed)
		}
		c.render(w, r, ed, c.query(r), "", true)
		return
	}

	id := ed.Draft().ID
	err := ed.Delete(editor.ConfirmFunc(func(string) bool { return answer == "yes" }))
	switch {
	case errors.Is(err, editor.ErrNotConfirmed), errors.Is(err, editor.ErrNoSelection):
		c.redirect(w, r, "")
		return
	case err != nil:
		slog.Error("category delete failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.persist(r, ed)
	slog.Info("category deleted", "id", id)
	c.redirect(w, r, "deleted")
}

// restore rebuilds the visitor's editor from the session snapshot.
func (c *Categories) restore(r *http.Request) *editor.Editor {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return editor.New(c.catalog)
	}
	return editor.Restore(c.catalog, sess.Editor)
}

// persist stores the editor snapshot in the session. Failures are logged;
// the visitor only loses the unsaved draft.
func (c *Categories) persist(r *http.Request, ed *editor.Editor) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return
	}
	sess.Editor = ed.Snapshot()
	if err := c.sessions.Save(r.Context(), sess); err != nil {
		slog.Error("editor state save failed", "error", err)
	}
}

func (c *Categories) query(r *http.Request) string {
	return clampSearch(r.FormValue("q"))
}

// redirect sends the browser back to the manager, keeping the list search.
func (c *Categories) redirect(w http.ResponseWriter, r *http.Request, notice string) {
	v := url.Values{}
	if q := c.query(r); q != "" {
		v.Set("q", q)
	}
	if notice != "" {
		v.Set("notice", notice)
	}
	target := CategoriesPath
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (c *Categories) render(w http.ResponseWriter, r *http.Request, ed *editor.Editor, query, errMsg string, confirm bool) {
	var flashes []render.Flash
	if msg, ok := categoryNotices[r.URL.Query().Get("notice")]; ok {
		flashes = append(flashes, render.Flash{Type: "success", Message: msg})
	}

	draft := ed.Draft()
	mode := ed.Mode()
	selected := 0
	if mode == editor.ModeEditing {
		selected = draft.ID
	}

	c.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: flashes,
		Data: map[string]any{
			"Browsing":   mode == editor.ModeBrowsing,
			"Editing":    mode == editor.ModeEditing,
			"Creating":   mode == editor.ModeCreating,
			"SelectedID": selected,
			"Query":      query,
			"Categories": ed.Filter(query),
			"Draft":      draft,
			"Error":      errMsg,
			"Confirm":    confirm,
			"Prompt":     editor.DeletePrompt,
		},
	})
}
