// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor implements the category editor used by administrators:
// a small state machine around a working copy (the draft) of one category.
//
//	Browsing --Select(id)--> Editing --Save--> Editing (refreshed)
//	Browsing --StartCreate--> Creating --Save--> Creating (blank draft)
//	Editing --Delete(confirmed)--> Browsing
//	Editing|Creating --Cancel--> Browsing
//
// The draft is only written to the catalog by Save and Delete.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"testifyhub/internal/catalog"
	"testifyhub/internal/models"
)

// Mode is the editor state.
type Mode string

const (
	ModeBrowsing Mode = "browsing"
	ModeEditing  Mode = "editing"
	ModeCreating Mode = "creating"
)

// DeletePrompt is the question put to the user before a category is deleted.
const DeletePrompt = "Are you sure? This might affect templates using this category."

var (
	// ErrNotConfirmed is returned by Delete when the user declined.
	ErrNotConfirmed = errors.New("editor: delete not confirmed")

	// ErrNoSelection is returned by Delete when no existing category is loaded.
	ErrNoSelection = errors.New("editor: no category selected")

	// ErrNoDraft is returned by Save while browsing.
	ErrNoDraft = errors.New("editor: no draft to save")
)

// ValidationError reports a draft that cannot be saved. Message is safe to
// show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Confirmer asks the user a yes/no question through whatever interaction
// layer drives the editor.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Categories is the part of the catalog store the editor writes through.
type Categories interface {
	Categories() []models.Category
	Category(id int) (models.Category, bool)
	CreateCategory(c models.Category) (models.Category, error)
	UpdateCategory(c models.Category) error
	DeleteCategory(id int) error
}

// Snapshot is the serialisable state of an Editor, kept in the visitor's
// session between requests.
type Snapshot struct {
	Mode  Mode            `json:"mode"`
	Draft models.Category `json:"draft"`
}

// Editor edits one category at a time. It is not safe for concurrent use;
// each session restores its own Editor per request.
type Editor struct {
	store Categories
	mode  Mode
	draft models.Category
}

// New returns an editor in the Browsing state.
func New(store Categories) *Editor {
	return &Editor{store: store, mode: ModeBrowsing}
}

// Restore rebuilds an editor from a snapshot. An unknown mode restores to
// Browsing.
func Restore(store Categories, snap Snapshot) *Editor {
	e := New(store)
	switch snap.Mode {
	case ModeEditing, ModeCreating:
		e.mode = snap.Mode
		e.draft = snap.Draft.Clone()
		if e.draft.Subcategories == nil {
			e.draft.Subcategories = []string{}
		}
	}
	return e
}

// Snapshot captures the editor state.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{Mode: e.mode, Draft: e.draft.Clone()}
}

// Mode returns the current state.
func (e *Editor) Mode() Mode { return e.mode }

// Draft returns a copy of the working category. It is the zero Category
// while browsing.
func (e *Editor) Draft() models.Category { return e.draft.Clone() }

// Selected reports whether the category with the given ID is loaded.
func (e *Editor) Selected(id int) bool {
	return e.mode == ModeEditing && e.draft.ID == id
}

// Select loads a copy of the category into the draft and switches to
// Editing. An unknown ID leaves the editor untouched and returns false.
func (e *Editor) Select(id int) bool {
	c, ok := e.store.Category(id)
	if !ok {
		return false
	}
	e.mode = ModeEditing
	e.draft = c
	if e.draft.Subcategories == nil {
		e.draft.Subcategories = []string{}
	}
	return true
}

// StartCreate switches to Creating with a blank draft.
func (e *Editor) StartCreate() {
	e.mode = ModeCreating
	e.draft = models.Category{Subcategories: []string{}}
}

// Cancel discards the draft and returns to Browsing.
func (e *Editor) Cancel() {
	e.mode = ModeBrowsing
	e.draft = models.Category{}
}

// RenameDraft sets the draft name verbatim. Whitespace is trimmed only on
// Save. It does nothing while browsing.
func (e *Editor) RenameDraft(name string) {
	if e.mode == ModeBrowsing {
		return
	}
	e.draft.Name = name
}

// AddSubcategory appends the trimmed label to the draft. Blank labels and
// labels already present (exact match) are ignored; the result reports
// whether the draft changed.
func (e *Editor) AddSubcategory(label string) bool {
	if e.mode == ModeBrowsing {
		return false
	}
	label = strings.TrimSpace(label)
	if label == "" || e.draft.HasSubcategory(label) {
		return false
	}
	e.draft.Subcategories = append(e.draft.Subcategories, label)
	return true
}

// RemoveSubcategory drops the subcategory at index. Out-of-range indexes
// are ignored.
func (e *Editor) RemoveSubcategory(index int) bool {
	if e.mode == ModeBrowsing || index < 0 || index >= len(e.draft.Subcategories) {
		return false
	}
	subs := make([]string, 0, len(e.draft.Subcategories)-1)
	subs = append(subs, e.draft.Subcategories[:index]...)
	subs = append(subs, e.draft.Subcategories[index+1:]...)
	e.draft.Subcategories = subs
	return true
}

// Save writes the draft to the catalog. A blank name yields a
// *ValidationError and changes nothing. Saving an existing category
// overwrites it by ID and reloads the draft; saving a new one appends it
// with the next free ID and resets the editor to a blank Creating draft.
// The stored category is returned.
func (e *Editor) Save() (models.Category, error) {
	if e.mode == ModeBrowsing {
		return models.Category{}, ErrNoDraft
	}

	name := strings.TrimSpace(e.draft.Name)
	if name == "" {
		return models.Category{}, &ValidationError{Message: "Category name is required"}
	}

	c := e.draft.Clone()
	c.Name = name

	if e.mode == ModeEditing {
		if err := e.store.UpdateCategory(c); err != nil {
			return models.Category{}, fmt.Errorf("save category %d: %w", c.ID, err)
		}
		if fresh, ok := e.store.Category(c.ID); ok {
			c = fresh
		}
		e.draft = c.Clone()
		return c, nil
	}

	created, err := e.store.CreateCategory(c)
	if err != nil {
		return models.Category{}, fmt.Errorf("save new category: %w", err)
	}
	e.StartCreate()
	return created, nil
}

// Delete removes the loaded category after the user confirms DeletePrompt.
// Templates that reference the category are left alone. On success the
// editor returns to Browsing.
func (e *Editor) Delete(c Confirmer) error {
	if e.mode != ModeEditing {
		return ErrNoSelection
	}
	if c == nil || !c.Confirm(DeletePrompt) {
		return ErrNotConfirmed
	}

	// A category already removed elsewhere counts as deleted.
	if err := e.store.DeleteCategory(e.draft.ID); err != nil && !errors.Is(err, catalog.ErrCategoryNotFound) {
		return fmt.Errorf("delete category %d: %w", e.draft.ID, err)
	}
	e.Cancel()
	return nil
}

// Filter returns the categories whose name contains query,
// case-insensitively. An empty query returns every category.
func (e *Editor) Filter(query string) []models.Category {
	return FilterCategories(e.store.Categories(), query)
}

// FilterCategories is the list search used by the editor sidebar.
func FilterCategories(cats []models.Category, query string) []models.Category {
	q := strings.ToLower(query)
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
