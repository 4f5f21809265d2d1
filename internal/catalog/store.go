// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the marketplace data in memory: a read-only list of
// templates and tags, and a mutable list of categories. Every category
// mutation is an atomic replace of the in-memory list.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"testifyhub/internal/models"
	"testifyhub/internal/slug"
)

var (
	// ErrCategoryNotFound is returned when no category has the requested ID.
	ErrCategoryNotFound = errors.New("catalog: category not found")

	// ErrTemplateNotFound is returned when no template has the requested ID.
	ErrTemplateNotFound = errors.New("catalog: template not found")

	// ErrInvalidCategory is returned when a category fails basic checks
	// (blank name) before it reaches the list.
	ErrInvalidCategory = errors.New("catalog: invalid category")
)

// Store owns the catalog. Templates and tags never change after
// construction; categories change only through CreateCategory,
// UpdateCategory and DeleteCategory. Deleting a category never touches the
// templates that reference it. All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	categories []models.Category

	templates []models.Template
	tags      []models.Tag
}

// New returns a Store seeded with the given records. The slices are copied.
func New(categories []models.Category, templates []models.Template, tags []models.Tag) *Store {
	s := &Store{
		categories: make([]models.Category, 0, len(categories)),
		templates:  make([]models.Template, 0, len(templates)),
		tags:       append([]models.Tag(nil), tags...),
	}
	for _, c := range categories {
		s.categories = append(s.categories, c.Clone())
	}
	for _, t := range templates {
		s.templates = append(s.templates, cloneTemplate(t))
	}
	return s
}

// --- Categories ---

// Categories returns a copy of the category list in insertion order.
func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = c.Clone()
	}
	return out
}

// Category returns a copy of the category with the given ID.
func (s *Store) Category(id int) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.categories[i].Clone(), true
	}
	return models.Category{}, false
}

// CategoryName looks up a category's display name. The second result is
// false for dangling references.
func (s *Store) CategoryName(id int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.categories[i].Name, true
	}
	return "", false
}

// CreateCategory appends c with a freshly allocated ID (one greater than the
// highest existing ID, or 1 for an empty list) and returns the stored copy.
// Any ID already set on c is ignored.
func (s *Store) CreateCategory(c models.Category) (models.Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return models.Category{}, fmt.Errorf("create category: %w", ErrInvalidCategory)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c = c.Clone()
	c.ID = s.nextID()
	if c.Subcategories == nil {
		c.Subcategories = []string{}
	}

	next := make([]models.Category, len(s.categories), len(s.categories)+1)
	copy(next, s.categories)
	s.categories = append(next, c)

	return c.Clone(), nil
}

// UpdateCategory overwrites the whole record whose ID matches c.ID.
func (s *Store) UpdateCategory(c models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("update category %d: %w", c.ID, ErrInvalidCategory)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(c.ID)
	if i < 0 {
		return fmt.Errorf("update category %d: %w", c.ID, ErrCategoryNotFound)
	}

	next := make([]models.Category, len(s.categories))
	copy(next, s.categories)
	next[i] = c.Clone()
	s.categories = next
	return nil
}

// DeleteCategory removes the category with the given ID. Templates whose
// CategoryID equals id are left as they are.
func (s *Store) DeleteCategory(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete category %d: %w", id, ErrCategoryNotFound)
	}

	next := make([]models.Category, 0, len(s.categories)-1)
	next = append(next, s.categories[:i]...)
	next = append(next, s.categories[i+1:]...)
	s.categories = next
	return nil
}

// indexOf returns the position of the category with the given ID, or -1.
// Callers must hold s.mu.
func (s *Store) indexOf(id int) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// nextID computes max(existing IDs ∪ {0}) + 1. Callers must hold s.mu.
func (s *Store) nextID() int {
	maxID := 0
	for _, c := range s.categories {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	return maxID + 1
}

// --- Templates & tags ---

// Templates returns a copy of the template list in catalog order.
func (s *Store) Templates() []models.Template {
	out := make([]models.Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = cloneTemplate(t)
	}
	return out
}

// Template returns the template with the given ID.
func (s *Store) Template(id int) (models.Template, bool) {
	for _, t := range s.templates {
		if t.ID == id {
			return cloneTemplate(t), true
		}
	}
	return models.Template{}, false
}

// TemplateBySlug finds a template by the slug of its title.
func (s *Store) TemplateBySlug(sl string) (models.Template, bool) {
	for _, t := range s.templates {
		if slug.Generate(t.Title) == sl {
			return cloneTemplate(t), true
		}
	}
	return models.Template{}, false
}

// Tags returns the static popular-tags list.
func (s *Store) Tags() []models.Tag {
	return append([]models.Tag(nil), s.tags...)
}

// Clone acknowledges a clone request for the template. Nothing is copied
// or persisted; the returned message is shown to the user as-is.
func (s *Store) Clone(id int) (string, error) {
	if _, ok := s.Template(id); !ok {
		return "", fmt.Errorf("clone template %d: %w", id, ErrTemplateNotFound)
	}
	return fmt.Sprintf("Cloning template #%d... This will be added to your library.", id), nil
}

// cloneTemplate deep-copies the slice and pointer fields of t.
func cloneTemplate(t models.Template) models.Template {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.LongDescription != nil {
		ld := *t.LongDescription
		out.LongDescription = &ld
	}
	return out
}
