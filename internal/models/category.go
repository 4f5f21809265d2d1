// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the marketplace catalog records.
package models

import "slices"

// DefaultGlyph is the icon rendered for categories that carry no glyph of
// their own.
const DefaultGlyph Glyph = "grid"

// Glyph names a display icon (a Lucide icon identifier such as
// "shopping-cart"). The zero value means "no icon"; Category.Glyph falls
// back to DefaultGlyph in that case so views never deal with a missing icon.
type Glyph string

// Category is a node of the marketplace taxonomy. Templates point at a
// category through Template.CategoryID without any enforced existence.
type Category struct {
	ID            int      `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Icon          Glyph    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Subcategories []string `json:"subcategories" yaml:"subcategories"`
}

// Glyph returns the category's icon, or DefaultGlyph when it has none.
func (c Category) Glyph() Glyph {
	if c.Icon == "" {
		return DefaultGlyph
	}
	return c.Icon
}

// Clone returns a deep copy so callers can mutate subcategories without
// touching the original record.
func (c Category) Clone() Category {
	out := c
	out.Subcategories = slices.Clone(c.Subcategories)
	return out
}

// HasSubcategory reports whether label is already present (exact match).
func (c Category) HasSubcategory(label string) bool {
	for _, s := range c.Subcategories {
		if s == label {
			return true
		}
	}
	return false
}
