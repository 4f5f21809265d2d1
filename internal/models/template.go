// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "fmt"

// Price is the commercial tier of a template.
type Price string

const (
	PriceFree    Price = "Free"
	PricePremium Price = "Premium"
)

// Valid reports whether p is one of the known price tiers.
func (p Price) Valid() bool {
	return p == PriceFree || p == PricePremium
}

// Stats holds the popularity counters of a template.
type Stats struct {
	Stars  int `json:"stars" yaml:"stars"`
	Clones int `json:"clones" yaml:"clones"`
	Views  int `json:"views" yaml:"views"`
}

// Template is a test-suite template listed in the marketplace. Templates are
// read-only catalog data; CategoryID is a soft reference that may dangle
// after its category is deleted.
type Template struct {
	ID              int      `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	LongDescription *string  `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	Author          string   `json:"author" yaml:"author"`
	AuthorAvatar    string   `json:"author_avatar" yaml:"author_avatar"`
	CategoryID      int      `json:"category_id" yaml:"category_id"`
	Tags            []string `json:"tags" yaml:"tags"`
	Stats           Stats    `json:"stats" yaml:"stats"`
	Price           Price    `json:"price" yaml:"price"`
	UpdatedAt       string   `json:"updated_at" yaml:"updated_at"`
}

// HasTag reports whether the template carries the tag name (exact match).
func (t Template) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// StarsLabel formats the star count in thousands with one decimal, e.g.
// 1240 → "1.2k".
func (t Template) StarsLabel() string {
	return fmt.Sprintf("%.1fk", float64(t.Stats.Stars)/1000)
}
