// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package browse computes the list of templates visible in the marketplace
// for a given filter selection. Everything here is a pure function of its
// inputs and is recomputed on every request.
package browse

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"testifyhub/internal/models"
)

// SortKey selects the ordering of the visible templates.
type SortKey string

const (
	SortPopular SortKey = "popular" // stars, descending
	SortCloned  SortKey = "cloned"  // clones, descending
	SortNewest  SortKey = "newest"  // catalog order
)

// SortKeys lists the sort options in display order.
var SortKeys = []SortKey{SortPopular, SortCloned, SortNewest}

// Label returns the button caption for the sort key.
func (k SortKey) Label() string {
	switch k {
	case SortCloned:
		return "Most Cloned"
	case SortNewest:
		return "Newest"
	default:
		return "Popular"
	}
}

// ParseSortKey maps a query value to a SortKey. Unknown values fall back
// to SortPopular.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortCloned, SortNewest:
		return SortKey(s)
	default:
		return SortPopular
	}
}

// Selection is the transient filter state of a marketplace visitor.
type Selection struct {
	Search     string
	CategoryID int // 0 selects every category
	Tags       []string
	Sort       SortKey
}

// Visible returns the templates that satisfy every predicate of sel, in the
// order sel.Sort asks for. Equal sort keys keep their catalog order. The
// input slice is not modified.
func Visible(templates []models.Template, sel Selection) []models.Template {
	needle := strings.ToLower(sel.Search)

	out := make([]models.Template, 0, len(templates))
	for _, t := range templates {
		if matches(t, needle, sel) {
			out = append(out, t)
		}
	}

	switch sel.Sort {
	case SortCloned:
		slices.SortStableFunc(out, func(a, b models.Template) int {
			return cmp.Compare(b.Stats.Clones, a.Stats.Clones)
		})
	case SortNewest:
		// Catalog order stands in for recency; there is no timestamp to compare.
	default:
		slices.SortStableFunc(out, func(a, b models.Template) int {
			return cmp.Compare(b.Stats.Stars, a.Stats.Stars)
		})
	}
	return out
}

// matches applies the search, category and tag predicates. needle must
// already be lower-cased.
func matches(t models.Template, needle string, sel Selection) bool {
	if needle != "" &&
		!strings.Contains(strings.ToLower(t.Title), needle) &&
		!strings.Contains(strings.ToLower(t.Description), needle) {
		return false
	}
	if sel.CategoryID != 0 && t.CategoryID != sel.CategoryID {
		return false
	}
	for _, tag := range sel.Tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

// CountByCategory counts templates per category ID across the whole
// catalog, independent of any selection.
func CountByCategory(templates []models.Template) map[int]int {
	counts := make(map[int]int)
	for _, t := range templates {
		counts[t.CategoryID]++
	}
	return counts
}

// --- Selection helpers ---

// Query parameter names used by the marketplace page.
const (
	ParamSearch   = "q"
	ParamCategory = "category"
	ParamTag      = "tag"
	ParamSort     = "sort"
)

// ParseSelection reads a Selection from URL query values. Malformed or
// non-positive category IDs select every category; duplicate and empty
// tags are dropped.
func ParseSelection(v url.Values) Selection {
	sel := Selection{
		Search: v.Get(ParamSearch),
		Sort:   ParseSortKey(v.Get(ParamSort)),
	}
	if id, err := strconv.Atoi(v.Get(ParamCategory)); err == nil && id > 0 {
		sel.CategoryID = id
	}
	for _, tag := range v[ParamTag] {
		if tag != "" && !slices.Contains(sel.Tags, tag) {
			sel.Tags = append(sel.Tags, tag)
		}
	}
	return sel
}

// Query encodes the selection back into URL query values. Default values
// are omitted so the canonical marketplace URL stays bare.
func (s Selection) Query() url.Values {
	v := url.Values{}
	if s.Search != "" {
		v.Set(ParamSearch, s.Search)
	}
	if s.CategoryID != 0 {
		v.Set(ParamCategory, strconv.Itoa(s.CategoryID))
	}
	for _, tag := range s.Tags {
		v.Add(ParamTag, tag)
	}
	if s.Sort != "" && s.Sort != SortPopular {
		v.Set(ParamSort, string(s.Sort))
	}
	return v
}

// URL renders the selection as a marketplace link.
func (s Selection) URL() string {
	if q := s.Query().Encode(); q != "" {
		return "/?" + q
	}
	return "/"
}

// HasTag reports whether tag is currently selected.
func (s Selection) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// ToggleTag returns a copy of s with tag added, or removed if it was
// already selected.
func (s Selection) ToggleTag(tag string) Selection {
	out := s
	if i := slices.Index(s.Tags, tag); i >= 0 {
		out.Tags = slices.Delete(slices.Clone(s.Tags), i, i+1)
		return out
	}
	out.Tags = append(slices.Clone(s.Tags), tag)
	return out
}

// ClearTags returns a copy of s with no tags selected.
func (s Selection) ClearTags() Selection {
	s.Tags = nil
	return s
}

// WithCategory returns a copy of s filtered to the category (0 for all).
func (s Selection) WithCategory(id int) Selection {
	s.CategoryID = id
	return s
}

// WithSort returns a copy of s ordered by key.
func (s Selection) WithSort(key SortKey) Selection {
	s.Sort = key
	return s
}

// ClearFilters resets search, category and tags while keeping the sort.
func (s Selection) ClearFilters() Selection {
	return Selection{Sort: s.Sort}
}

// IsFiltered reports whether any filter narrows the catalog.
func (s Selection) IsFiltered() bool {
	return s.Search != "" || s.CategoryID != 0 || len(s.Tags) > 0
}
