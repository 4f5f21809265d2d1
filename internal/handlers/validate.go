package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for advisory and editor inputs.
const (
	maxRequirementLen  = 2_000
	maxCategoryNameLen = 100
	maxSubcategoryLen  = 100
	maxSearchLen       = 200
)

// validateRequirement checks the generator input and returns the first
// error found.
func validateRequirement(requirement string) string {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return "Describe a requirement first."
	}
	if utf8.RuneCountInString(requirement) > maxRequirementLen {
		return "Requirement is too long (max 2,000 characters)."
	}
	return ""
}

// validateCategoryInput checks the editor's free-text fields. An empty
// name is left to the editor, which reports it on save.
func validateCategoryInput(name, subcategory string) string {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > maxCategoryNameLen {
		return "Category name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(strings.TrimSpace(subcategory)) > maxSubcategoryLen {
		return "Subcategory is too long (max 100 characters)."
	}
	return ""
}

// clampSearch truncates a search query to maxSearchLen runes.
func clampSearch(q string) string {
	if utf8.RuneCountInString(q) <= maxSearchLen {
		return q
	}
	return string([]rune(q)[:maxSearchLen])
}
