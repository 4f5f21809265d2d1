// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Tag is an entry of the static popular-tags list. Templates embed tag names
// rather than tag ids, so renaming a Tag here does not reach the templates
// that already carry the old name.
type Tag struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
