// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"testifyhub/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

// seedFile mirrors the layout of seed.yaml.
type seedFile struct {
	Categories []models.Category `yaml:"categories"`
	Tags       []models.Tag      `yaml:"tags"`
	Templates  []models.Template `yaml:"templates"`
}

// Load builds a Store from the catalog compiled into the binary.
func Load() (*Store, error) {
	s, err := Parse(seedYAML)
	if err != nil {
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}

	slog.Info("catalog loaded",
		"categories", len(s.categories),
		"templates", len(s.templates),
		"tags", len(s.tags),
	)
	return s, nil
}

// Parse decodes a YAML catalog and checks the invariants the rest of the
// application relies on: positive unique category IDs, non-empty category
// names, unique template IDs and known price tiers. Template category IDs
// are not checked against the category list.
func Parse(data []byte) (*Store, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seenCat := make(map[int]bool, len(f.Categories))
	for _, c := range f.Categories {
		if c.ID <= 0 {
			return nil, fmt.Errorf("category %q: id must be positive, got %d", c.Name, c.ID)
		}
		if seenCat[c.ID] {
			return nil, fmt.Errorf("duplicate category id %d", c.ID)
		}
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d: name is required", c.ID)
		}
		seenCat[c.ID] = true
	}

	seenTmpl := make(map[int]bool, len(f.Templates))
	for _, t := range f.Templates {
		if seenTmpl[t.ID] {
			return nil, fmt.Errorf("duplicate template id %d", t.ID)
		}
		if !t.Price.Valid() {
			return nil, fmt.Errorf("template %d: unknown price %q", t.ID, t.Price)
		}
		seenTmpl[t.ID] = true
	}

	return New(f.Categories, f.Templates, f.Tags), nil
}
