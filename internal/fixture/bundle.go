// Package fixture loads YAML seed bundles and applies them to a store
// through the facade, the same path a front end uses.
//
// A bundle describes one project with its tags, entities and events.
// Events refer to related entities by the entity's key, or by name when
// the entity has no key.
package fixture

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storyvault/internal/record"
)

// Bundle is one project's worth of seed data.
type Bundle struct {
	Project  ProjectSpec  `yaml:"project"`
	Tags     []TagSpec    `yaml:"tags,omitempty"`
	Entities []EntitySpec `yaml:"entities,omitempty"`
	Events   []EventSpec  `yaml:"events,omitempty"`
}

// ProjectSpec seeds the project record.
type ProjectSpec struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description,omitempty"`
	WorldSetting    string `yaml:"world_setting,omitempty"`
	ProtagonistInfo string `yaml:"protagonist_info,omitempty"`
}

// TagSpec seeds one tag. Blank color and category take the store defaults.
type TagSpec struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// EntitySpec seeds one entity.
type EntitySpec struct {
	// Key is a bundle-local handle for event references.
	Key         string         `yaml:"key,omitempty"`
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Fields      map[string]any `yaml:"fields,omitempty"`
}

// ref is how events point at this entity.
func (e EntitySpec) ref() string {
	if e.Key != "" {
		return e.Key
	}
	return record.NormalizeName(e.Name)
}

// EventSpec seeds one timeline event.
type EventSpec struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	WorldTime   string         `yaml:"world_time,omitempty"`
	Chapter     *int64         `yaml:"chapter,omitempty"`
	Related     []string       `yaml:"related,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Fields      map[string]any `yaml:"fields,omitempty"`
}

// LoadFile reads and validates a bundle from a YAML file.
func LoadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle file: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a bundle. Unknown keys are rejected.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}
	return &b, nil
}

// Validate checks what the store cannot: entity keys are unique and every
// related reference resolves inside the bundle. Names, types and field
// values are left to the store.
func (b *Bundle) Validate() error {
	if record.NormalizeName(b.Project.Name) == "" {
		return fmt.Errorf("project.name is required")
	}

	refs := make(map[string]bool, len(b.Entities))
	for i, e := range b.Entities {
		ref := e.ref()
		if ref == "" {
			return fmt.Errorf("entities[%d]: name is required", i)
		}
		if refs[ref] {
			return fmt.Errorf("entities[%d]: duplicate reference %q", i, ref)
		}
		refs[ref] = true
	}

	for i, ev := range b.Events {
		for _, r := range ev.Related {
			if !refs[r] && !refs[record.NormalizeName(r)] {
				return fmt.Errorf("events[%d]: unknown related entity %q", i, r)
			}
		}
	}
	return nil
}
