package record

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// EntityType is the closed set of story-element kinds.
type EntityType string

const (
	EntityCharacter EntityType = "character"
	EntityItem      EntityType = "item"
	EntityFaction   EntityType = "faction"
	// EntityEvent is an event-like story element. It is distinct from the
	// Event record kind, which carries timeline coordinates.
	EntityEvent EntityType = "event"
)

// EntityTypes lists every valid entity type in display order.
var EntityTypes = []EntityType{EntityCharacter, EntityItem, EntityFaction, EntityEvent}

// Valid reports whether t is one of the closed set.
func (t EntityType) Valid() bool {
	switch t {
	case EntityCharacter, EntityItem, EntityFaction, EntityEvent:
		return true
	}
	return false
}

// Axis selects how events are positioned on a timeline.
type Axis string

const (
	// AxisWorld orders events by their free-text world time.
	AxisWorld Axis = "world"
	// AxisChapter orders events by chapter number.
	AxisChapter Axis = "chapter"
)

// Valid reports whether a is a known axis.
func (a Axis) Valid() bool {
	return a == AxisWorld || a == AxisChapter
}

// Project is the tenancy unit. Every other record belongs to exactly one.
type Project struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	WorldSetting    string    `json:"worldSetting"`
	ProtagonistInfo string    `json:"protagonistInfo"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Entity is a character, item, faction or event-typed story element.
type Entity struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"projectId"`
	Name         string     `json:"name"`
	Type         EntityType `json:"type"`
	Description  string     `json:"description"`
	Tags         []string   `json:"tags"`
	CustomFields Fields     `json:"customFields"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Tag is a named, colored, categorized label. Entities and Events refer
// to tags by name.
type Tag struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"projectId"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Event is a timeline occurrence positioned by world time and/or chapter.
// WorldTime is free text and orders lexically.
type Event struct {
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"projectId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	WorldTime       string    `json:"worldTime"`
	ChapterNumber   *int64    `json:"chapterNumber"`
	RelatedEntities []int64   `json:"relatedEntities"`
	Tags            []string  `json:"tags"`
	CustomFields    Fields    `json:"customFields"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Patches carry partial updates. A nil field leaves the stored column
// untouched; a non-nil empty slice or bag clears the collection.

// ProjectPatch is a partial Project update.
type ProjectPatch struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	WorldSetting    *string `json:"worldSetting,omitempty"`
	ProtagonistInfo *string `json:"protagonistInfo,omitempty"`
}

// EntityPatch is a partial Entity update.
type EntityPatch struct {
	Name         *string     `json:"name,omitempty"`
	Type         *EntityType `json:"type,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	CustomFields Fields      `json:"customFields,omitempty"`
}

// TagPatch is a partial Tag update.
type TagPatch struct {
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
}

// EventPatch is a partial Event update.
type EventPatch struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	WorldTime       *string  `json:"worldTime,omitempty"`
	ChapterNumber   *int64   `json:"chapterNumber,omitempty"`
	RelatedEntities []int64  `json:"relatedEntities,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	CustomFields    Fields   `json:"customFields,omitempty"`
}

// NormalizeName trims surrounding whitespace and applies NFC so that
// visually identical names compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeNames normalizes every name, drops blanks and duplicates, and
// keeps first-seen order. A nil input stays nil.
func NormalizeNames(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
