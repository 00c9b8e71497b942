package record

import "regexp"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#4f46e5"

// DefaultTagCategory is applied when a tag is created without a category.
const DefaultTagCategory = "custom"

// Tag categories offered by the tag form. Category is free text; these are
// suggestions, not a closed set.
const (
	CategoryCharacter = "character"
	CategoryItem      = "item"
	CategoryFaction   = "faction"
	CategoryCustom    = "custom"
)

// PresetCategories lists the suggested tag categories in display order.
var PresetCategories = []string{CategoryCharacter, CategoryItem, CategoryFaction, CategoryCustom}

// PresetColors is the tag form palette.
var PresetColors = []string{
	"#ef4444", "#f97316", "#f59e0b", "#eab308",
	"#84cc16", "#22c55e", "#10b981", "#14b8a6",
	"#06b6d4", "#0ea5e9", "#3b82f6", "#6366f1",
	"#8b5cf6", "#a855f7", "#d946ef", "#ec4899",
	"#f43f5e", "#6b7280", "#374151", "#1f2937",
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a #rgb or #rrggbb hex string.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// KnownFields documents the custom-field keys the forms suggest per entity
// type. They are hints only; any key is accepted.
var KnownFields = map[EntityType][]string{
	EntityCharacter: {"birthDate", "age", "origin", "affiliation"},
	EntityItem:      {"owner", "origin", "creationDate"},
	EntityFaction:   {"leader", "headquarters", "foundedDate"},
	EntityEvent:     {"date", "location"},
}
