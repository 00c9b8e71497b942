package store

import (
	"context"
	"strings"

	"github.com/roach88/storyvault/internal/filter"
	"github.com/roach88/storyvault/internal/record"
)

// CreateTag inserts a tag. Names are unique within a project; a duplicate
// is a ConstraintError. Blank color and category take the defaults.
func (s *Store) CreateTag(ctx context.Context, t record.Tag) (record.Tag, error) {
	if err := requireProject("tag", t.ProjectID); err != nil {
		return record.Tag{}, err
	}
	name := record.NormalizeName(t.Name)
	if name == "" {
		return record.Tag{}, constraintf("tag", "name", "is required")
	}
	color, err := tagColor(t.Color)
	if err != nil {
		return record.Tag{}, err
	}

	id, err := insert(ctx, s.db, "tag", "tags",
		[]string{"project_id", "name", "color", "category", "description", "created_at"},
		t.ProjectID, name, color, tagCategory(t.Category), t.Description, formatTime(s.clock.Now()))
	if err != nil {
		return record.Tag{}, err
	}

	stored, ok, err := s.GetTag(ctx, id)
	if err != nil {
		return record.Tag{}, err
	}
	if !ok {
		return record.Tag{}, &NotFoundError{Kind: "tag", ID: id}
	}
	return stored, nil
}

// ListTags returns tags ordered by category, then name. A nil projectID
// lists every project's tags.
func (s *Store) ListTags(ctx context.Context, projectID *int64) ([]record.Tag, error) {
	return queryAll(ctx, s.db, "tag", filter.Select{
		From:    "tags",
		Columns: tagColumns,
		Where:   projectFilter(projectID),
		OrderBy: []filter.Order{{Column: "category"}, {Column: "name"}},
	}, scanTag)
}

// GetTag returns the tag with the given id.
func (s *Store) GetTag(ctx context.Context, id int64) (record.Tag, bool, error) {
	return queryByID(ctx, s.db, "tag", "tags", tagColumns, id, scanTag)
}

// UpdateTag merges the patch into the stored tag. Renaming a tag does not
// rewrite the tag lists of entities or events that use the old name.
func (s *Store) UpdateTag(ctx context.Context, id int64, patch record.TagPatch) (bool, error) {
	var a assignments
	if patch.Name != nil {
		name := record.NormalizeName(*patch.Name)
		if name == "" {
			return false, constraintf("tag", "name", "cannot be blank")
		}
		a.set("name", name)
	}
	if patch.Color != nil {
		color, err := tagColor(*patch.Color)
		if err != nil {
			return false, err
		}
		a.set("color", color)
	}
	if patch.Category != nil {
		a.set("category", tagCategory(*patch.Category))
	}
	if patch.Description != nil {
		a.set("description", *patch.Description)
	}

	return updateByID(ctx, s.db, "tag", "tags", id, &a)
}

// DeleteTag removes a tag. References by name are left in place.
func (s *Store) DeleteTag(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.db, "tag", "tags", id)
}

func tagColor(c string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return record.DefaultTagColor, nil
	}
	if !record.ValidColor(c) {
		return "", constraintf("tag", "color", "%q is not a #rgb or #rrggbb color", c)
	}
	return strings.ToLower(c), nil
}

func tagCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return record.DefaultTagCategory
	}
	return c
}
