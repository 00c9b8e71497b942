package store

import (
	"context"

	"github.com/roach88/storyvault/internal/record"
)

// CreateEntity inserts an entity and returns it as stored. Tags are
// normalized; nil collections are stored empty.
func (s *Store) CreateEntity(ctx context.Context, e record.Entity) (record.Entity, error) {
	if err := requireProject("entity", e.ProjectID); err != nil {
		return record.Entity{}, err
	}
	name := record.NormalizeName(e.Name)
	if name == "" {
		return record.Entity{}, constraintf("entity", "name", "is required")
	}
	if !e.Type.Valid() {
		return record.Entity{}, constraintf("entity", "type", "%q is not one of character, item, faction, event", e.Type)
	}
	tags, fields, err := encodeCollections("entity", e.Tags, e.CustomFields)
	if err != nil {
		return record.Entity{}, err
	}

	now := formatTime(s.clock.Now())
	id, err := insert(ctx, s.db, "entity", "entities",
		[]string{"project_id", "name", "type", "description", "tags", "custom_fields", "created_at", "updated_at"},
		e.ProjectID, name, string(e.Type), e.Description, tags, fields, now, now)
	if err != nil {
		return record.Entity{}, err
	}

	stored, ok, err := s.GetEntity(ctx, id)
	if err != nil {
		return record.Entity{}, err
	}
	if !ok {
		return record.Entity{}, &NotFoundError{Kind: "entity", ID: id}
	}
	return stored, nil
}

// ListEntities returns entities newest first. A nil projectID lists every
// project's entities.
func (s *Store) ListEntities(ctx context.Context, projectID *int64) ([]record.Entity, error) {
	return s.SearchEntities(ctx, EntityQuery{ProjectID: projectID})
}

// GetEntity returns the entity with the given id.
func (s *Store) GetEntity(ctx context.Context, id int64) (record.Entity, bool, error) {
	return queryByID(ctx, s.db, "entity", "entities", entityColumns, id, scanEntity)
}

// UpdateEntity merges the patch into the stored entity and refreshes
// updated_at. A non-nil empty Tags or CustomFields clears the collection.
func (s *Store) UpdateEntity(ctx context.Context, id int64, patch record.EntityPatch) (bool, error) {
	var a assignments
	if patch.Name != nil {
		name := record.NormalizeName(*patch.Name)
		if name == "" {
			return false, constraintf("entity", "name", "cannot be blank")
		}
		a.set("name", name)
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return false, constraintf("entity", "type", "%q is not one of character, item, faction, event", *patch.Type)
		}
		a.set("type", string(*patch.Type))
	}
	if patch.Description != nil {
		a.set("description", *patch.Description)
	}
	if err := setCollections(&a, "entity", patch.Tags, patch.CustomFields); err != nil {
		return false, err
	}
	a.set("updated_at", formatTime(s.clock.Now()))

	return updateByID(ctx, s.db, "entity", "entities", id, &a)
}

// DeleteEntity removes an entity. Events that list its id in
// RelatedEntities are left as they are.
func (s *Store) DeleteEntity(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.db, "entity", "entities", id)
}

// setCollections adds tags/custom_fields assignments for non-nil patch values.
func setCollections(a *assignments, kind string, tags []string, fields record.Fields) error {
	if tags != nil {
		text, err := record.MarshalNames(record.NormalizeNames(tags))
		if err != nil {
			return err
		}
		a.set("tags", text)
	}
	if fields != nil {
		if err := fields.Validate(); err != nil {
			return &ConstraintError{Kind: kind, Field: "customFields", Message: err.Error(), Err: err}
		}
		text, err := record.MarshalFields(fields)
		if err != nil {
			return err
		}
		a.set("custom_fields", text)
	}
	return nil
}
