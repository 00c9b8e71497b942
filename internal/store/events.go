package store

import (
	"context"

	"github.com/roach88/storyvault/internal/record"
)

// CreateEvent inserts a timeline event and returns it as stored.
// RelatedEntities is stored in the given order and not validated.
func (s *Store) CreateEvent(ctx context.Context, ev record.Event) (record.Event, error) {
	if err := requireProject("event", ev.ProjectID); err != nil {
		return record.Event{}, err
	}
	name := record.NormalizeName(ev.Name)
	if name == "" {
		return record.Event{}, constraintf("event", "name", "is required")
	}
	tags, fields, err := encodeCollections("event", ev.Tags, ev.CustomFields)
	if err != nil {
		return record.Event{}, err
	}

	var chapter any
	if ev.ChapterNumber != nil {
		chapter = *ev.ChapterNumber
	}

	now := formatTime(s.clock.Now())
	id, err := insert(ctx, s.db, "event", "events",
		[]string{"project_id", "name", "description", "world_time", "chapter_number",
			"related_entities", "tags", "custom_fields", "created_at", "updated_at"},
		ev.ProjectID, name, ev.Description, ev.WorldTime, chapter,
		record.MarshalIDs(ev.RelatedEntities), tags, fields, now, now)
	if err != nil {
		return record.Event{}, err
	}

	stored, ok, err := s.GetEvent(ctx, id)
	if err != nil {
		return record.Event{}, err
	}
	if !ok {
		return record.Event{}, &NotFoundError{Kind: "event", ID: id}
	}
	return stored, nil
}

// ListEvents returns events by chapter number, then world time. Events
// without a chapter sort first. A nil projectID lists every project's events.
func (s *Store) ListEvents(ctx context.Context, projectID *int64) ([]record.Event, error) {
	return s.SearchEvents(ctx, EventQuery{ProjectID: projectID})
}

// GetEvent returns the event with the given id.
func (s *Store) GetEvent(ctx context.Context, id int64) (record.Event, bool, error) {
	return queryByID(ctx, s.db, "event", "events", eventColumns, id, scanEvent)
}

// UpdateEvent merges the patch into the stored event and refreshes updated_at.
func (s *Store) UpdateEvent(ctx context.Context, id int64, patch record.EventPatch) (bool, error) {
	var a assignments
	if patch.Name != nil {
		name := record.NormalizeName(*patch.Name)
		if name == "" {
			return false, constraintf("event", "name", "cannot be blank")
		}
		a.set("name", name)
	}
	if patch.Description != nil {
		a.set("description", *patch.Description)
	}
	if patch.WorldTime != nil {
		a.set("world_time", *patch.WorldTime)
	}
	if patch.ChapterNumber != nil {
		a.set("chapter_number", *patch.ChapterNumber)
	}
	if patch.RelatedEntities != nil {
		a.set("related_entities", record.MarshalIDs(patch.RelatedEntities))
	}
	if err := setCollections(&a, "event", patch.Tags, patch.CustomFields); err != nil {
		return false, err
	}
	a.set("updated_at", formatTime(s.clock.Now()))

	return updateByID(ctx, s.db, "event", "events", id, &a)
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.db, "event", "events", id)
}
