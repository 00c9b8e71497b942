package store

import (
	"context"
	"strings"

	"github.com/roach88/storyvault/internal/filter"
	"github.com/roach88/storyvault/internal/record"
)

// EntityQuery narrows an entity listing. Zero fields do not filter.
type EntityQuery struct {
	ProjectID *int64            `json:"projectId,omitempty"`
	Text      string            `json:"text,omitempty"` // name or description, case-insensitive
	Type      record.EntityType `json:"type,omitempty"`
	Tag       string            `json:"tag,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}

func (q EntityQuery) predicate() filter.Predicate {
	var preds []filter.Predicate
	preds = append(preds, projectFilter(q.ProjectID))
	if text := strings.TrimSpace(q.Text); text != "" {
		preds = append(preds, filter.Contains{Columns: []string{"name", "description"}, Text: text})
	}
	if q.Type != "" {
		preds = append(preds, filter.Equals{Column: "type", Value: string(q.Type)})
	}
	if tag := record.NormalizeName(q.Tag); tag != "" {
		preds = append(preds, filter.JSONHas{Column: "tags", Value: tag})
	}
	return filter.All(preds...)
}

// EventQuery narrows an event listing. Zero fields do not filter.
type EventQuery struct {
	ProjectID *int64 `json:"projectId,omitempty"`
	Text      string `json:"text,omitempty"`

	// Axis keeps only events placeable on that axis: a non-empty world
	// time, or a chapter number.
	Axis record.Axis `json:"axis,omitempty"`

	// EntityType keeps events related to at least one entity of that type.
	EntityType record.EntityType `json:"entityType,omitempty"`

	Tag   string `json:"tag,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

func (q EventQuery) predicate() filter.Predicate {
	var preds []filter.Predicate
	preds = append(preds, projectFilter(q.ProjectID))
	if text := strings.TrimSpace(q.Text); text != "" {
		preds = append(preds, filter.Contains{Columns: []string{"name", "description"}, Text: text})
	}
	switch q.Axis {
	case record.AxisWorld:
		preds = append(preds, filter.NotBlank{Column: "world_time"})
	case record.AxisChapter:
		preds = append(preds, filter.NotNull{Column: "chapter_number"})
	}
	if q.EntityType != "" {
		preds = append(preds, filter.Related{
			Column: "related_entities",
			Table:  "entities",
			Match:  filter.Equals{Column: "type", Value: string(q.EntityType)},
		})
	}
	if tag := record.NormalizeName(q.Tag); tag != "" {
		preds = append(preds, filter.JSONHas{Column: "tags", Value: tag})
	}
	return filter.All(preds...)
}

// SearchEntities lists entities matching every set field of q, newest first.
func (s *Store) SearchEntities(ctx context.Context, q EntityQuery) ([]record.Entity, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, constraintf("entity", "type", "%q is not one of character, item, faction, event", q.Type)
	}
	return queryAll(ctx, s.db, "entity", filter.Select{
		From:    "entities",
		Columns: entityColumns,
		Where:   q.predicate(),
		OrderBy: []filter.Order{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
		Limit:   q.Limit,
	}, scanEntity)
}

// SearchEvents lists events matching every set field of q, ordered by
// chapter number then world time.
func (s *Store) SearchEvents(ctx context.Context, q EventQuery) ([]record.Event, error) {
	if q.Axis != "" && !q.Axis.Valid() {
		return nil, constraintf("event", "axis", "%q is not world or chapter", q.Axis)
	}
	if q.EntityType != "" && !q.EntityType.Valid() {
		return nil, constraintf("event", "entityType", "%q is not one of character, item, faction, event", q.EntityType)
	}
	return queryAll(ctx, s.db, "event", filter.Select{
		From:    "events",
		Columns: eventColumns,
		Where:   q.predicate(),
		OrderBy: []filter.Order{{Column: "chapter_number"}, {Column: "world_time"}},
		Limit:   q.Limit,
	}, scanEvent)
}
