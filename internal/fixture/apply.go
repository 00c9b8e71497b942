package fixture

import (
	"context"
	"fmt"

	"github.com/roach88/storyvault/internal/facade"
	"github.com/roach88/storyvault/internal/record"
)

// Result reports what Apply created.
type Result struct {
	Project  record.Project   `json:"project"`
	Tags     int              `json:"tags"`
	Entities map[string]int64 `json:"entities"` // reference -> id
	Events   int              `json:"events"`
}

// Apply creates the bundle's project and records through b. Records are
// created in bundle order: project, tags, entities, events. Apply stops at
// the first failing call; records created before it are kept.
func Apply(ctx context.Context, b *facade.Bridge, bundle *Bundle) (*Result, error) {
	res := &Result{Entities: make(map[string]int64, len(bundle.Entities))}

	err := b.CallInto(ctx, &res.Project, facade.ProjectCreate, record.Project{
		Name:            bundle.Project.Name,
		Description:     bundle.Project.Description,
		WorldSetting:    bundle.Project.WorldSetting,
		ProtagonistInfo: bundle.Project.ProtagonistInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", bundle.Project.Name, err)
	}
	pid := res.Project.ID

	for _, t := range bundle.Tags {
		_, err := b.Call(ctx, facade.TagCreate, record.Tag{
			ProjectID:   pid,
			Name:        t.Name,
			Color:       t.Color,
			Category:    t.Category,
			Description: t.Description,
		})
		if err != nil {
			return res, fmt.Errorf("tag %q: %w", t.Name, err)
		}
		res.Tags++
	}

	for _, e := range bundle.Entities {
		fields, err := record.FieldsOf(e.Fields)
		if err != nil {
			return res, fmt.Errorf("entity %q: %w", e.Name, err)
		}
		var created record.Entity
		err = b.CallInto(ctx, &created, facade.EntityCreate, record.Entity{
			ProjectID:    pid,
			Name:         e.Name,
			Type:         record.EntityType(e.Type),
			Description:  e.Description,
			Tags:         e.Tags,
			CustomFields: fields,
		})
		if err != nil {
			return res, fmt.Errorf("entity %q: %w", e.Name, err)
		}
		res.Entities[e.ref()] = created.ID
	}

	for _, ev := range bundle.Events {
		fields, err := record.FieldsOf(ev.Fields)
		if err != nil {
			return res, fmt.Errorf("event %q: %w", ev.Name, err)
		}
		related := make([]int64, 0, len(ev.Related))
		for _, r := range ev.Related {
			id, ok := res.Entities[r]
			if !ok {
				id, ok = res.Entities[record.NormalizeName(r)]
			}
			if !ok {
				return res, fmt.Errorf("event %q: unknown related entity %q", ev.Name, r)
			}
			related = append(related, id)
		}
		_, err = b.Call(ctx, facade.EventCreate, record.Event{
			ProjectID:       pid,
			Name:            ev.Name,
			Description:     ev.Description,
			WorldTime:       ev.WorldTime,
			ChapterNumber:   ev.Chapter,
			RelatedEntities: related,
			Tags:            ev.Tags,
			CustomFields:    fields,
		})
		if err != nil {
			return res, fmt.Errorf("event %q: %w", ev.Name, err)
		}
		res.Events++
	}

	return res, nil
}
