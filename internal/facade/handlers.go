package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/roach88/storyvault/internal/export"
	"github.com/roach88/storyvault/internal/record"
	"github.com/roach88/storyvault/internal/store"
	"github.com/roach88/storyvault/internal/timeline"
)

// handler executes one command. The returned value is encoded as the
// response result.
type handler func(ctx context.Context, b *Bridge, a args) (any, error)

func commands() map[string]handler {
	return map[string]handler{
		ProjectCreate: createProject,
		ProjectGetAll: listProjects,
		ProjectGet:    getProject,
		ProjectUpdate: updateProject,
		ProjectDelete: deleteProject,
		ProjectStats:  projectStats,
		ProjectExport: exportProject,

		EntityCreate: createEntity,
		EntityGetAll: listEntities,
		EntityUpdate: updateEntity,
		EntityDelete: deleteEntity,
		EntitySearch: searchEntities,

		TagCreate:  createTag,
		TagGetAll:  listTags,
		TagUpdate:  updateTag,
		TagDelete:  deleteTag,
		TagPresets: tagPresets,

		EventCreate:   createEvent,
		EventGetAll:   listEvents,
		EventUpdate:   updateEvent,
		EventDelete:   deleteEvent,
		EventSearch:   searchEvents,
		EventTimeline: eventTimeline,
	}
}

// CommandNames returns every command name in sorted order.
func CommandNames() []string {
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// args decodes positional arguments.
type args []json.RawMessage

func (a args) present(i int) bool {
	return i < len(a) && len(a[i]) > 0 && !bytes.Equal(bytes.TrimSpace(a[i]), []byte("null"))
}

// decode reads required argument i into v.
func (a args) decode(i int, name string, v any) error {
	if !a.present(i) {
		return badRequest("argument %d (%s) is required", i, name)
	}
	if err := json.Unmarshal(a[i], v); err != nil {
		if errors.Is(err, record.ErrNotScalar) {
			return &store.ConstraintError{Kind: recordKind(v), Field: "customFields", Message: err.Error(), Err: err}
		}
		return badRequest("argument %d (%s): %v", i, name, err)
	}
	return nil
}

// recordKind names the record kind a decode target belongs to.
func recordKind(v any) string {
	switch v.(type) {
	case *record.Entity, *record.EntityPatch:
		return "entity"
	case *record.Event, *record.EventPatch:
		return "event"
	default:
		return "record"
	}
}

// optional reads argument i into v when it is present and not null.
func (a args) optional(i int, name string, v any) (bool, error) {
	if !a.present(i) {
		return false, nil
	}
	return true, a.decode(i, name, v)
}

func (a args) id(i int) (int64, error) {
	var id int64
	err := a.decode(i, "id", &id)
	return id, err
}

func (a args) projectID(i int) (*int64, error) {
	var id int64
	ok, err := a.optional(i, "projectId", &id)
	if err != nil || !ok {
		return nil, err
	}
	return &id, nil
}

// Projects

func createProject(ctx context.Context, b *Bridge, a args) (any, error) {
	var p record.Project
	if err := a.decode(0, "project", &p); err != nil {
		return nil, err
	}
	return b.store.CreateProject(ctx, p)
}

func listProjects(ctx context.Context, b *Bridge, _ args) (any, error) {
	return b.store.ListProjects(ctx)
}

// getProject answers null for an unknown id.
func getProject(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	p, ok, err := b.store.GetProject(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return p, nil
}

func updateProject(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	var patch record.ProjectPatch
	if err := a.decode(1, "patch", &patch); err != nil {
		return nil, err
	}
	return b.store.UpdateProject(ctx, id, patch)
}

func deleteProject(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	return b.store.DeleteProject(ctx, id)
}

func projectStats(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	st, ok, err := b.store.ProjectStats(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &store.NotFoundError{Kind: "project", ID: id}
	}
	return st, nil
}

// ExportResult is the result of project:export.
type ExportResult struct {
	ProjectID int64  `json:"projectId"`
	Text      string `json:"text"`
}

func exportProject(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	doc, err := b.document(ctx, id)
	if err != nil {
		return nil, err
	}
	text, err := export.String(doc)
	if err != nil {
		return nil, err
	}
	return ExportResult{ProjectID: id, Text: text}, nil
}

// document gathers everything a project export needs.
func (b *Bridge) document(ctx context.Context, id int64) (export.Document, error) {
	p, ok, err := b.store.GetProject(ctx, id)
	if err != nil {
		return export.Document{}, err
	}
	if !ok {
		return export.Document{}, &store.NotFoundError{Kind: "project", ID: id}
	}
	doc := export.Document{Project: p}
	if doc.Entities, err = b.store.ListEntities(ctx, &id); err != nil {
		return export.Document{}, err
	}
	if doc.Tags, err = b.store.ListTags(ctx, &id); err != nil {
		return export.Document{}, err
	}
	if doc.Events, err = b.store.ListEvents(ctx, &id); err != nil {
		return export.Document{}, err
	}
	return doc, nil
}

// Entities

func createEntity(ctx context.Context, b *Bridge, a args) (any, error) {
	var e record.Entity
	if err := a.decode(0, "entity", &e); err != nil {
		return nil, err
	}
	return b.store.CreateEntity(ctx, e)
}

func listEntities(ctx context.Context, b *Bridge, a args) (any, error) {
	pid, err := a.projectID(0)
	if err != nil {
		return nil, err
	}
	return b.store.ListEntities(ctx, pid)
}

func updateEntity(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	var patch record.EntityPatch
	if err := a.decode(1, "patch", &patch); err != nil {
		return nil, err
	}
	return b.store.UpdateEntity(ctx, id, patch)
}

func deleteEntity(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	return b.store.DeleteEntity(ctx, id)
}

func searchEntities(ctx context.Context, b *Bridge, a args) (any, error) {
	var q store.EntityQuery
	if _, err := a.optional(0, "query", &q); err != nil {
		return nil, err
	}
	return b.store.SearchEntities(ctx, q)
}

// Tags

func createTag(ctx context.Context, b *Bridge, a args) (any, error) {
	var t record.Tag
	if err := a.decode(0, "tag", &t); err != nil {
		return nil, err
	}
	return b.store.CreateTag(ctx, t)
}

func listTags(ctx context.Context, b *Bridge, a args) (any, error) {
	pid, err := a.projectID(0)
	if err != nil {
		return nil, err
	}
	return b.store.ListTags(ctx, pid)
}

func updateTag(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	var patch record.TagPatch
	if err := a.decode(1, "patch", &patch); err != nil {
		return nil, err
	}
	return b.store.UpdateTag(ctx, id, patch)
}

func deleteTag(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	return b.store.DeleteTag(ctx, id)
}

// Presets is the result of tag:presets.
type Presets struct {
	Colors          []string `json:"colors"`
	Categories      []string `json:"categories"`
	DefaultColor    string   `json:"defaultColor"`
	DefaultCategory string   `json:"defaultCategory"`
}

func tagPresets(context.Context, *Bridge, args) (any, error) {
	return Presets{
		Colors:          record.PresetColors,
		Categories:      record.PresetCategories,
		DefaultColor:    record.DefaultTagColor,
		DefaultCategory: record.DefaultTagCategory,
	}, nil
}

// Events

func createEvent(ctx context.Context, b *Bridge, a args) (any, error) {
	var ev record.Event
	if err := a.decode(0, "event", &ev); err != nil {
		return nil, err
	}
	return b.store.CreateEvent(ctx, ev)
}

func listEvents(ctx context.Context, b *Bridge, a args) (any, error) {
	pid, err := a.projectID(0)
	if err != nil {
		return nil, err
	}
	return b.store.ListEvents(ctx, pid)
}

func updateEvent(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	var patch record.EventPatch
	if err := a.decode(1, "patch", &patch); err != nil {
		return nil, err
	}
	return b.store.UpdateEvent(ctx, id, patch)
}

func deleteEvent(ctx context.Context, b *Bridge, a args) (any, error) {
	id, err := a.id(0)
	if err != nil {
		return nil, err
	}
	return b.store.DeleteEvent(ctx, id)
}

func searchEvents(ctx context.Context, b *Bridge, a args) (any, error) {
	var q store.EventQuery
	if _, err := a.optional(0, "query", &q); err != nil {
		return nil, err
	}
	return b.store.SearchEvents(ctx, q)
}

// Timeline is the result of event:timeline.
type Timeline struct {
	Axis       record.Axis          `json:"axis"`
	Placements []timeline.Placement `json:"placements"`
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
}

// eventTimeline lays out the events placeable on the query's axis, which
// defaults to world time. The optional second argument overrides card
// geometry.
func eventTimeline(ctx context.Context, b *Bridge, a args) (any, error) {
	var q store.EventQuery
	if _, err := a.optional(0, "query", &q); err != nil {
		return nil, err
	}
	if q.Axis == "" {
		q.Axis = record.AxisWorld
	}
	var opts timeline.Options
	if _, err := a.optional(1, "options", &opts); err != nil {
		return nil, err
	}

	events, err := b.store.SearchEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	placements := timeline.Layout(events, q.Axis, opts)
	w, h := timeline.Bounds(placements, opts)
	return Timeline{Axis: q.Axis, Placements: placements, Width: w, Height: h}, nil
}
