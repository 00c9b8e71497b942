package store

import (
	"context"

	"github.com/roach88/storyvault/internal/filter"
	"github.com/roach88/storyvault/internal/record"
)

// CreateProject inserts a project and returns it as stored.
func (s *Store) CreateProject(ctx context.Context, p record.Project) (record.Project, error) {
	name := record.NormalizeName(p.Name)
	if name == "" {
		return record.Project{}, constraintf("project", "name", "is required")
	}

	now := formatTime(s.clock.Now())
	id, err := insert(ctx, s.db, "project", "projects",
		[]string{"name", "description", "world_setting", "protagonist_info", "created_at", "updated_at"},
		name, p.Description, p.WorldSetting, p.ProtagonistInfo, now, now)
	if err != nil {
		return record.Project{}, err
	}
	return s.mustGetProject(ctx, id)
}

// ListProjects returns every project, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]record.Project, error) {
	return queryAll(ctx, s.db, "project", filter.Select{
		From:    "projects",
		Columns: projectColumns,
		OrderBy: []filter.Order{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
	}, scanProject)
}

// GetProject returns the project with the given id. The bool is false when
// no such project exists.
func (s *Store) GetProject(ctx context.Context, id int64) (record.Project, bool, error) {
	return queryByID(ctx, s.db, "project", "projects", projectColumns, id, scanProject)
}

// UpdateProject merges the patch into the stored project and refreshes
// updated_at. Returns false when the project does not exist.
func (s *Store) UpdateProject(ctx context.Context, id int64, patch record.ProjectPatch) (bool, error) {
	var a assignments
	if patch.Name != nil {
		name := record.NormalizeName(*patch.Name)
		if name == "" {
			return false, constraintf("project", "name", "cannot be blank")
		}
		a.set("name", name)
	}
	if patch.Description != nil {
		a.set("description", *patch.Description)
	}
	if patch.WorldSetting != nil {
		a.set("world_setting", *patch.WorldSetting)
	}
	if patch.ProtagonistInfo != nil {
		a.set("protagonist_info", *patch.ProtagonistInfo)
	}
	a.set("updated_at", formatTime(s.clock.Now()))

	return updateByID(ctx, s.db, "project", "projects", id, &a)
}

// DeleteProject removes a project together with its entities, tags and
// events. Returns false when the project does not exist.
func (s *Store) DeleteProject(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.db, "project", "projects", id)
}

func (s *Store) mustGetProject(ctx context.Context, id int64) (record.Project, error) {
	p, ok, err := s.GetProject(ctx, id)
	if err != nil {
		return record.Project{}, err
	}
	if !ok {
		return record.Project{}, &NotFoundError{Kind: "project", ID: id}
	}
	return p, nil
}
