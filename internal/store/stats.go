package store

import (
	"context"

	"github.com/roach88/storyvault/internal/filter"
	"github.com/roach88/storyvault/internal/record"
)

// recentLimit is how many entities and events the dashboard shows.
const recentLimit = 5

// Stats summarizes one project for the dashboard.
type Stats struct {
	ProjectID      int64                     `json:"projectId"`
	ProjectName    string                    `json:"projectName"`
	Entities       int                       `json:"entities"`
	EntitiesByType map[record.EntityType]int `json:"entitiesByType"`
	Events         int                       `json:"events"`
	Tags           int                       `json:"tags"`
	RecentEntities []record.Entity           `json:"recentEntities"`
	RecentEvents   []record.Event            `json:"recentEvents"`
}

// ProjectStats counts a project's records and returns the five newest
// entities and the first five events in timeline order. The bool is false
// when the project does not exist.
func (s *Store) ProjectStats(ctx context.Context, projectID int64) (Stats, bool, error) {
	p, ok, err := s.GetProject(ctx, projectID)
	if err != nil || !ok {
		return Stats{}, ok, err
	}

	st := Stats{
		ProjectID:      p.ID,
		ProjectName:    p.Name,
		EntitiesByType: make(map[record.EntityType]int, len(record.EntityTypes)),
	}
	scope := filter.Equals{Column: "project_id", Value: projectID}

	for _, et := range record.EntityTypes {
		n, err := count(ctx, s.db, "entity", filter.Count{
			From:  "entities",
			Where: filter.All(scope, filter.Equals{Column: "type", Value: string(et)}),
		})
		if err != nil {
			return Stats{}, false, err
		}
		st.EntitiesByType[et] = n
		st.Entities += n
	}
	if st.Events, err = count(ctx, s.db, "event", filter.Count{From: "events", Where: scope}); err != nil {
		return Stats{}, false, err
	}
	if st.Tags, err = count(ctx, s.db, "tag", filter.Count{From: "tags", Where: scope}); err != nil {
		return Stats{}, false, err
	}

	if st.RecentEntities, err = s.SearchEntities(ctx, EntityQuery{ProjectID: &projectID, Limit: recentLimit}); err != nil {
		return Stats{}, false, err
	}
	if st.RecentEvents, err = s.SearchEvents(ctx, EventQuery{ProjectID: &projectID, Limit: recentLimit}); err != nil {
		return Stats{}, false, err
	}
	return st, true, nil
}
