package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyvault/internal/record"
)

func TestProjectStats(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	pid, _ := seedSearch(t, s)

	for i := 0; i < 3; i++ {
		createTestEntity(t, s, pid, "Extra"+string(rune('A'+i)), record.EntityEvent)
	}
	_, err := s.CreateTag(ctx, record.Tag{ProjectID: pid, Name: "hero"})
	require.NoError(t, err)

	st, ok, err := s.ProjectStats(ctx, pid)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, pid, st.ProjectID)
	assert.Equal(t, DefaultProjectName, st.ProjectName)
	assert.Equal(t, 8, st.Entities)
	assert.Equal(t, map[record.EntityType]int{
		record.EntityCharacter: 3,
		record.EntityItem:      1,
		record.EntityFaction:   1,
		record.EntityEvent:     3,
	}, st.EntitiesByType)
	assert.Equal(t, 4, st.Events)
	assert.Equal(t, 1, st.Tags)

	assert.Equal(t, []string{"ExtraC", "ExtraB", "ExtraA", "Ärger", "Iron Guild"}, entityNames(st.RecentEntities))
	assert.Equal(t, []string{"Rumor", "Forging", "Betrayal", "Siege"}, eventNames(st.RecentEvents))
}

func TestProjectStats_EmptyProject(t *testing.T) {
	s := createTestStore(t)
	pid := defaultProjectID(t, s)

	st, ok, err := s.ProjectStats(t.Context(), pid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, st.Entities)
	assert.Len(t, st.EntitiesByType, len(record.EntityTypes))
	assert.Equal(t, []record.Entity{}, st.RecentEntities)
	assert.Equal(t, []record.Event{}, st.RecentEvents)
}

func TestProjectStats_UnknownProject(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.ProjectStats(t.Context(), 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}
