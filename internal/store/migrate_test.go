package store

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyvault/internal/record"
)

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	version, err := s.SchemaVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
	assert.Empty(t, s.MigrationWarnings())
}

func TestMigration_VersionsAreOrdered(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.version, "step %q", m.name)
	}
}

func TestMigration_MigrateTwiceIsNoop(t *testing.T) {
	s := createTestStore(t)
	pid := defaultProjectID(t, s)
	createTestEntity(t, s, pid, "Aria", record.EntityCharacter, "hero")

	before := snapshot(t, s.db)
	warnings, err := s.Migrate(t.Context())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, before, snapshot(t, s.db))
}

func TestMigration_StepsIdempotent(t *testing.T) {
	path := createLegacyDB(t, legacySchema)
	s := openTestStore(t, path)

	first := snapshot(t, s.db)

	// Force every step to run again against the migrated schema.
	_, err := s.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	warnings, err := s.Migrate(t.Context())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, first, snapshot(t, s.db))
}

func TestMigration_UpgradeLegacyDatabase(t *testing.T) {
	path := createLegacyDB(t, legacySchema)
	s := openTestStore(t, path)
	ctx := t.Context()

	require.Empty(t, s.MigrationWarnings())

	for _, table := range scopedTables {
		assert.Contains(t, getTableColumns(t, s.db, table), "project_id", table)
	}

	// Legacy rows land in project 1, which is created for them.
	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, int64(1), projects[0].ID)
	assert.Equal(t, DefaultProjectName, projects[0].Name)

	pid := int64(1)
	entities, err := s.ListEntities(ctx, &pid)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	// Newest first.
	assert.Equal(t, "Moonblade", entities[0].Name)
	assert.Equal(t, "Aria", entities[1].Name)
	assert.Equal(t, []string{"hero"}, entities[1].Tags)
	assert.Equal(t, record.Fields{"age": record.Int(17)}, entities[1].CustomFields)
	assert.Equal(t, []string{}, entities[0].Tags)
	assert.Equal(t, record.Fields{}, entities[0].CustomFields)
	assert.Equal(t, 2023, entities[1].CreatedAt.Year())

	tags, err := s.ListTags(ctx, &pid)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	// category, then name: "character" < "custom"
	assert.Equal(t, "hero", tags[0].Name)
	assert.Equal(t, "#ef4444", tags[0].Color)
	assert.Equal(t, "cursed", tags[1].Name)
	assert.Equal(t, record.DefaultTagColor, tags[1].Color)
	assert.Equal(t, record.DefaultTagCategory, tags[1].Category)

	events, err := s.ListEvents(ctx, &pid)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []int64{1, 2}, events[0].RelatedEntities)
	require.NotNil(t, events[0].ChapterNumber)
	assert.Equal(t, int64(2), *events[0].ChapterNumber)
}

func TestMigration_LegacyConstraintsRebuilt(t *testing.T) {
	path := createLegacyDB(t, legacySchema)
	s := openTestStore(t, path)
	ctx := t.Context()

	// The old CHECK rejected 'event'.
	_, err := s.CreateEntity(ctx, record.Entity{ProjectID: 1, Name: "Coronation", Type: record.EntityEvent})
	require.NoError(t, err)

	// Tag names were globally unique; now only per project.
	other, err := s.CreateProject(ctx, record.Project{Name: "Sequel"})
	require.NoError(t, err)
	_, err = s.CreateTag(ctx, record.Tag{ProjectID: other.ID, Name: "hero"})
	require.NoError(t, err)

	_, err = s.CreateTag(ctx, record.Tag{ProjectID: 1, Name: "hero"})
	assert.True(t, IsConstraint(err), "got %v", err)

	// Ids survive the rebuild, so new rows continue the sequence.
	e, err := s.CreateEntity(ctx, record.Entity{ProjectID: 1, Name: "Bren", Type: record.EntityCharacter})
	require.NoError(t, err)
	assert.Greater(t, e.ID, int64(2))

	assert.NotContains(t, getTableIndexes(t, s.db, "entities"), "idx_entities_type")
	assert.Contains(t, getTableIndexes(t, s.db, "entities"), "idx_entities_project_type")
}

func TestMigration_LegacyCascade(t *testing.T) {
	path := createLegacyDB(t, legacySchema)
	s := openTestStore(t, path)
	ctx := t.Context()

	ok, err := s.DeleteProject(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	entities, err := s.ListEntities(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, entities)
	tags, err := s.ListTags(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
	events, err := s.ListEvents(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMigration_FailingStepIsWarning(t *testing.T) {
	// A NULL type cannot be copied into the rebuilt entities table.
	path := createLegacyDB(t, `
CREATE TABLE entities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	type TEXT,
	description TEXT,
	tags TEXT,
	custom_fields TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
INSERT INTO entities (name, type) VALUES ('Nameless', NULL);
`)
	s := openTestStore(t, path)

	warnings := s.MigrationWarnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Version)
	assert.Equal(t, "rebuild legacy constraints", warnings[0].Step)
	assert.Error(t, warnings[0].Unwrap())

	// Earlier steps committed; later ones did not run.
	version, err := s.SchemaVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.False(t, slices.Contains(getTableIndexes(t, s.db, "entities"), "idx_entities_project_type"))

	// The store is still usable.
	projects, err := s.ListProjects(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, projects)
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestHasUniqueIndex_Legacy(t *testing.T) {
	path := createLegacyDB(t, legacySchema)
	s := openTestStore(t, path)

	ok, err := hasUniqueIndex(t.Context(), s.db, "tags", "name")
	require.NoError(t, err)
	assert.False(t, ok, "rebuilt tags must not keep a global name index")
}
