package store

import "fmt"

// Table definitions. Each is a format string taking the table name so a
// legacy table can be rebuilt under a temporary name and swapped in.
const (
	projectsDDL = `CREATE TABLE IF NOT EXISTS %s (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	world_setting    TEXT NOT NULL DEFAULT '',
	protagonist_info TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	entitiesDDL = `CREATE TABLE IF NOT EXISTS %s (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id    INTEGER NOT NULL DEFAULT 1 REFERENCES projects(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	type          TEXT NOT NULL CHECK (type IN ('character', 'item', 'faction', 'event')),
	description   TEXT NOT NULL DEFAULT '',
	tags          TEXT NOT NULL DEFAULT '[]',
	custom_fields TEXT NOT NULL DEFAULT '{}',
	created_at    TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

	tagsDDL = `CREATE TABLE IF NOT EXISTS %s (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id  INTEGER NOT NULL DEFAULT 1 REFERENCES projects(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	color       TEXT NOT NULL DEFAULT '#4f46e5',
	category    TEXT NOT NULL DEFAULT 'custom',
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (project_id, name)
)`

	eventsDDL = `CREATE TABLE IF NOT EXISTS %s (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id       INTEGER NOT NULL DEFAULT 1 REFERENCES projects(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	world_time       TEXT NOT NULL DEFAULT '',
	chapter_number   INTEGER,
	related_entities TEXT NOT NULL DEFAULT '[]',
	tags             TEXT NOT NULL DEFAULT '[]',
	custom_fields    TEXT NOT NULL DEFAULT '{}',
	created_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
)

// Column lists in scan order.
var (
	projectColumns = []string{"id", "name", "description", "world_setting", "protagonist_info", "created_at", "updated_at"}
	entityColumns  = []string{"id", "project_id", "name", "type", "description", "tags", "custom_fields", "created_at", "updated_at"}
	tagColumns     = []string{"id", "project_id", "name", "color", "category", "description", "created_at"}
	eventColumns   = []string{"id", "project_id", "name", "description", "world_time", "chapter_number",
		"related_entities", "tags", "custom_fields", "created_at", "updated_at"}
)

// baseTables is the creation order; children follow projects.
var baseTables = []struct {
	name string
	ddl  string
}{
	{"projects", projectsDDL},
	{"entities", entitiesDDL},
	{"tags", tagsDDL},
	{"events", eventsDDL},
}

// scopedTables are the tables carrying project_id.
var scopedTables = []string{"entities", "tags", "events"}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_entities_project_type ON entities(project_id, type)`,
	`CREATE INDEX IF NOT EXISTS idx_events_project_timeline ON events(project_id, chapter_number, world_time)`,
}

// additiveColumns are introduced on legacy tables that predate them.
// Declarations must be valid for ALTER TABLE ADD COLUMN.
var additiveColumns = []struct {
	table, column, decl string
}{
	{"projects", "description", "TEXT NOT NULL DEFAULT ''"},
	{"projects", "world_setting", "TEXT NOT NULL DEFAULT ''"},
	{"projects", "protagonist_info", "TEXT NOT NULL DEFAULT ''"},
	{"projects", "updated_at", "TEXT"},
	{"entities", "project_id", "INTEGER NOT NULL DEFAULT 1 REFERENCES projects(id) ON DELETE CASCADE"},
	{"tags", "project_id", "INTEGER NOT NULL DEFAULT 1 REFERENCES projects(id) ON DELETE CASCADE"},
	{"events", "project_id", "INTEGER NOT NULL DEFAULT 1 REFERENCES projects(id) ON DELETE CASCADE"},
}

func createTableSQL(ddl, name string) string {
	return fmt.Sprintf(ddl, name)
}
