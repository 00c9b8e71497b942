package store

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/roach88/storyvault/internal/record"
	"github.com/roach88/storyvault/internal/testutil"
)

// createTestStore opens a fresh store in a temp dir with a stepping clock.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "test.db"), opts...)
}

func openTestStore(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(testutil.NewSteppingClock()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	s, err := Open(path, append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// defaultProjectID returns the id of the project Open created.
func defaultProjectID(t *testing.T, s *Store) int64 {
	t.Helper()
	projects, err := s.ListProjects(t.Context())
	if err != nil {
		t.Fatalf("ListProjects() failed: %v", err)
	}
	if len(projects) == 0 {
		t.Fatal("no projects after Open")
	}
	return projects[len(projects)-1].ID
}

func createTestEntity(t *testing.T, s *Store, projectID int64, name string, typ record.EntityType, tags ...string) record.Entity {
	t.Helper()
	e, err := s.CreateEntity(t.Context(), record.Entity{ProjectID: projectID, Name: name, Type: typ, Tags: tags})
	if err != nil {
		t.Fatalf("CreateEntity(%q) failed: %v", name, err)
	}
	return e
}

func createTestEvent(t *testing.T, s *Store, ev record.Event) record.Event {
	t.Helper()
	got, err := s.CreateEvent(t.Context(), ev)
	if err != nil {
		t.Fatalf("CreateEvent(%q) failed: %v", ev.Name, err)
	}
	return got
}

// legacySchema is the layout written before project scoping existed.
const legacySchema = `
CREATE TABLE entities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('character', 'item', 'faction')),
	description TEXT,
	tags TEXT,
	custom_fields TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	color TEXT,
	category TEXT,
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	world_time TEXT,
	chapter_number INTEGER,
	related_entities TEXT,
	tags TEXT,
	custom_fields TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_entities_type ON entities(type);

INSERT INTO entities (name, type, description, tags, custom_fields, created_at, updated_at)
VALUES ('Aria', 'character', 'A ranger', '["hero"]', '{"age":17}', '2023-05-01 10:00:00', '2023-05-01 10:00:00');
INSERT INTO entities (name, type, description, tags, custom_fields, created_at, updated_at)
VALUES ('Moonblade', 'item', NULL, NULL, NULL, '2023-05-02 10:00:00', '2023-05-02 10:00:00');
INSERT INTO tags (name, color, category) VALUES ('hero', '#ef4444', 'character');
INSERT INTO tags (name, color, category) VALUES ('cursed', NULL, NULL);
INSERT INTO events (name, world_time, chapter_number, related_entities, tags)
VALUES ('The Fall', 'Year 3', 2, '[1,2]', '["hero"]');
`

// createLegacyDB writes a pre-project-scoping database file and returns its path.
func createLegacyDB(t *testing.T, schema string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open legacy database: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to write legacy schema: %v", err)
	}
	return path
}

// snapshot renders schema and data as text so two states can be compared.
func snapshot(t *testing.T, db *sql.DB) string {
	t.Helper()
	var b strings.Builder

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version: %v", err)
	}
	fmt.Fprintf(&b, "user_version=%d\n", version)

	rows, err := db.Query("SELECT type, name, COALESCE(sql, '') FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' ORDER BY type, name")
	if err != nil {
		t.Fatalf("sqlite_master: %v", err)
	}
	var ddl []string
	for rows.Next() {
		var typ, name, text string
		if err := rows.Scan(&typ, &name, &text); err != nil {
			t.Fatalf("scan sqlite_master: %v", err)
		}
		ddl = append(ddl, typ+" "+name+": "+text)
	}
	rows.Close()
	sort.Strings(ddl)
	b.WriteString(strings.Join(ddl, "\n"))

	for _, table := range []string{"projects", "entities", "tags", "events"} {
		fmt.Fprintf(&b, "\n-- %s\n", table)
		rows, err := db.Query("SELECT * FROM " + table + " ORDER BY id")
		if err != nil {
			t.Fatalf("dump %s: %v", table, err)
		}
		cols, _ := rows.Columns()
		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				t.Fatalf("scan %s: %v", table, err)
			}
			for i, v := range vals {
				if bs, ok := v.([]byte); ok {
					vals[i] = string(bs)
				}
			}
			fmt.Fprintf(&b, "%v\n", vals)
		}
		rows.Close()
	}
	return b.String()
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	cols, err := tableColumns(t.Context(), db, table)
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	return cols
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
