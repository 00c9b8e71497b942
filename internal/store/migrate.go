package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// migration is one ordered schema step. Steps must be idempotent: each
// inspects the current structure before changing it.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, s *Store, tx *sql.Tx) error
}

// Schema version tracking (PRAGMA user_version):
// 0 - empty file or legacy store
// 1 - base tables
// 2 - project_id on legacy child tables
// 3 - legacy entities/tags rebuilt to current constraints
// 4 - indexes
var migrations = []migration{
	{1, "base tables", createBaseTables},
	{2, "project scoping", addProjectScoping},
	{3, "rebuild legacy constraints", rebuildLegacyTables},
	{4, "indexes", createIndexes},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// Migrate applies pending migration steps in order. Each step runs in its
// own transaction with foreign keys disabled and advances user_version only
// on commit. A failing step is returned as a warning and halts later steps;
// the returned error is reserved for failures to inspect the database at all.
//
// Migrate is idempotent: against a current schema it does nothing.
func (s *Store) Migrate(ctx context.Context) ([]MigrationWarning, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &StorageError{Op: "migrate", Err: err}
	}
	defer conn.Close()

	var version int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return nil, &StorageError{Op: "get user_version", Err: err}
	}
	if version >= currentSchemaVersion {
		return []MigrationWarning{}, nil
	}

	// ALTER TABLE ADD COLUMN with REFERENCES and a non-NULL default, and
	// table rebuilds, both require foreign keys off. The pragma is a no-op
	// inside a transaction, so it is toggled on the connection.
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return nil, &StorageError{Op: "disable foreign keys", Err: err}
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); err != nil {
			s.log.Error("failed to re-enable foreign keys", "error", err)
		}
	}()

	warnings := []MigrationWarning{}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := s.runStep(ctx, conn, m); err != nil {
			w := MigrationWarning{Version: m.version, Step: m.name, Err: err}
			s.log.Warn("migration step failed", "version", m.version, "step", m.name, "error", err)
			warnings = append(warnings, w)
			break
		}
		s.log.Debug("migration step applied", "version", m.version, "step", m.name)
	}

	return warnings, nil
}

// runStep applies one migration and stamps its version in the same transaction.
func (s *Store) runStep(ctx context.Context, conn *sql.Conn, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := m.apply(ctx, s, tx); err != nil {
		return err
	}
	// user_version cannot be bound as a parameter.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the stored schema version marker.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, &StorageError{Op: "get user_version", Err: err}
	}
	return version, nil
}

func createBaseTables(ctx context.Context, _ *Store, tx *sql.Tx) error {
	for _, t := range baseTables {
		if _, err := tx.ExecContext(ctx, createTableSQL(t.ddl, t.name)); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}

// addProjectScoping adds missing columns to legacy tables. Rows written
// before project scoping existed land in project 1, which is created if
// anything refers to it.
func addProjectScoping(ctx context.Context, s *Store, tx *sql.Tx) error {
	for _, c := range additiveColumns {
		cols, err := tableColumns(ctx, tx, c.table)
		if err != nil {
			return err
		}
		if slices.Contains(cols, c.column) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.decl)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add %s.%s: %w", c.table, c.column, err)
		}
		s.log.Info("added legacy column", "table", c.table, "column", c.column)
	}

	now := formatTime(s.clock.Now())
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, created_at, updated_at)
		SELECT 1, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM projects WHERE id = 1)
		  AND (EXISTS (SELECT 1 FROM entities WHERE project_id = 1)
		    OR EXISTS (SELECT 1 FROM tags WHERE project_id = 1)
		    OR EXISTS (SELECT 1 FROM events WHERE project_id = 1))
	`, s.defaultProject, now, now)
	if err != nil {
		return fmt.Errorf("create legacy default project: %w", err)
	}
	return nil
}

// rebuildFallbacks supplies values for columns a legacy table lacks or
// holds as NULL when its rows are copied into the current definition.
var rebuildFallbacks = map[string]map[string]string{
	"entities": {
		"project_id":    "1",
		"description":   "''",
		"tags":          "'[]'",
		"custom_fields": "'{}'",
		"created_at":    "CURRENT_TIMESTAMP",
		"updated_at":    "CURRENT_TIMESTAMP",
	},
	"tags": {
		"project_id":  "1",
		"color":       "'#4f46e5'",
		"category":    "'custom'",
		"description": "''",
		"created_at":  "CURRENT_TIMESTAMP",
	},
}

// rebuildLegacyTables replaces tables whose constraints predate the current
// schema: entities without the 'event' type and tags unique by name alone.
func rebuildLegacyTables(ctx context.Context, s *Store, tx *sql.Tx) error {
	var entitiesSQL string
	err := tx.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'entities'").Scan(&entitiesSQL)
	if err != nil {
		return fmt.Errorf("read entities definition: %w", err)
	}
	if !strings.Contains(entitiesSQL, "'event'") {
		if err := rebuildTable(ctx, tx, "entities", entitiesDDL, entityColumns); err != nil {
			return err
		}
		s.log.Info("rebuilt legacy table", "table", "entities")
	}

	scoped, err := hasUniqueIndex(ctx, tx, "tags", "project_id", "name")
	if err != nil {
		return err
	}
	if !scoped {
		if err := rebuildTable(ctx, tx, "tags", tagsDDL, tagColumns); err != nil {
			return err
		}
		s.log.Info("rebuilt legacy table", "table", "tags")
	}
	return nil
}

// rebuildTable copies rows into a freshly created table and swaps it in,
// preserving ids.
func rebuildTable(ctx context.Context, tx *sql.Tx, table, ddl string, columns []string) error {
	existing, err := tableColumns(ctx, tx, table)
	if err != nil {
		return err
	}

	exprs := make([]string, len(columns))
	for i, col := range columns {
		fallback, hasFallback := rebuildFallbacks[table][col]
		switch {
		case slices.Contains(existing, col) && hasFallback:
			exprs[i] = fmt.Sprintf("COALESCE(%s, %s)", col, fallback)
		case slices.Contains(existing, col):
			exprs[i] = col
		case hasFallback:
			exprs[i] = fallback
		default:
			return fmt.Errorf("rebuild %s: legacy table has no %s column", table, col)
		}
	}

	tmp := table + "_rebuild"
	stmts := []string{
		"DROP TABLE IF EXISTS " + tmp,
		createTableSQL(ddl, tmp),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			tmp, strings.Join(columns, ", "), strings.Join(exprs, ", "), table),
		"DROP TABLE " + table,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tmp, table),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("rebuild %s: %w", table, err)
		}
	}
	return nil
}

func createIndexes(ctx context.Context, _ *Store, tx *sql.Tx) error {
	for _, stmt := range indexes {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// tableColumns lists a table's column names in declaration order.
func tableColumns(ctx context.Context, q querier, table string) ([]string, error) {
	return queryStrings(ctx, q, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
}

// hasUniqueIndex reports whether table has a unique index over exactly cols.
func hasUniqueIndex(ctx context.Context, q querier, table string, cols ...string) (bool, error) {
	names, err := queryStrings(ctx, q, `SELECT name FROM pragma_index_list(?) WHERE "unique" = 1`, table)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		indexed, err := queryStrings(ctx, q, "SELECT name FROM pragma_index_info(?) ORDER BY seqno", name)
		if err != nil {
			return false, err
		}
		if slices.Equal(indexed, cols) {
			return true, nil
		}
	}
	return false, nil
}

func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("inspect schema: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("inspect schema: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect schema: %w", err)
	}
	return out, nil
}
