package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/storyvault/internal/filter"
)

// queryAll runs a compiled listing and scans every row.
// Returns an empty slice (not nil) when nothing matches.
func queryAll[T any](ctx context.Context, db *sql.DB, kind string, q filter.Select, scan func(rowScanner) (T, error)) ([]T, error) {
	query, params, err := filter.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", kind, err)
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, classify(kind, "query", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classify(kind, "scan", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(kind, "iterate", err)
	}
	return out, nil
}

// queryByID fetches a single row by primary key. The bool reports whether
// the row exists; absence is never an error.
func queryByID[T any](ctx context.Context, db *sql.DB, kind, table string, columns []string, id int64, scan func(rowScanner) (T, error)) (T, bool, error) {
	var zero T
	query, params, err := filter.Compile(filter.Select{
		From:    table,
		Columns: columns,
		Where:   filter.Equals{Column: "id", Value: id},
	})
	if err != nil {
		return zero, false, fmt.Errorf("compile %s query: %w", kind, err)
	}

	v, err := scan(db.QueryRowContext(ctx, query, params...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, classify(kind, "get", err)
	}
	return v, true, nil
}

// count runs a compiled COUNT(*).
func count(ctx context.Context, db *sql.DB, kind string, q filter.Count) (int, error) {
	query, params, err := filter.CompileCount(q)
	if err != nil {
		return 0, fmt.Errorf("compile %s count: %w", kind, err)
	}
	var n int
	if err := db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, classify(kind, "count", err)
	}
	return n, nil
}

// assignments accumulates the SET list of a partial update. Only provided
// patch fields are added, so omitted columns stay untouched.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

// updateByID applies the assignments to one row and reports whether it existed.
func updateByID(ctx context.Context, db *sql.DB, kind, table string, id int64, a *assignments) (bool, error) {
	cols := a.cols
	if len(cols) == 0 {
		// Tags have no updated_at; an empty patch still reports existence.
		cols = []string{"id = id"}
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(cols, ", "))
	args := append(append([]any{}, a.args...), id)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify(kind, "update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(kind, "update", err)
	}
	return n > 0, nil
}

// deleteByID removes one row and reports whether it existed.
func deleteByID(ctx context.Context, db *sql.DB, kind, table string, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return false, classify(kind, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(kind, "delete", err)
	}
	return n > 0, nil
}

// insert runs an INSERT and returns the new row id.
func insert(ctx context.Context, db *sql.DB, kind, table string, columns []string, args ...any) (int64, error) {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), marks)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(kind, "create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(kind, "create", err)
	}
	return id, nil
}

func requireProject(kind string, projectID int64) error {
	if projectID <= 0 {
		return constraintf(kind, "projectId", "must reference an existing project")
	}
	return nil
}

func projectFilter(projectID *int64) filter.Predicate {
	if projectID == nil {
		return nil
	}
	return filter.Equals{Column: "project_id", Value: *projectID}
}
