package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/storyvault/internal/filter"
	"github.com/roach88/storyvault/internal/record"
)

// driverName is the mattn driver with the casefold function and the
// connection pragmas installed on every new connection.
const driverName = "storyvault_sqlite3"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc(filter.FoldFunc, filter.Fold, true); err != nil {
				return fmt.Errorf("register %s: %w", filter.FoldFunc, err)
			}
			return applyPragmas(conn)
		},
	})
}

// DefaultProjectName names the project Open creates in an empty store.
const DefaultProjectName = "Default"

// Store is the project-scoped record store for Projects, Entities, Tags and
// Events. It is backed by a single SQLite file.
type Store struct {
	db             *sql.DB
	clock          *MonotonicClock
	log            *slog.Logger
	defaultProject string
	warnings       []MigrationWarning
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the timestamp source. It is wrapped in a MonotonicClock,
// so timestamps still strictly advance if c stalls or steps back.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = NewMonotonicClockFrom(c.Now) }
}

// WithLogger sets the logger for migration and lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithDefaultProjectName overrides the name of the project created in an
// empty store.
func WithDefaultProjectName(name string) Option {
	return func(s *Store) {
		if n := record.NormalizeName(name); n != "" {
			s.defaultProject = n
		}
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies pragmas, runs pending migrations, and guarantees at least one
// project exists.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement (cascading project deletes)
//
// A failing migration step does not fail Open; it is logged and kept in
// MigrationWarnings.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps the
	// per-connection foreign_keys toggle used by migrations coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{
		db:             db,
		clock:          NewMonotonicClock(),
		log:            slog.Default(),
		defaultProject: DefaultProjectName,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	warnings, err := s.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	s.warnings = warnings

	if err := s.seedClock(ctx); err != nil {
		if len(warnings) == 0 {
			db.Close()
			return nil, err
		}
		s.log.Warn("clock not seeded after partial migration", "error", err)
	}

	if err := s.ensureDefaultProject(ctx); err != nil {
		if len(warnings) == 0 {
			db.Close()
			return nil, err
		}
		s.log.Warn("default project unavailable after partial migration", "error", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MigrationWarnings returns the step failures recorded by Open.
func (s *Store) MigrationWarnings() []MigrationWarning {
	return append([]MigrationWarning(nil), s.warnings...)
}

// applyPragmas sets required SQLite configuration on a new connection.
func applyPragmas(conn *sqlite3.SQLiteConn) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma, nil); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// seedClock advances the clock past the newest stored timestamp, so writes
// after a reopen never move updated_at backwards when the wall clock has.
func (s *Store) seedClock(ctx context.Context) error {
	const q = `SELECT MAX(t) FROM (
		SELECT MAX(updated_at) AS t FROM projects
		UNION ALL SELECT MAX(updated_at) FROM entities
		UNION ALL SELECT MAX(updated_at) FROM events
		UNION ALL SELECT MAX(created_at) FROM tags)`

	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx, q).Scan(&latest); err != nil {
		return classify("store", "read latest timestamp", err)
	}
	if !latest.Valid {
		return nil
	}
	t, err := parseTime(latest.String)
	if err != nil {
		s.log.Warn("clock not seeded", "error", err)
		return nil
	}
	s.clock.Observe(t)
	return nil
}

// ensureDefaultProject creates the default project when none exist.
func (s *Store) ensureDefaultProject(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&n); err != nil {
		return classify("project", "count", err)
	}
	if n > 0 {
		return nil
	}
	p, err := s.CreateProject(ctx, record.Project{Name: s.defaultProject})
	if err != nil {
		return fmt.Errorf("create default project: %w", err)
	}
	s.log.Info("created default project", "id", p.ID, "name", p.Name)
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
