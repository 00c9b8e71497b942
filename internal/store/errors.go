package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ConstraintError reports a uniqueness or shape violation on write.
type ConstraintError struct {
	// Kind is the record kind ("project", "entity", "tag", "event").
	Kind string

	// Field names the offending field, when known.
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying driver error, if any.
	Err error
}

func (e *ConstraintError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s constraint violated: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s constraint violated: %s", e.Kind, e.Message)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup miss. Most store paths signal absence with
// a boolean instead; this type is for callers that require a record.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// StorageError wraps engine-level failures (I/O, corruption, closed database).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MigrationWarning is a non-fatal migration step failure. The store stays
// usable at the last committed schema version.
type MigrationWarning struct {
	Version int
	Step    string
	Err     error
}

func (w MigrationWarning) Error() string {
	return fmt.Sprintf("migration %d (%s): %v", w.Version, w.Step, w.Err)
}

func (w MigrationWarning) Unwrap() error {
	return w.Err
}

// IsConstraint reports whether err is (or wraps) a ConstraintError.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func constraintf(kind, field, format string, args ...any) *ConstraintError {
	return &ConstraintError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// classify translates driver errors into the store taxonomy.
// SQLite constraint failures become ConstraintError; everything else is a
// StorageError. Errors already classified pass through unchanged.
func classify(kind, op string, err error) error {
	if err == nil {
		return nil
	}

	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
		c := &ConstraintError{Kind: kind, Err: err}
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			c.Field = "name"
			c.Message = "already exists in this project"
		case sqlite3.ErrConstraintForeignKey:
			c.Field = "projectId"
			c.Message = "project does not exist"
		case sqlite3.ErrConstraintNotNull:
			c.Message = "required field is missing"
		case sqlite3.ErrConstraintCheck:
			c.Message = "value outside allowed set"
		default:
			c.Message = sqErr.Error()
		}
		return c
	}

	return &StorageError{Op: kind + " " + op, Err: err}
}
