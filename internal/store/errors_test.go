package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("tag", "create", nil))

	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	err := classify("tag", "create", fmt.Errorf("exec: %w", unique))
	var ce *ConstraintError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "tag", ce.Kind)
	assert.Equal(t, "name", ce.Field)

	fk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	err = classify("entity", "create", fk)
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "projectId", ce.Field)

	ioErr := sqlite3.Error{Code: sqlite3.ErrIoErr}
	err = classify("entity", "list", ioErr)
	assert.True(t, IsStorage(err))
	assert.False(t, IsConstraint(err))
	assert.Contains(t, err.Error(), "entity list")

	// Already-classified errors pass through.
	orig := constraintf("event", "name", "is required")
	assert.Same(t, orig, classify("event", "create", orig))
}

func TestErrorHelpers(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", &NotFoundError{Kind: "tag", ID: 4})
	assert.True(t, IsNotFound(nf))
	assert.EqualError(t, errors.Unwrap(nf), "tag 4 not found")

	se := &StorageError{Op: "project list", Err: errors.New("disk I/O error")}
	assert.True(t, IsStorage(se))
	assert.EqualError(t, se, "storage: project list: disk I/O error")

	ce := constraintf("entity", "type", "%q is not valid", "planet")
	assert.EqualError(t, ce, `entity constraint violated: type: "planet" is not valid`)

	w := MigrationWarning{Version: 3, Step: "rebuild", Err: errors.New("boom")}
	assert.EqualError(t, w, "migration 3 (rebuild): boom")
	assert.True(t, errors.Is(w, w.Err))
}
