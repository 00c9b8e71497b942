package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/storyvault/internal/record"
)

// timeLayout is the stored timestamp format. Fixed-width fractional seconds
// keep lexical order equal to chronological order.
const timeLayout = "2006-01-02 15:04:05.000000"

// legacyLayouts are accepted on read for rows written by SQLite's
// CURRENT_TIMESTAMP or by other tools.
var legacyLayouts = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// timestamp scans TEXT timestamps. The driver hands back time.Time for
// columns declared DATETIME (legacy tables) and string otherwise.
type timestamp struct {
	Time time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
	case time.Time:
		ts.Time = v.UTC()
	case string:
		t, err := parseTime(v)
		if err != nil {
			return err
		}
		ts.Time = t
	case []byte:
		t, err := parseTime(string(v))
		if err != nil {
			return err
		}
		ts.Time = t
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (record.Project, error) {
	var (
		p                        record.Project
		desc, world, protagonist sql.NullString
		created, updated         timestamp
	)
	if err := r.Scan(&p.ID, &p.Name, &desc, &world, &protagonist, &created, &updated); err != nil {
		return p, err
	}
	p.Description = desc.String
	p.WorldSetting = world.String
	p.ProtagonistInfo = protagonist.String
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return p, nil
}

func scanEntity(r rowScanner) (record.Entity, error) {
	var (
		e                  record.Entity
		typ                string
		desc, tags, fields sql.NullString
		created, updated   timestamp
	)
	if err := r.Scan(&e.ID, &e.ProjectID, &e.Name, &typ, &desc, &tags, &fields, &created, &updated); err != nil {
		return e, err
	}
	e.Type = record.EntityType(typ)
	e.Description = desc.String
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time

	var err error
	if e.Tags, err = record.UnmarshalNames(tags.String); err != nil {
		return e, fmt.Errorf("entity %d tags: %w", e.ID, err)
	}
	if e.CustomFields, err = record.UnmarshalFields(fields.String); err != nil {
		return e, fmt.Errorf("entity %d custom fields: %w", e.ID, err)
	}
	return e, nil
}

func scanTag(r rowScanner) (record.Tag, error) {
	var (
		t                     record.Tag
		color, category, desc sql.NullString
		created               timestamp
	)
	if err := r.Scan(&t.ID, &t.ProjectID, &t.Name, &color, &category, &desc, &created); err != nil {
		return t, err
	}
	t.Color = color.String
	if t.Color == "" {
		t.Color = record.DefaultTagColor
	}
	t.Category = category.String
	if t.Category == "" {
		t.Category = record.DefaultTagCategory
	}
	t.Description = desc.String
	t.CreatedAt = created.Time
	return t, nil
}

func scanEvent(r rowScanner) (record.Event, error) {
	var (
		ev                    record.Event
		desc, worldTime       sql.NullString
		chapter               sql.NullInt64
		related, tags, fields sql.NullString
		created, updated      timestamp
	)
	if err := r.Scan(&ev.ID, &ev.ProjectID, &ev.Name, &desc, &worldTime, &chapter,
		&related, &tags, &fields, &created, &updated); err != nil {
		return ev, err
	}
	ev.Description = desc.String
	ev.WorldTime = worldTime.String
	if chapter.Valid {
		n := chapter.Int64
		ev.ChapterNumber = &n
	}
	ev.CreatedAt = created.Time
	ev.UpdatedAt = updated.Time

	var err error
	if ev.RelatedEntities, err = record.UnmarshalIDs(related.String); err != nil {
		return ev, fmt.Errorf("event %d related entities: %w", ev.ID, err)
	}
	if ev.Tags, err = record.UnmarshalNames(tags.String); err != nil {
		return ev, fmt.Errorf("event %d tags: %w", ev.ID, err)
	}
	if ev.CustomFields, err = record.UnmarshalFields(fields.String); err != nil {
		return ev, fmt.Errorf("event %d custom fields: %w", ev.ID, err)
	}
	return ev, nil
}

// encodeCollections validates and serializes the JSON-text columns shared
// by entities and events.
func encodeCollections(kind string, tags []string, fields record.Fields) (string, string, error) {
	if err := fields.Validate(); err != nil {
		return "", "", &ConstraintError{Kind: kind, Field: "customFields", Message: err.Error(), Err: err}
	}
	tagsText, err := record.MarshalNames(record.NormalizeNames(tags))
	if err != nil {
		return "", "", fmt.Errorf("marshal %s tags: %w", kind, err)
	}
	fieldsText, err := record.MarshalFields(fields)
	if err != nil {
		return "", "", fmt.Errorf("marshal %s custom fields: %w", kind, err)
	}
	return tagsText, fieldsText, nil
}
