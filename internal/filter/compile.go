package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ErrEmptySearch is returned when a Contains predicate has no text or no columns.
var ErrEmptySearch = errors.New("filter: empty search")

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error).
//
// Every query ends in ORDER BY with an id tiebreaker so results are stable.
func Compile(q Select) (string, []any, error) {
	if err := checkIdent(q.From); err != nil {
		return "", nil, err
	}
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("filter: select from %s has no columns", q.From)
	}

	cols := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		if err := checkIdent(c); err != nil {
			return "", nil, err
		}
		cols[i] = q.From + "." + c
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), q.From)

	var params []any
	if q.Where != nil {
		where, p, err := compilePredicate(q.From, q.Where)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = p
	}

	order, err := orderClause(q.From, q.OrderBy)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}

	return b.String(), params, nil
}

// CompileCount converts a Count to parameterized SQL.
func CompileCount(q Count) (string, []any, error) {
	if err := checkIdent(q.From); err != nil {
		return "", nil, err
	}
	sql := "SELECT COUNT(*) FROM " + q.From
	if q.Where == nil {
		return sql, nil, nil
	}
	where, params, err := compilePredicate(q.From, q.Where)
	if err != nil {
		return "", nil, err
	}
	return sql + " WHERE " + where, params, nil
}

func orderClause(table string, terms []Order) (string, error) {
	parts := make([]string, 0, len(terms)+1)
	hasID := false
	for _, o := range terms {
		if err := checkIdent(o.Column); err != nil {
			return "", err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s.%s %s", table, o.Column, dir))
		if o.Column == "id" {
			hasID = true
		}
	}
	if !hasID {
		parts = append(parts, table+".id ASC")
	}
	return strings.Join(parts, ", "), nil
}

func compilePredicate(table string, p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		if err := checkIdent(pred.Column); err != nil {
			return "", nil, err
		}
		if pred.Value == nil {
			return fmt.Sprintf("%s.%s IS NULL", table, pred.Column), nil, nil
		}
		return fmt.Sprintf("%s.%s = ?", table, pred.Column), []any{pred.Value}, nil

	case Contains:
		return compileContains(table, pred)

	case JSONHas:
		if err := checkIdent(pred.Column); err != nil {
			return "", nil, err
		}
		sql := fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s.%s) WHERE json_each.value = ?)", table, pred.Column)
		return sql, []any{pred.Value}, nil

	case NotBlank:
		if err := checkIdent(pred.Column); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("(%[1]s.%[2]s IS NOT NULL AND %[1]s.%[2]s != '')", table, pred.Column), nil, nil

	case NotNull:
		if err := checkIdent(pred.Column); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s.%s IS NOT NULL", table, pred.Column), nil, nil

	case Related:
		return compileRelated(table, pred)

	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compilePredicate(table, sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil

	case nil:
		return "1 = 1", nil, nil

	default:
		return "", nil, fmt.Errorf("filter: unsupported predicate type: %T", p)
	}
}

func compileContains(table string, c Contains) (string, []any, error) {
	if c.Text == "" || len(c.Columns) == 0 {
		return "", nil, ErrEmptySearch
	}
	needle := Fold(c.Text)
	parts := make([]string, len(c.Columns))
	params := make([]any, len(c.Columns))
	for i, col := range c.Columns {
		if err := checkIdent(col); err != nil {
			return "", nil, err
		}
		// instr avoids LIKE wildcard escaping entirely.
		parts[i] = fmt.Sprintf("instr(%s(CAST(COALESCE(%s.%s, '') AS TEXT)), ?) > 0", FoldFunc, table, col)
		params[i] = needle
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", params, nil
}

func compileRelated(table string, r Related) (string, []any, error) {
	for _, id := range []string{r.Column, r.Table, r.Match.Column} {
		if err := checkIdent(id); err != nil {
			return "", nil, err
		}
	}
	sql := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM json_each(%s.%s) AS rel JOIN %s ON %s.id = rel.value WHERE %s.%s = ?)",
		table, r.Column, r.Table, r.Table, r.Table, r.Match.Column,
	)
	return sql, []any{r.Match.Value}, nil
}

func checkIdent(s string) error {
	if !identPattern.MatchString(s) {
		return fmt.Errorf("filter: invalid identifier %q", s)
	}
	return nil
}
