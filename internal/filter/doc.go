// Package filter describes record listings as a small predicate tree and
// compiles them to parameterized SQLite SQL.
//
// The store builds every list, search and timeline query from this IR, so
// project scoping, search text, type and tag narrowing all share one code
// path.
//
//	[EntityQuery / EventQuery] → [filter.Select] → [SQL + params]
//
// Rules the compiler enforces:
//   - Values are always bound as ? parameters, never interpolated.
//   - Identifiers (tables, columns) must match [a-z_][a-z0-9_]* and are
//     qualified with their table name.
//   - Every query ends in a deterministic ORDER BY with an id tiebreaker.
//
// Text search is case-insensitive across scripts: both the column and the
// search term go through Fold, and the column side is evaluated by the
// casefold SQL function that the store registers on each connection.
package filter
