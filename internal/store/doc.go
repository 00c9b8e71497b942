// Package store provides the SQLite-backed Record Store for storyvault.
//
// Four record kinds live in one database file:
//   - Projects: the tenancy unit
//   - Entities: characters, items, factions and event-typed elements
//   - Tags: named, colored labels, unique per project
//   - Events: timeline occurrences with world time and chapter number
//
// Every Entity, Tag and Event carries a project_id foreign key with
// ON DELETE CASCADE, so deleting a project removes everything it owns.
// Tag references on entities and events are names stored in JSON text and
// are never rewritten when a tag changes.
//
// # Ordering
//
// Listings always end in an id tiebreaker:
//   - projects, entities: created_at DESC, id DESC
//   - tags: category, name, id
//   - events: chapter_number (NULL first), world_time (lexical), id
//
// # Migrations
//
// Schema changes are an ordered list of idempotent steps gated by
// PRAGMA user_version. A legacy database (no project_id, entities CHECK
// without 'event', tags unique by name alone) is upgraded in place and its
// rows land in project 1. A failing step is a MigrationWarning, not an
// Open failure.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce project cascades
package store
