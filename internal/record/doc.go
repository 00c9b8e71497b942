// Package record defines the storyvault data model.
//
// All other internal packages import record; record imports nothing internal.
//
// Key constraints:
//   - Every Entity, Tag and Event carries an explicit ProjectID (no implicit default project)
//   - Custom fields hold scalar values only (String, Int, Float, Bool, Null)
//   - Tag references on Entity/Event are tag names, matched by string equality
//   - JSON tags use camelCase to match the presentation-layer payloads
package record
