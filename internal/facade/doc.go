// Package facade is the command boundary between a front end and the
// record store.
//
// A front end submits a Request naming a command such as "entity:create"
// with positional JSON arguments, and receives a Response on a channel.
// Requests enter a FIFO queue and are executed one at a time by Run on a
// single goroutine, which makes it the only writer to the store.
//
// Thread-safety model:
//   - Submit, Call: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// Handlers carry no business rules. They decode arguments, call the store
// and encode the result. Store errors keep their category in the response
// code (CONSTRAINT, NOT_FOUND, STORAGE).
//
// Once queued, a request always runs to completion. Cancelling the
// context passed to Run stops intake and drains what is already queued.
package facade
