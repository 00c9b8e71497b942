package facade

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/storyvault/internal/store"
)

// Commands understood by the bridge.
const (
	ProjectCreate = "project:create"
	ProjectGetAll = "project:getAll"
	ProjectGet    = "project:get"
	ProjectUpdate = "project:update"
	ProjectDelete = "project:delete"
	ProjectStats  = "project:stats"
	ProjectExport = "project:export"

	EntityCreate = "entity:create"
	EntityGetAll = "entity:getAll"
	EntityUpdate = "entity:update"
	EntityDelete = "entity:delete"
	EntitySearch = "entity:search"

	TagCreate  = "tag:create"
	TagGetAll  = "tag:getAll"
	TagUpdate  = "tag:update"
	TagDelete  = "tag:delete"
	TagPresets = "tag:presets"

	EventCreate   = "event:create"
	EventGetAll   = "event:getAll"
	EventUpdate   = "event:update"
	EventDelete   = "event:delete"
	EventSearch   = "event:search"
	EventTimeline = "event:timeline"
)

// Request is one command invocation. Args are positional, mirroring the
// argument list of the call a front end would make.
type Request struct {
	ID      string            `json:"id"`
	Command string            `json:"command"`
	Args    []json.RawMessage `json:"args"`
}

// Response answers exactly one Request. Exactly one of Result and Error is
// set; a nil Result encodes as JSON null.
type Response struct {
	ID      string          `json:"id"`
	Command string          `json:"command"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// OK reports whether the request succeeded.
func (r Response) OK() bool { return r.Error == nil }

// Code categorizes a failed request.
type Code string

const (
	CodeConstraint     Code = "CONSTRAINT"
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorage        Code = "STORAGE"
	CodeBadRequest     Code = "BAD_REQUEST"
	CodeUnknownCommand Code = "UNKNOWN_COMMAND"
	CodeClosed         Code = "CLOSED"
)

// Error is the failure half of a Response. It also implements error so
// Call can return it directly.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a bridge Error with the given code.
func IsCode(err error, code Code) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// badRequestError marks argument decoding failures.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// toError maps a handler error to its response form.
func toError(err error) *Error {
	var (
		fe *Error
		br *badRequestError
	)
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.As(err, &br):
		return &Error{Code: CodeBadRequest, Message: br.msg}
	case store.IsConstraint(err):
		return &Error{Code: CodeConstraint, Message: err.Error()}
	case store.IsNotFound(err):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	default:
		return &Error{Code: CodeStorage, Message: err.Error()}
	}
}
