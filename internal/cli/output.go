package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The request ran and failed (constraint, not found, storage)
	ExitCommandError = 2 // Command error (bad arguments, unreadable config, database won't open)
)

// Error codes for failures that never reached the facade.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Config could not be loaded
	ErrCodeOpen        = "E003" // Database could not be opened
	ErrCodeBadInput    = "E004" // Malformed argument
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Kind    string // Error code shown to the user (ErrCode*), optional
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Kind: ErrCodeBadInput, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, kind, message string, err error) *ExitError {
	return &ExitError{Code: code, Kind: kind, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status    string    `json:"status"`               // "ok" or "error"
	Data      any       `json:"data,omitempty"`       // success payload
	Error     *CLIError `json:"error,omitempty"`      // error details
	RequestID string    `json:"request_id,omitempty"` // facade request correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // facade code or "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	return f.Result(data, "")
}

// Result outputs data with an optional request id. In text mode a string
// is printed as is and anything else as indented JSON.
func (f *OutputFormatter) Result(data any, requestID string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:    "ok",
			Data:      data,
			RequestID: requestID,
		})
	}

	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.Writer, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.Writer, v.String())
		return err
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Indent(&buf, v, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := f.Writer.Write(buf.Bytes())
		return err
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.Writer, string(out))
		return err
	}
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
