package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	KindParse      Kind = "parse"
	KindValidation Kind = "validation"
	KindIO         Kind = "io"
	KindConfig     Kind = "config"
)

// Sentinels matched by (*Error).Is on kind.
var (
	// ErrParse indicates a manifest could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a manifest entry failed syntax rules.
	ErrValidation = errors.New("validation error")

	// ErrIO indicates a filesystem operation failed.
	ErrIO = errors.New("io error")

	// ErrConfig indicates unusable configuration.
	ErrConfig = errors.New("configuration error")
)

// Error is the tagged error returned by the engine.
type Error struct {
	Kind Kind
	// Path is the file involved, if any.
	Path string
	// Field names the offending entry, e.g. "tools.my/tool".
	Field string
	// Message is the human-readable description.
	Message string
	// Example shows a valid form for validation failures.
	Example string
	// Err is the underlying cause.
	Err error
}

// Error formats the message with path, field, example and cause.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, "invalid %q: ", e.Field)
	}
	sb.WriteString(e.Message)
	if e.Example != "" {
		fmt.Fprintf(&sb, " (example: %s)", e.Example)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrParse:
		return e.Kind == KindParse
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrIO:
		return e.Kind == KindIO
	case ErrConfig:
		return e.Kind == KindConfig
	}
	return false
}

// Parse wraps a decode failure of the file at path.
func Parse(path string, err error) *Error {
	return &Error{Kind: KindParse, Path: path, Message: "failed to parse", Err: err}
}

// Malformed reports a structurally invalid entry in a decoded document.
func Malformed(field, message string) *Error {
	return &Error{Kind: KindParse, Field: field, Message: message}
}

// Validation reports a malformed entry.
func Validation(field, message, example string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, Example: example}
}

// IO wraps a filesystem failure on path.
func IO(path, op string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Message: op, Err: err}
}

// Config reports unusable configuration.
func Config(message string, err error) *Error {
	return &Error{Kind: KindConfig, Message: message, Err: err}
}

// WithPath returns err with Path set when err is itself an *Error without one.
// Other errors are returned unchanged.
func WithPath(err error, path string) error {
	if e, ok := err.(*Error); ok && e.Path == "" {
		cp := *e
		cp.Path = path
		return &cp
	}
	return err
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
