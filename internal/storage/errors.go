// Package storage holds the record layouts, schema constants and error
// taxonomy shared by both engine backends.
package storage

import (
	"errors"
	"fmt"
)

// ErrKind classifies an error the way the core reports it (see spec §7).
// CLI callers serialise this to JSON as {"error": kind, "detail": ...}.
type ErrKind string

const (
	KindInvalidInput          ErrKind = "InvalidInput"
	KindNotFound              ErrKind = "NotFound"
	KindFormatMismatch        ErrKind = "FormatMismatch"
	KindUnsupportedVersion    ErrKind = "UnsupportedVersion"
	KindCorruptHeader         ErrKind = "CorruptHeader"
	KindCorruptRecord         ErrKind = "CorruptRecord"
	KindInvalidReference      ErrKind = "InvalidReference"
	KindInconsistentAdjacency ErrKind = "InconsistentAdjacency"
	KindIoFailure             ErrKind = "IoFailure"
	KindQueryFailure          ErrKind = "QueryFailure"
	KindSafetyViolation       ErrKind = "SafetyViolation"
	KindDslParseError         ErrKind = "DslParseError"
	KindMigrationError        ErrKind = "MigrationError"
)

// Error is the single error type returned across the core. Kind drives CLI
// JSON serialisation; Detail carries the structured fields named in spec §7
// (id, max, node, direction, declared, observed, reason, ...).
type Error struct {
	Kind    ErrKind
	Message string
	Detail  map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind.
func New(kind ErrKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind ErrKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetail attaches structured detail fields and returns the receiver.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Detail == nil {
		e.Detail = make(map[string]interface{})
	}
	e.Detail[key] = value
	return e
}

// KindOf extracts the ErrKind from err, returning "" if err is not an *Error.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Sentinel convenience constructors used throughout the core.

func ErrNotFound(id int64) *Error {
	return New(KindNotFound, "node not found").WithDetail("id", id)
}

func ErrInvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

func ErrInvalidReference(id, max int64) *Error {
	return New(KindInvalidReference, "id outside current range").WithDetail("id", id).WithDetail("max", max)
}

func ErrCorruptRecord(id int64, reason string) *Error {
	return New(KindCorruptRecord, reason).WithDetail("id", id).WithDetail("reason", reason)
}

func ErrInconsistentAdjacency(node int64, direction string, declared, observed int) *Error {
	return New(KindInconsistentAdjacency, "adjacency metadata does not match physical slot count").
		WithDetail("node", node).
		WithDetail("direction", direction).
		WithDetail("declared", declared).
		WithDetail("observed", observed)
}
