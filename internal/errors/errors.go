// Package errors provides the structured error type shared by the hangar
// core. Failures are classified into a small set of categories so callers
// can branch on the kind of failure without matching message strings.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category classifies an operation failure.
type Category string

const (
	// CategoryNotFound: the named plugin or backup entry does not exist.
	CategoryNotFound Category = "not_found"

	// CategoryConflict: the target already exists and the caller must decide
	// how to proceed (replace or keep).
	CategoryConflict Category = "conflict"

	// CategoryInvalidName: the supplied name cannot denote an entry under the
	// managed folders (empty, dot names, or carrying path separators).
	CategoryInvalidName Category = "invalid_name"

	// CategoryEmptySource: a backup was requested for a plugin directory with
	// zero total bytes; no archive is produced.
	CategoryEmptySource Category = "empty_source"

	// CategoryArchive: the zip archive is unreadable or malformed.
	CategoryArchive Category = "archive"

	// CategoryIO: generic filesystem failure (permissions, disk full, ...).
	CategoryIO Category = "io"

	// CategoryConfig: settings file missing or invalid.
	CategoryConfig Category = "config"

	// CategoryGit: fetching a plugin from a git repository failed.
	CategoryGit Category = "git"
)

// Error is a categorized error with an optional underlying cause.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a categorized error.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Wrap creates a categorized error around an existing one.
func Wrap(cause error, category Category, message string) *Error {
	return &Error{Category: category, Message: message, Cause: cause}
}

// IsCategory reports whether err (or anything it wraps) carries the category.
func IsCategory(err error, category Category) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// CategoryOf extracts the category from err, defaulting to CategoryIO for
// plain filesystem errors that were never classified.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return CategoryIO
}
