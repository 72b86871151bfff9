package errors

import "fmt"

// NotFoundf reports a missing plugin or backup entry.
func NotFoundf(format string, args ...any) *Error {
	return New(CategoryNotFound, fmt.Sprintf(format, args...))
}

// Conflictf reports a name collision the caller must resolve.
func Conflictf(format string, args ...any) *Error {
	return New(CategoryConflict, fmt.Sprintf(format, args...))
}

// InvalidNamef reports a name that cannot address an entry under the managed
// folders.
func InvalidNamef(format string, args ...any) *Error {
	return New(CategoryInvalidName, fmt.Sprintf(format, args...))
}

// EmptySourcef reports a backup request against a zero-byte source tree.
func EmptySourcef(format string, args ...any) *Error {
	return New(CategoryEmptySource, fmt.Sprintf(format, args...))
}

// Corrupt reports an unreadable or malformed archive.
func Corrupt(cause error, format string, args ...any) *Error {
	return Wrap(cause, CategoryArchive, fmt.Sprintf(format, args...))
}

// IO reports a filesystem failure.
func IO(cause error, format string, args ...any) *Error {
	return Wrap(cause, CategoryIO, fmt.Sprintf(format, args...))
}

// Config reports a settings problem.
func Config(cause error, format string, args ...any) *Error {
	return Wrap(cause, CategoryConfig, fmt.Sprintf(format, args...))
}

// Git reports a failed repository fetch.
func Git(cause error, format string, args ...any) *Error {
	return Wrap(cause, CategoryGit, fmt.Sprintf(format, args...))
}
