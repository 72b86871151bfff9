package plugins

import (
	"time"

	"github.com/avierra/hangar/internal/archive"
)

// Operation names as they appear in reports, logs and metrics labels.
const (
	OpInstall      = "install"
	OpInstallGit   = "install_git"
	OpDisable      = "disable"
	OpDelete       = "delete"
	OpBackup       = "backup"
	OpRestore      = "restore"
	OpRecover      = "recover"
	OpDeleteBackup = "delete_backup"
)

// ConflictPolicy tells a mutating operation what to do when its target
// already exists. The zero value surfaces the conflict and changes nothing,
// leaving the decision to the caller.
type ConflictPolicy int

const (
	Ask ConflictPolicy = iota
	Replace
	Keep
)

func (p ConflictPolicy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Keep:
		return "keep"
	default:
		return "ask"
	}
}

// Report is the outcome of a single store operation. Operations never panic
// and never return bare errors across the API boundary; every outcome,
// including failure, is delivered as a report.
type Report struct {
	// ID uniquely identifies this operation run.
	ID string

	// Operation is one of the Op* constants.
	Operation string

	// Plugin is the plugin name the operation targeted.
	Plugin string

	// Entry is the backup entry name, for operations on the backup root.
	Entry string

	// Success is false for both failures and aborted conflicts.
	Success bool

	// Conflict marks an operation aborted because the target already exists.
	Conflict bool

	// Message is the human-readable outcome, also written to the operation log.
	Message string

	// Category classifies a failure (error taxonomy category name).
	Category string

	// Version is the build version after the operation.
	Version string

	// Duration is the wall time the operation took.
	Duration time.Duration

	// Files lists extracted entries for archive-restoring operations.
	Files []string

	// Pack carries compression details for backup operations.
	Pack *archive.PackResult
}
