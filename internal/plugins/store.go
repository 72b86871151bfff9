// Package plugins implements the plugin lifecycle: install, disable, delete,
// backup, restore. Every mutating operation returns a Report and runs the
// same side-effect path: one operation log line, one version increment,
// metrics, and an optional published event. Failures follow the same path;
// partial filesystem state is reported, never rolled back.
package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avierra/hangar/internal/archive"
	"github.com/avierra/hangar/internal/config"
	herrors "github.com/avierra/hangar/internal/errors"
	"github.com/avierra/hangar/internal/events"
	"github.com/avierra/hangar/internal/gitsource"
	"github.com/avierra/hangar/internal/logfields"
	"github.com/avierra/hangar/internal/metrics"
	"github.com/avierra/hangar/internal/oplog"
	"github.com/avierra/hangar/internal/paths"
	"github.com/avierra/hangar/internal/revision"
	"github.com/avierra/hangar/internal/staging"
)

// EventPublisher publishes operation outcomes. Satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(event *events.Event) error
}

// Store manages the plugin directory of one X-Plane installation.
// It is a synchronous, single-caller API: long operations block.
type Store struct {
	pluginRoot string
	backupRoot string
	log        *oplog.Log
	rev        *revision.Counter
	recorder   metrics.Recorder
	publisher  EventPublisher
	audit      bool
}

// NewStore creates a store over the roots derived from the settings.
func NewStore(cfg *config.Settings, log *oplog.Log, rev *revision.Counter) *Store {
	pluginRoot := paths.PluginDir(cfg.SimFolder)
	return &Store{
		pluginRoot: pluginRoot,
		backupRoot: paths.BackupDir(cfg.BackupFolder, pluginRoot),
		log:        log,
		rev:        rev,
		recorder:   metrics.NoopRecorder{},
	}
}

// WithRecorder attaches a metrics recorder (fluent helper).
func (s *Store) WithRecorder(r metrics.Recorder) *Store {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithPublisher attaches an event publisher (fluent helper).
func (s *Store) WithPublisher(p EventPublisher) *Store {
	s.publisher = p
	return s
}

// WithAudit controls whether conflict-aborted operations still append a log
// line and advance the version, as the manager historically did. Off by
// default: an aborted operation leaves no trace beyond its report.
func (s *Store) WithAudit(enabled bool) *Store {
	s.audit = enabled
	return s
}

// PluginRoot returns the plugin directory.
func (s *Store) PluginRoot() string { return s.pluginRoot }

// BackupRoot returns the backup directory.
func (s *Store) BackupRoot() string { return s.backupRoot }

// Install installs a plugin from a .zip archive or a directory tree.
// The plugin name is the archive stem or the directory base name.
func (s *Store) Install(ctx context.Context, source string, policy ConflictPolicy) *Report {
	started := time.Now()

	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpInstall, filepath.Base(source), started,
				herrors.NotFoundf("install source %s not found", source))
		}
		return s.failure(ctx, OpInstall, filepath.Base(source), started,
			herrors.IO(err, "checking install source %s", source))
	}

	if info.IsDir() {
		name := filepath.Base(filepath.Clean(source))
		if err := validateName(name); err != nil {
			return s.failure(ctx, OpInstall, name, started, err)
		}
		return s.installTree(ctx, OpInstall, source, name, policy, started,
			fmt.Sprintf("Successfully installed plugin from folder: %s", name))
	}

	if !isZipName(source) {
		return s.failure(ctx, OpInstall, filepath.Base(source), started,
			herrors.New(herrors.CategoryArchive,
				fmt.Sprintf("install source %s is neither a folder nor a .zip archive", source)))
	}

	name := stem(filepath.Base(source))
	if err := validateName(name); err != nil {
		return s.failure(ctx, OpInstall, name, started, err)
	}

	target := filepath.Join(s.pluginRoot, name)
	if abort := s.applyPolicy(ctx, OpInstall, name, target, policy, started); abort != nil {
		return abort
	}

	res, err := archive.Unpack(source, target)
	if err != nil {
		return s.failure(ctx, OpInstall, name, started, herrors.Wrap(err, herrors.CategoryOf(err),
			fmt.Sprintf("installing plugin from zip %s (partial files may remain in %s)", source, target)))
	}

	r := s.success(ctx, OpInstall, name, started,
		fmt.Sprintf("Successfully installed plugin from zip: %s", name))
	r.Files = res.Extracted
	return r
}

// InstallFromGit shallow-clones a repository into a staging directory and
// installs the checked-out tree. The plugin name is derived from the URL.
func (s *Store) InstallFromGit(ctx context.Context, url, branch string, policy ConflictPolicy) *Report {
	started := time.Now()
	name := gitsource.NameFromURL(url)
	if err := validateName(name); err != nil {
		return s.failure(ctx, OpInstallGit, name, started, err)
	}

	stage := staging.NewManager("")
	if err := stage.Create(); err != nil {
		return s.failure(ctx, OpInstallGit, name, started, herrors.IO(err, "creating staging directory"))
	}
	defer func() {
		if err := stage.Cleanup(); err != nil {
			slog.Warn("Staging cleanup failed, directory left behind",
				logfields.Path(stage.GetPath()), logfields.Error(err))
		}
	}()

	checkout, err := stage.CreateSubdir("checkout")
	if err != nil {
		return s.failure(ctx, OpInstallGit, name, started, herrors.IO(err, "creating staging checkout directory"))
	}

	fetched, err := gitsource.NewFetcher(checkout).Fetch(ctx, url, branch)
	if err != nil {
		return s.failure(ctx, OpInstallGit, name, started, err)
	}

	return s.installTree(ctx, OpInstallGit, fetched, name, policy, started,
		fmt.Sprintf("Successfully installed plugin from git: %s (%s)", name, url))
}

// Disable moves a plugin out of the plugin directory into the backup root,
// keeping it available for Restore.
func (s *Store) Disable(ctx context.Context, name string) *Report {
	started := time.Now()
	if err := validateName(name); err != nil {
		return s.failure(ctx, OpDisable, name, started, err)
	}
	src := filepath.Join(s.pluginRoot, name)

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpDisable, name, started,
				herrors.NotFoundf("plugin %q is not installed", name))
		}
		return s.failure(ctx, OpDisable, name, started, herrors.IO(err, "checking %s", src))
	}

	if err := os.MkdirAll(s.backupRoot, 0o755); err != nil {
		return s.failure(ctx, OpDisable, name, started,
			herrors.IO(err, "creating backup folder %s", s.backupRoot))
	}

	dst := filepath.Join(s.backupRoot, name)
	if _, err := os.Stat(dst); err == nil {
		return s.conflictAbort(ctx, OpDisable, name, started,
			fmt.Sprintf("Backup entry %q already exists", name))
	}

	if err := moveEntry(src, dst); err != nil {
		return s.failure(ctx, OpDisable, name, started, herrors.IO(err, "moving %s to %s", src, dst))
	}

	r := s.success(ctx, OpDisable, name, started,
		fmt.Sprintf("Plugin %s disabled (moved to backup)", name))
	r.Entry = name
	return r
}

// Delete removes an installed plugin directory permanently.
func (s *Store) Delete(ctx context.Context, name string) *Report {
	started := time.Now()
	if err := validateName(name); err != nil {
		return s.failure(ctx, OpDelete, name, started, err)
	}
	path := filepath.Join(s.pluginRoot, name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpDelete, name, started,
				herrors.NotFoundf("plugin %q is not installed", name))
		}
		return s.failure(ctx, OpDelete, name, started, herrors.IO(err, "checking %s", path))
	}

	if err := os.RemoveAll(path); err != nil {
		return s.failure(ctx, OpDelete, name, started, herrors.IO(err, "deleting %s", path))
	}

	return s.success(ctx, OpDelete, name, started, fmt.Sprintf("Plugin %s deleted", name))
}

// Backup compresses a plugin into a new archive under the backup root.
// The archive name never collides with an existing entry.
func (s *Store) Backup(ctx context.Context, name string) *Report {
	started := time.Now()
	if err := validateName(name); err != nil {
		return s.failure(ctx, OpBackup, name, started, err)
	}
	src := filepath.Join(s.pluginRoot, name)

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpBackup, name, started,
				herrors.NotFoundf("plugin %q is not installed", name))
		}
		return s.failure(ctx, OpBackup, name, started, herrors.IO(err, "checking %s", src))
	}

	if err := os.MkdirAll(s.backupRoot, 0o755); err != nil {
		return s.failure(ctx, OpBackup, name, started,
			herrors.IO(err, "creating backup folder %s", s.backupRoot))
	}

	zipName, err := archive.UniqueName(s.backupRoot, name)
	if err != nil {
		return s.failure(ctx, OpBackup, name, started, err)
	}

	res, err := archive.Pack(src, filepath.Join(s.backupRoot, zipName))
	if err != nil {
		return s.failure(ctx, OpBackup, name, started, err)
	}

	s.recorder.ObserveBackupBytes(res.CompressedBytes, res.UncompressedBytes)
	slog.Info("Archive created",
		logfields.Plugin(name), logfields.Archive(zipName),
		logfields.Bytes(res.CompressedBytes), logfields.Ratio(res.Ratio))

	r := s.success(ctx, OpBackup, name, started,
		fmt.Sprintf("Plugin %s backed up successfully to %s (%.2f%% compression)", name, res.Archive, res.Ratio))
	r.Entry = zipName
	r.Pack = res
	return r
}

// BackupAll backs up every installed plugin, one report each. Used by the
// daemon's scheduled backups. The backup folder itself is skipped when it
// lives under the plugin root.
func (s *Store) BackupAll(ctx context.Context) []*Report {
	names, err := s.List()
	if err != nil {
		return []*Report{s.failure(ctx, OpBackup, "", time.Now(), err)}
	}

	reports := make([]*Report, 0, len(names))
	for _, name := range names {
		if filepath.Join(s.pluginRoot, name) == s.backupRoot {
			continue
		}
		reports = append(reports, s.Backup(ctx, name))
	}
	return reports
}

// Restore brings a backup entry back into the plugin directory. Archive
// entries are extracted (the archive stays in the backup root); folder
// entries are moved back. An existing target is resolved via policy.
func (s *Store) Restore(ctx context.Context, entry string, policy ConflictPolicy) *Report {
	started := time.Now()
	if err := validateName(entry); err != nil {
		return s.failure(ctx, OpRestore, entry, started, err)
	}
	entryPath := filepath.Join(s.backupRoot, entry)

	info, err := os.Stat(entryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpRestore, entry, started,
				herrors.NotFoundf("backup entry %q not found", entry))
		}
		return s.failure(ctx, OpRestore, entry, started, herrors.IO(err, "checking %s", entryPath))
	}

	if !info.IsDir() {
		if !isZipName(entry) {
			return s.failure(ctx, OpRestore, entry, started,
				herrors.New(herrors.CategoryArchive,
					fmt.Sprintf("backup entry %q is not a .zip archive", entry)))
		}

		name := stem(entry)
		if err := validateName(name); err != nil {
			return s.failure(ctx, OpRestore, entry, started, err)
		}
		target := filepath.Join(s.pluginRoot, name)
		if abort := s.applyPolicy(ctx, OpRestore, name, target, policy, started); abort != nil {
			abort.Entry = entry
			return abort
		}

		res, uerr := archive.Unpack(entryPath, target)
		if uerr != nil {
			return s.failure(ctx, OpRestore, name, started, herrors.Wrap(uerr, herrors.CategoryOf(uerr),
				fmt.Sprintf("restoring %s (partially extracted files may remain in %s)", entry, target)))
		}

		r := s.success(ctx, OpRestore, name, started,
			fmt.Sprintf("Plugin %s restored successfully from zip", name))
		r.Entry = entry
		r.Files = res.Extracted
		return r
	}

	target := filepath.Join(s.pluginRoot, entry)
	if abort := s.applyPolicy(ctx, OpRestore, entry, target, policy, started); abort != nil {
		abort.Entry = entry
		return abort
	}

	if err := moveEntry(entryPath, target); err != nil {
		return s.failure(ctx, OpRestore, entry, started,
			herrors.IO(err, "moving %s back to %s", entryPath, target))
	}

	r := s.success(ctx, OpRestore, entry, started,
		fmt.Sprintf("Plugin %s restored successfully", entry))
	r.Entry = entry
	return r
}

// Recover extracts an archive entry over whatever is installed: an existing
// plugin directory is removed first, with a warning. Unlike Restore it never
// asks; recovery is the explicit destroy-and-rebuild path.
func (s *Store) Recover(ctx context.Context, entry string) *Report {
	started := time.Now()
	if err := validateName(entry); err != nil {
		return s.failure(ctx, OpRecover, entry, started, err)
	}

	if !isZipName(entry) {
		return s.failure(ctx, OpRecover, entry, started,
			herrors.New(herrors.CategoryArchive,
				fmt.Sprintf("recover needs a .zip entry, %q is a folder backup", entry)))
	}

	entryPath := filepath.Join(s.backupRoot, entry)
	if _, err := os.Stat(entryPath); err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpRecover, entry, started,
				herrors.NotFoundf("backup entry %q not found", entry))
		}
		return s.failure(ctx, OpRecover, entry, started, herrors.IO(err, "checking %s", entryPath))
	}

	name := stem(entry)
	if err := validateName(name); err != nil {
		return s.failure(ctx, OpRecover, entry, started, err)
	}
	target := filepath.Join(s.pluginRoot, name)
	if _, err := os.Stat(target); err == nil {
		slog.Warn("Plugin directory already exists, overwriting",
			logfields.Plugin(name), logfields.Backup(entry), logfields.Path(target))
		if err := os.RemoveAll(target); err != nil {
			return s.failure(ctx, OpRecover, name, started,
				herrors.IO(err, "removing existing %s", target))
		}
	}

	res, err := archive.Unpack(entryPath, target)
	if err != nil {
		return s.failure(ctx, OpRecover, name, started, herrors.Wrap(err, herrors.CategoryOf(err),
			fmt.Sprintf("recovering %s (partially extracted files may remain in %s)", entry, target)))
	}

	r := s.success(ctx, OpRecover, name, started,
		fmt.Sprintf("Plugin %s recovered successfully from %s", name, entry))
	r.Entry = entry
	r.Files = res.Extracted
	return r
}

// DeleteBackup removes a backup entry, archive or folder.
func (s *Store) DeleteBackup(ctx context.Context, entry string) *Report {
	started := time.Now()
	if err := validateName(entry); err != nil {
		return s.failure(ctx, OpDeleteBackup, entry, started, err)
	}
	entryPath := filepath.Join(s.backupRoot, entry)

	info, err := os.Stat(entryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s.failure(ctx, OpDeleteBackup, entry, started,
				herrors.NotFoundf("backup entry %q not found", entry))
		}
		return s.failure(ctx, OpDeleteBackup, entry, started, herrors.IO(err, "checking %s", entryPath))
	}

	if info.IsDir() {
		err = os.RemoveAll(entryPath)
	} else {
		err = os.Remove(entryPath)
	}
	if err != nil {
		return s.failure(ctx, OpDeleteBackup, entry, started,
			herrors.IO(err, "deleting backup %s", entryPath))
	}

	name := entry
	if isZipName(entry) {
		name = stem(entry)
	}
	r := s.success(ctx, OpDeleteBackup, name, started,
		fmt.Sprintf("Backup %s deleted successfully", entry))
	r.Entry = entry
	return r
}

// installTree copies a plugin tree into the plugin root under name.
func (s *Store) installTree(ctx context.Context, op, srcDir, name string, policy ConflictPolicy, started time.Time, successMsg string) *Report {
	target := filepath.Join(s.pluginRoot, name)
	if abort := s.applyPolicy(ctx, op, name, target, policy, started); abort != nil {
		return abort
	}

	if err := copyDir(srcDir, target); err != nil {
		return s.failure(ctx, op, name, started,
			herrors.IO(err, "copying %s to %s (partial files may remain)", srcDir, target))
	}

	return s.success(ctx, op, name, started, successMsg)
}

// applyPolicy resolves an existing target per the conflict policy. A non-nil
// report means the operation stops here.
func (s *Store) applyPolicy(ctx context.Context, op, name, target string, policy ConflictPolicy, started time.Time) *Report {
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return s.failure(ctx, op, name, started, herrors.IO(err, "checking %s", target))
	}

	switch policy {
	case Replace:
		if err := os.RemoveAll(target); err != nil {
			return s.failure(ctx, op, name, started,
				herrors.IO(err, "removing existing plugin %s", target))
		}
		return nil
	case Keep:
		return s.conflictAbort(ctx, op, name, started,
			fmt.Sprintf("Plugin %q already exists, kept existing installation", name))
	default:
		return s.conflictAbort(ctx, op, name, started,
			fmt.Sprintf("Plugin %q already exists", name))
	}
}

func (s *Store) success(ctx context.Context, op, plugin string, started time.Time, message string) *Report {
	r := &Report{
		ID:        uuid.NewString(),
		Operation: op,
		Plugin:    plugin,
		Success:   true,
		Message:   message,
		Duration:  time.Since(started),
	}
	slog.Info("Operation completed",
		logfields.Operation(op), logfields.Plugin(plugin),
		logfields.DurationMS(float64(r.Duration.Milliseconds())))
	return s.emit(ctx, r, true)
}

func (s *Store) failure(ctx context.Context, op, plugin string, started time.Time, err error) *Report {
	r := &Report{
		ID:        uuid.NewString(),
		Operation: op,
		Plugin:    plugin,
		Message:   fmt.Sprintf("Error during %s: %v", op, err),
		Category:  string(herrors.CategoryOf(err)),
		Duration:  time.Since(started),
	}
	slog.Error("Operation failed",
		logfields.Operation(op), logfields.Plugin(plugin), logfields.Error(err))
	return s.emit(ctx, r, true)
}

// conflictAbort reports an operation stopped by an existing target. By
// default it skips the log append and version increment; WithAudit(true)
// restores the historical behavior of counting aborted operations.
func (s *Store) conflictAbort(ctx context.Context, op, plugin string, started time.Time, message string) *Report {
	r := &Report{
		ID:        uuid.NewString(),
		Operation: op,
		Plugin:    plugin,
		Conflict:  true,
		Message:   message,
		Category:  string(herrors.CategoryConflict),
		Duration:  time.Since(started),
	}
	slog.Warn("Operation aborted on conflict",
		logfields.Operation(op), logfields.Plugin(plugin))
	return s.emit(ctx, r, s.audit)
}

// emit is the single side-effect path every operation report passes through.
func (s *Store) emit(ctx context.Context, r *Report, record bool) *Report {
	if record {
		if err := s.log.Append(ctx, r.Message); err != nil {
			slog.Warn("Operation log append failed", logfields.Error(err))
		}
		r.Version = s.rev.Increment()
		slog.Debug("Build version advanced", logfields.Version(r.Version))
	} else {
		r.Version = s.rev.Current()
	}

	s.recorder.ObserveOperationDuration(r.Operation, r.Duration)
	s.recorder.IncOperationResult(r.Operation, resultLabel(r))

	if s.publisher != nil {
		ev := &events.Event{
			ID:        r.ID,
			Operation: r.Operation,
			Plugin:    r.Plugin,
			Success:   r.Success,
			Message:   r.Message,
			Version:   r.Version,
		}
		if err := s.publisher.Publish(ev); err != nil {
			slog.Warn("Event publish failed",
				logfields.Operation(r.Operation), logfields.Error(err))
		}
	}

	return r
}

func resultLabel(r *Report) metrics.ResultLabel {
	switch {
	case r.Success:
		return metrics.ResultSuccess
	case r.Conflict:
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}

// validateName rejects names that cannot denote a single entry directly
// under a managed root: empty and dot names, absolute paths, and anything
// carrying a path separator. Every name a caller supplies passes through
// here before it is joined against the plugin or backup folder.
func validateName(name string) error {
	switch name {
	case "", ".", "..":
		return herrors.InvalidNamef("%q cannot name a plugin or backup entry", name)
	}
	if name != filepath.Base(name) {
		return herrors.InvalidNamef("%q must be a plain name without path separators", name)
	}
	return nil
}

func isZipName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
