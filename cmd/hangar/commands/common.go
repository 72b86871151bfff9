// Package commands defines the hangar CLI surface.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"github.com/avierra/hangar/internal/config"
	"github.com/avierra/hangar/internal/logfields"
	"github.com/avierra/hangar/internal/oplog"
	"github.com/avierra/hangar/internal/plugins"
	"github.com/avierra/hangar/internal/revision"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Settings file path" default:"settings.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init         InitCmd         `cmd:"" help:"Create a settings file"`
	Status       StatusCmd       `cmd:"" help:"Show folders, counts, and the build version"`
	List         ListCmd         `cmd:"" help:"List installed plugins"`
	Install      InstallCmd      `cmd:"" help:"Install a plugin from a zip archive, a folder, or a git URL"`
	Disable      DisableCmd      `cmd:"" help:"Move a plugin to the backup folder"`
	Delete       DeleteCmd       `cmd:"" help:"Delete an installed plugin"`
	Backup       BackupCmd       `cmd:"" help:"Back up plugins to zip archives"`
	Backups      BackupsCmd      `cmd:"" help:"List backup entries"`
	Restore      RestoreCmd      `cmd:"" help:"Restore a plugin from a backup entry"`
	Recover      RecoverCmd      `cmd:"" name:"recover" help:"Rebuild a plugin from a backup archive, replacing what is installed"`
	DeleteBackup DeleteBackupCmd `cmd:"" name:"delete-backup" help:"Delete a backup entry"`
	Show         ShowCmd         `cmd:"" help:"Show a plugin's folder tree or an archive's contents"`
	Log          LogCmd          `cmd:"" help:"Show the operation log"`
	Daemon       DaemonCmd       `cmd:"" help:"Run the background service (watcher, scheduled backups, metrics)"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// App bundles the long-lived pieces most commands need.
type App struct {
	Settings *config.Settings
	Log      *oplog.Log
	Rev      *revision.Counter
	Store    *plugins.Store
}

// OpenApp loads settings and opens the operation log and version counter.
func OpenApp(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	log, err := oplog.Open(filepath.Join(dataDir, oplog.FileName), cfg.LogLimit)
	if err != nil {
		return nil, err
	}

	rev, err := revision.New(dataDir)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	return &App{
		Settings: cfg,
		Log:      log,
		Rev:      rev,
		Store:    plugins.NewStore(cfg, log, rev),
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if err := a.Log.Close(); err != nil {
		slog.Warn("Closing operation log failed", logfields.Error(err))
	}
}

// FinishReport prints the operation outcome and maps real failures to a
// process error. Conflict aborts are an answered question, not a failure.
func FinishReport(r *plugins.Report) error {
	switch {
	case r.Success:
		fmt.Println(color.New(color.FgGreen).Sprint(r.Message))
		return nil
	case r.Conflict:
		fmt.Println(color.New(color.FgYellow).Sprint(r.Message))
		return nil
	default:
		return fmt.Errorf("%s", r.Message)
	}
}

// confirmReplace asks whether an existing plugin should be replaced.
// Ctrl+C counts as "No".
func confirmReplace(name string) (bool, error) {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Plugin %q already exists. Replace it?", name),
		Items: []string{"Yes", "No"},
	}
	_, answer, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			return false, nil
		}
		return false, err
	}
	return answer == "Yes", nil
}

// policyFromFlags maps the --replace/--keep pair to a conflict policy.
func policyFromFlags(replace, keep bool) plugins.ConflictPolicy {
	switch {
	case replace:
		return plugins.Replace
	case keep:
		return plugins.Keep
	default:
		return plugins.Ask
	}
}

// looksLikeGitURL reports whether source is a remote repository rather than
// a local path.
func looksLikeGitURL(source string) bool {
	return strings.Contains(source, "://") || strings.HasPrefix(source, "git@")
}
