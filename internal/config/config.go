// Package config loads and persists the hangar settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	herrors "github.com/avierra/hangar/internal/errors"
)

const (
	// DefaultFile is the settings filename looked up in the working directory.
	DefaultFile = "settings.yaml"

	defaultLogLimit    = 100
	defaultBackupEvery = "24h"
	defaultDebounce    = "2s"
)

// Settings represents the application configuration.
type Settings struct {
	// SimFolder is the X-Plane installation root. The plugin directory is
	// derived from it (Resources/plugins).
	SimFolder string `yaml:"sim_folder"`

	// XPlaneFolder is the legacy key for SimFolder, still accepted when
	// sim_folder is absent.
	XPlaneFolder string `yaml:"xplane_folder,omitempty"`

	// BackupFolder overrides the default backup location. Empty means
	// <plugin dir>/backup.
	BackupFolder string `yaml:"backup_folder,omitempty"`

	// DataDir holds hangar's own state (version counter, operation log).
	// Empty means <user config dir>/hangar.
	DataDir string `yaml:"data_dir,omitempty"`

	// LogLimit caps the number of retained operation log lines.
	LogLimit int `yaml:"log_limit,omitempty"`

	Daemon DaemonSettings `yaml:"daemon,omitempty"`
}

// DaemonSettings configures the optional background service. Durations are
// Go duration strings ("30m", "24h").
type DaemonSettings struct {
	BackupEvery string `yaml:"backup_every,omitempty"`
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`
	Debounce    string `yaml:"debounce,omitempty"`
}

// Load reads settings from the specified file.
func Load(path string) (*Settings, error) {
	// Load .env if present so ${VAR} references in the YAML resolve.
	loadEnvFile()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, herrors.Config(err, "settings file not found: %s (run 'hangar init')", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, herrors.Config(err, "reading settings file %s", path)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	var s Settings
	if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
		return nil, herrors.Config(err, "parsing settings file %s", path)
	}

	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) applyDefaults() {
	if s.SimFolder == "" && s.XPlaneFolder != "" {
		s.SimFolder = s.XPlaneFolder
	}
	if s.LogLimit <= 0 {
		s.LogLimit = defaultLogLimit
	}
	if s.Daemon.BackupEvery == "" {
		s.Daemon.BackupEvery = defaultBackupEvery
	}
	if s.Daemon.Debounce == "" {
		s.Daemon.Debounce = defaultDebounce
	}
	if s.Daemon.NATSSubject == "" {
		s.Daemon.NATSSubject = "hangar.operations"
	}
}

// Validate checks fields that would otherwise fail deep inside an operation.
func (s *Settings) Validate() error {
	if s.SimFolder == "" {
		return herrors.New(herrors.CategoryConfig, "sim_folder is required")
	}
	if _, err := time.ParseDuration(s.Daemon.BackupEvery); err != nil {
		return herrors.Config(err, "daemon.backup_every %q is not a duration", s.Daemon.BackupEvery)
	}
	if _, err := time.ParseDuration(s.Daemon.Debounce); err != nil {
		return herrors.Config(err, "daemon.debounce %q is not a duration", s.Daemon.Debounce)
	}
	return nil
}

// BackupInterval returns the parsed daemon.backup_every. Call Validate first;
// an unparseable value falls back to the default.
func (s *Settings) BackupInterval() time.Duration {
	d, err := time.ParseDuration(s.Daemon.BackupEvery)
	if err != nil {
		d, _ = time.ParseDuration(defaultBackupEvery)
	}
	return d
}

// DebounceWindow returns the parsed daemon.debounce.
func (s *Settings) DebounceWindow() time.Duration {
	d, err := time.ParseDuration(s.Daemon.Debounce)
	if err != nil {
		d, _ = time.ParseDuration(defaultDebounce)
	}
	return d
}

// ResolveDataDir returns the state directory, creating it if needed.
func (s *Settings) ResolveDataDir() (string, error) {
	dir := s.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", herrors.Config(err, "resolving user config dir")
		}
		dir = filepath.Join(base, "hangar")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", herrors.IO(err, "creating data dir %s", dir)
	}
	return dir, nil
}

// Init creates a new settings file with example content.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return herrors.Conflictf("settings file already exists: %s (use --force to overwrite)", path)
	}

	example := Settings{
		SimFolder:    "/opt/X-Plane 12",
		BackupFolder: "",
		LogLimit:     defaultLogLimit,
		Daemon: DaemonSettings{
			BackupEvery: defaultBackupEvery,
			MetricsAddr: ":9187",
			Debounce:    defaultDebounce,
		},
	}
	return example.Save(path)
}

// Save writes the settings atomically (temp file + rename).
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return herrors.Config(err, "marshaling settings")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return herrors.IO(err, "creating temp settings file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return herrors.IO(err, "writing temp settings file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return herrors.IO(err, "closing temp settings file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return herrors.IO(err, "replacing settings file %s", path)
	}
	return nil
}

// loadEnvFile loads environment variables from .env/.env.local files.
// It stops at the first file that loads; existing variables are not
// overwritten (godotenv semantics).
func loadEnvFile() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", p)
			return
		}
	}
}
