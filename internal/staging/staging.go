// Package staging manages the ephemeral directories used while fetching
// plugin sources (git clones, downloads) before they are installed.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avierra/hangar/internal/logfields"
)

// Manager hands out timestamped staging directories under a base dir.
type Manager struct {
	baseDir string
	tempDir string
}

// NewManager creates a staging manager. An empty baseDir falls back to the
// system temp directory.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates a fresh timestamped staging directory.
func (m *Manager) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	tempDir := filepath.Join(m.baseDir, fmt.Sprintf("hangar-%s", timestamp))

	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	m.tempDir = tempDir
	slog.Debug("Created staging directory", logfields.Path(tempDir))
	return nil
}

// GetPath returns the path to the staging directory.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Cleanup removes the staging directory.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}

	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup staging directory: %w", err)
	}

	slog.Debug("Cleaned up staging directory", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}

// CreateSubdir creates a subdirectory within the staging directory.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.tempDir == "" {
		return "", fmt.Errorf("staging directory not created")
	}

	subdir := filepath.Join(m.tempDir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	return subdir, nil
}
