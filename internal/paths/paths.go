// Package paths derives the filesystem locations the plugin manager works
// with. Pure functions, no I/O.
package paths

import "path/filepath"

// PluginDir returns the plugin root inside an X-Plane installation.
func PluginDir(simRoot string) string {
	return filepath.Join(simRoot, "Resources", "plugins")
}

// BackupDir returns the backup root. An explicitly configured folder wins;
// otherwise backups live in a "backup" directory under the plugin root.
func BackupDir(configured, pluginDir string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(pluginDir, "backup")
}
