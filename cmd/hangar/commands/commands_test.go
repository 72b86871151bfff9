package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	herrors "github.com/avierra/hangar/internal/errors"
)

func writeSettings(t *testing.T, dir string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "settings.yaml")
	content := fmt.Sprintf("sim_folder: %s\ndata_dir: %s\n",
		filepath.Join(dir, "sim"), filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func writeSource(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestInitCmd_WritesSettingsFile(t *testing.T) {
	root := &CLI{Config: filepath.Join(t.TempDir(), "settings.yaml")}

	require.NoError(t, (&InitCmd{}).Run(&Global{}, root))
	require.FileExists(t, root.Config)

	err := (&InitCmd{}).Run(&Global{}, root)
	require.Error(t, err)
	require.True(t, herrors.IsCategory(err, herrors.CategoryConflict))

	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, root))
}

func TestInstallCmd_InstallsFolderSource(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeSettings(t, dir)}
	src := filepath.Join(dir, "AutoGate")
	writeSource(t, src, map[string]string{"a.txt": "v1"})

	// Keep policy so an unexpected conflict can never reach the prompt.
	cmd := &InstallCmd{Source: src, Keep: true}
	require.NoError(t, cmd.Run(&Global{}, root))

	require.FileExists(t, filepath.Join(dir, "sim", "Resources", "plugins", "AutoGate", "a.txt"))
}

func TestInstallCmd_FailedInstall_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeSettings(t, dir)}

	cmd := &InstallCmd{Source: filepath.Join(dir, "missing.zip"), Keep: true}
	err := cmd.Run(&Global{}, root)

	require.Error(t, err)
}

func TestBackupCmd_RequiresNameOrAll(t *testing.T) {
	require.Error(t, (&BackupCmd{}).Run(&Global{}, &CLI{Config: "unused"}))
	require.Error(t, (&BackupCmd{Name: "AutoGate", All: true}).Run(&Global{}, &CLI{Config: "unused"}))
}

func TestCommands_LifecycleFlow(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeSettings(t, dir)}
	global := &Global{}
	src := filepath.Join(dir, "AutoGate")
	writeSource(t, src, map[string]string{"a.txt": "good", "sub/b.txt": "more"})

	require.NoError(t, (&InstallCmd{Source: src, Keep: true}).Run(global, root))

	pluginDir := filepath.Join(dir, "sim", "Resources", "plugins", "AutoGate")
	backupDir := filepath.Join(dir, "sim", "Resources", "plugins", "backup")

	require.NoError(t, (&DisableCmd{Name: "AutoGate"}).Run(global, root))
	require.NoDirExists(t, pluginDir)
	require.DirExists(t, filepath.Join(backupDir, "AutoGate"))

	require.NoError(t, (&RestoreCmd{Entry: "AutoGate", Keep: true}).Run(global, root))
	require.FileExists(t, filepath.Join(pluginDir, "a.txt"))

	require.NoError(t, (&BackupCmd{Name: "AutoGate"}).Run(global, root))
	require.FileExists(t, filepath.Join(backupDir, "AutoGate.zip"))

	require.NoError(t, (&BackupsCmd{}).Run(global, root))
	require.NoError(t, (&ShowCmd{Name: "AutoGate"}).Run(global, root))
	require.NoError(t, (&ShowCmd{Name: "AutoGate.zip"}).Run(global, root))

	require.NoError(t, (&DeleteCmd{Name: "AutoGate"}).Run(global, root))
	require.NoDirExists(t, pluginDir)

	require.NoError(t, (&RecoverCmd{Entry: "AutoGate.zip"}).Run(global, root))
	content, err := os.ReadFile(filepath.Join(pluginDir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "good", string(content))

	require.NoError(t, (&DeleteBackupCmd{Entry: "AutoGate.zip"}).Run(global, root))
	require.NoFileExists(t, filepath.Join(backupDir, "AutoGate.zip"))
}

func TestLogCmd_ShowAndClear(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeSettings(t, dir)}
	src := filepath.Join(dir, "AutoGate")
	writeSource(t, src, map[string]string{"a.txt": "v1"})
	require.NoError(t, (&InstallCmd{Source: src, Keep: true}).Run(&Global{}, root))

	require.NoError(t, (&LogCmd{}).Run(&Global{}, root))
	require.NoError(t, (&LogCmd{Clear: true}).Run(&Global{}, root))

	app, err := OpenApp(root.Config)
	require.NoError(t, err)
	defer app.Close()
	lines, err := app.Log.History(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "Log cleared.")
}

func TestCLI_Grammar(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"list", []string{"list"}, false},
		{"install with replace", []string{"install", "thing.zip", "--replace"}, false},
		{"install replace and keep conflict", []string{"install", "thing.zip", "--replace", "--keep"}, true},
		{"install git branch", []string{"install", "https://example.com/p.git", "-b", "main"}, false},
		{"backup all", []string{"backup", "--all"}, false},
		{"show readme", []string{"show", "AutoGate", "--readme"}, false},
		{"delete-backup", []string{"delete-backup", "AutoGate.zip"}, false},
		{"restore", []string{"restore", "AutoGate", "--keep"}, false},
		{"unknown command", []string{"frobnicate"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Vars{"version": "test"})
			require.NoError(t, err)

			_, err = parser.Parse(tc.args)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
