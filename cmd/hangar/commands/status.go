package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (s *StatusCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	names, err := app.Store.List()
	if err != nil {
		return err
	}
	backups, err := app.Store.Backups()
	if err != nil {
		return err
	}
	logLines, err := app.Log.Count(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(color.New(color.FgCyan, color.Bold).Sprint("Hangar status"))
	fmt.Printf("Sim folder:     %s\n", app.Settings.SimFolder)
	fmt.Printf("Plugin folder:  %s\n", app.Store.PluginRoot())
	fmt.Printf("Backup folder:  %s\n", app.Store.BackupRoot())
	fmt.Printf("Installed:      %d\n", len(names))
	fmt.Printf("Backups:        %d\n", len(backups))
	fmt.Printf("Log lines:      %d\n", logLines)
	fmt.Printf("Build version:  %s\n", app.Rev.Current())
	return nil
}
