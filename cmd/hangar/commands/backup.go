package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	herrors "github.com/avierra/hangar/internal/errors"
)

// BackupCmd implements the 'backup' command.
type BackupCmd struct {
	Name string `arg:"" optional:"" help:"Plugin to back up"`
	All  bool   `help:"Back up every installed plugin"`
}

func (b *BackupCmd) Run(_ *Global, root *CLI) error {
	if b.All && b.Name != "" {
		return herrors.New(herrors.CategoryConfig, "pass a plugin name or --all, not both")
	}
	if !b.All && b.Name == "" {
		return herrors.New(herrors.CategoryConfig, "pass a plugin name or --all")
	}

	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if !b.All {
		return FinishReport(app.Store.Backup(ctx, b.Name))
	}

	reports := app.Store.BackupAll(ctx)
	var failed int
	for _, r := range reports {
		if r.Success {
			fmt.Println(color.New(color.FgGreen).Sprint(r.Message))
		} else {
			failed++
			fmt.Println(color.New(color.FgRed).Sprint(r.Message))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d backups failed", failed, len(reports))
	}
	fmt.Printf("Backed up %d plugins.\n", len(reports))
	return nil
}

// BackupsCmd implements the 'backups' command.
type BackupsCmd struct{}

func (b *BackupsCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.Store.Backups()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No backups.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-8s %s\n", e.Kind, e.Name)
	}
	return nil
}

// DeleteBackupCmd implements the 'delete-backup' command.
type DeleteBackupCmd struct {
	Entry string `arg:"" help:"Backup entry to delete (archive name or folder name)"`
}

func (d *DeleteBackupCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	return FinishReport(app.Store.DeleteBackup(context.Background(), d.Entry))
}
