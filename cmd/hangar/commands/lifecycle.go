package commands

import (
	"context"
)

// DisableCmd implements the 'disable' command.
type DisableCmd struct {
	Name string `arg:"" help:"Installed plugin to move to the backup folder"`
}

func (d *DisableCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	return FinishReport(app.Store.Disable(context.Background(), d.Name))
}

// DeleteCmd implements the 'delete' command.
type DeleteCmd struct {
	Name string `arg:"" help:"Installed plugin to delete"`
}

func (d *DeleteCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	return FinishReport(app.Store.Delete(context.Background(), d.Name))
}
