package commands

import (
	"context"

	"github.com/avierra/hangar/internal/plugins"
)

// RestoreCmd implements the 'restore' command.
type RestoreCmd struct {
	Entry   string `arg:"" help:"Backup entry to restore (archive name or folder name)"`
	Replace bool   `xor:"policy" help:"Replace an already installed plugin without asking"`
	Keep    bool   `xor:"policy" help:"Keep an already installed plugin without asking"`
}

func (r *RestoreCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	policy := policyFromFlags(r.Replace, r.Keep)

	rep := app.Store.Restore(ctx, r.Entry, policy)
	if rep.Conflict && policy == plugins.Ask {
		replace, perr := confirmReplace(rep.Plugin)
		if perr != nil {
			return perr
		}
		if replace {
			rep = app.Store.Restore(ctx, r.Entry, plugins.Replace)
		}
	}
	return FinishReport(rep)
}

// RecoverCmd implements the 'recover' command.
type RecoverCmd struct {
	Entry string `arg:"" help:"Backup archive to extract over the installed plugin"`
}

func (r *RecoverCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	return FinishReport(app.Store.Recover(context.Background(), r.Entry))
}
