package commands

import (
	"context"

	"github.com/avierra/hangar/internal/plugins"
)

// InstallCmd implements the 'install' command.
type InstallCmd struct {
	Source  string `arg:"" help:"Zip archive, plugin folder, or git URL"`
	Branch  string `short:"b" help:"Branch to clone for git sources (default branch if empty)"`
	Git     bool   `help:"Treat the source as a git repository even if it looks like a path"`
	Replace bool   `xor:"policy" help:"Replace an already installed plugin without asking"`
	Keep    bool   `xor:"policy" help:"Keep an already installed plugin without asking"`
}

func (i *InstallCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	run := func(policy plugins.ConflictPolicy) *plugins.Report {
		if i.Git || looksLikeGitURL(i.Source) {
			return app.Store.InstallFromGit(ctx, i.Source, i.Branch, policy)
		}
		return app.Store.Install(ctx, i.Source, policy)
	}

	policy := policyFromFlags(i.Replace, i.Keep)
	r := run(policy)
	if r.Conflict && policy == plugins.Ask {
		replace, perr := confirmReplace(r.Plugin)
		if perr != nil {
			return perr
		}
		if replace {
			r = run(plugins.Replace)
		}
	}
	return FinishReport(r)
}
