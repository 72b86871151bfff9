package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	herrors "github.com/avierra/hangar/internal/errors"
	"github.com/avierra/hangar/internal/readme"
)

// ShowCmd implements the 'show' command. A .zip argument lists the archive's
// members; anything else is treated as an installed plugin.
type ShowCmd struct {
	Name   string `arg:"" help:"Installed plugin name or backup archive name"`
	Readme bool   `help:"Show the plugin's README summary instead of its files"`
}

func (s *ShowCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	if strings.EqualFold(filepath.Ext(s.Name), ".zip") {
		if s.Readme {
			return herrors.New(herrors.CategoryArchive, "--readme needs an installed plugin, not an archive")
		}
		entries, err := app.Store.ArchiveEntries(s.Name)
		if err != nil {
			return err
		}
		fmt.Printf("Contents of %s:\n", s.Name)
		for _, e := range entries {
			fmt.Printf("    %s\n", e)
		}
		return nil
	}

	if s.Readme {
		return s.showReadme(app)
	}

	tree, err := app.Store.Tree(s.Name)
	if err != nil {
		return err
	}
	for _, e := range tree {
		indent := strings.Repeat("    ", e.Depth)
		if e.Dir {
			fmt.Printf("%s%s\n", indent, color.New(color.FgCyan).Sprint(e.Name))
		} else {
			fmt.Printf("%s%s\n", indent, e.Name)
		}
	}
	return nil
}

func (s *ShowCmd) showReadme(app *App) error {
	pluginDir := filepath.Join(app.Store.PluginRoot(), s.Name)
	path, err := readme.Find(pluginDir)
	if err != nil {
		return err
	}
	summary, err := readme.Summary(path, 0)
	if err != nil {
		return err
	}

	fmt.Println(color.New(color.FgCyan, color.Bold).Sprint(s.Name))
	if summary == "" {
		fmt.Println("(README has no text paragraph)")
		return nil
	}
	fmt.Println(summary)
	return nil
}
