package commands

import (
	"fmt"

	"github.com/avierra/hangar/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing settings file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	fmt.Printf("Writing settings to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Println("Settings created. Set sim_folder to your X-Plane installation before running other commands.")
	return nil
}
