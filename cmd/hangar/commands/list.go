package commands

import (
	"fmt"
)

// ListCmd implements the 'list' command.
type ListCmd struct{}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	names, err := app.Store.List()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Println("No plugins installed.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
