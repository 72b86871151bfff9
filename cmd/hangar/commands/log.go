package commands

import (
	"context"
	"fmt"
)

// LogCmd implements the 'log' command.
type LogCmd struct {
	Clear bool `help:"Clear the operation log"`
}

func (l *LogCmd) Run(_ *Global, root *CLI) error {
	app, err := OpenApp(root.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if l.Clear {
		if err := app.Log.Clear(ctx); err != nil {
			return err
		}
		if err := app.Log.Append(ctx, "Log cleared."); err != nil {
			return err
		}
		fmt.Println("Log cleared.")
		return nil
	}

	lines, err := app.Log.History(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("Log is empty.")
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
