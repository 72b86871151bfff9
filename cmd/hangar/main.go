package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/avierra/hangar/cmd/hangar/commands"
	"github.com/avierra/hangar/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("hangar"),
		kong.Description("X-Plane plugin manager: install, disable, back up, and restore plugins."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("hangar %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)

	global := &commands.Global{Logger: slog.Default()}
	ctx.FatalIfErrorf(ctx.Run(global, &cli))
}
