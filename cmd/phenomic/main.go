package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tahongtrung/phenomic/cmd/phenomic/commands"
	"github.com/tahongtrung/phenomic/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("phenomic"),
		kong.Description("Static site builder with a queryable content store"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, cli); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
