package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webcompile/cmd/webcompile/commands"
	"git.home.luguber.info/inful/webcompile/internal/run"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("webcompile"),
		kong.Description("Compile web assets (stylesheets, scripts, templates) with content-hashed filenames and git-aware idempotent writes."),
		kong.UsageOnError(),
		commands.Vars(),
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	if err == nil {
		return
	}

	// StatusError carries a deliberate exit code; its message was
	// already reported by the command.
	var status *run.StatusError
	if errors.As(err, &status) {
		os.Exit(status.Code)
	}

	slog.Error("Command failed", "error", err)
	os.Exit(run.ExitFailure)
}
