package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webcompile/internal/run"
	"git.home.luguber.info/inful/webcompile/internal/version"
)

// Vars supplies the interpolation variables the CLI grammar needs.
func Vars() kong.Vars {
	return kong.Vars{
		"version":           version.String(),
		"changed_exit_code": strconv.Itoa(run.ExitChangedDefault),
	}
}

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (json, toml, yml or yaml)" default:"web-compile-config.yml"`
	Quiet   bool             `short:"q" help:"Remove progress output"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Compile CompileCmd `cmd:"" help:"Compile the asset mappings from the configuration file"`
	Scss    ScssCmd    `cmd:"" help:"Compile stylesheets given as path arguments"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if c.Quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
