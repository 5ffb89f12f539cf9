package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/webcompile/internal/resolve"
	"git.home.luguber.info/inful/webcompile/internal/run"
)

// ScssCmd implements the positional-path 'scss' command: compile every
// stylesheet found under the given paths, with the partial heuristic
// pulling in the compilable neighbors of partial arguments. Outputs land
// next to their sources unless a --translate mapping applies.
type ScssCmd struct {
	Paths         []string `arg:"" optional:"" name:"path" help:"Stylesheet files or directories to compile"`
	Recurse       bool     `negatable:"" default:"true" help:"For directories, include files in sub-folders"`
	PartialDepth  int      `short:"d" default:"0" help:"For partial files (starting '_') include all stylesheets up 'n' parent folders"`
	StopOnError   bool     `short:"s" help:"Stop on the first compilation error"`
	Encoding      string   `short:"e" default:"utf-8" help:"Output text encoding"`
	OutputFormat  string   `short:"f" default:"compressed" enum:"nested,expanded,compact,compressed" help:"Stylesheet output style"`
	Sourcemap     bool     `short:"m" help:"Output source map"`
	HashFilenames bool     `help:"Add the content hash to filenames: <name>#<hash>.css (old hashes will be removed)"`
	Translate     []string `short:"t" help:"Source to output path translations, e.g. 'src/scss:dist/css' (repeatable)"`
	Precision     int      `short:"p" default:"5" help:"Precision for numbers"`
	TestRun       bool     `name:"test-run" help:"Do not delete/create any files"`
	ExitCode      int      `help:"Exit code when files changed" default:"${changed_exit_code}"`
	Compiler      string   `help:"Stylesheet compiler executable" default:""`
}

func (cmd *ScssCmd) Run(_ *Global, root *CLI) error {
	translations, err := resolve.ParseTranslations(cmd.Translate)
	if err != nil {
		return err
	}

	if !root.Quiet {
		fmt.Printf("Compile configuration\n"+
			"  recurse: %v\n  partial_depth: %d\n  output_format: %s\n"+
			"  hash_filenames: %v\n  sourcemap: %v\n  precision: %d\n",
			cmd.Recurse, cmd.PartialDepth, cmd.OutputFormat,
			cmd.HashFilenames, cmd.Sourcemap, cmd.Precision)
	}
	if cmd.TestRun && !root.Quiet {
		fmt.Println("Test run only!")
	}

	resolver := &resolve.Resolver{
		Ext:          ".scss",
		Recurse:      cmd.Recurse,
		PartialDepth: cmd.PartialDepth,
	}
	inputs, err := resolver.Resolve(cmd.Paths)
	if err != nil {
		return err
	}
	slog.Debug("Resolved input files", "count", len(inputs), "files", inputs)

	r := run.New(run.Options{
		Root:            ".",
		DryRun:          cmd.TestRun,
		StopOnError:     cmd.StopOnError,
		Quiet:           root.Quiet,
		ChangedExitCode: cmd.ExitCode,
	}, nil)

	err = r.StylesheetPaths(context.Background(), inputs, run.StylesheetOptions{
		Executable:   cmd.Compiler,
		Format:       cmd.OutputFormat,
		Precision:    cmd.Precision,
		Sourcemap:    cmd.Sourcemap,
		Encoding:     cmd.Encoding,
		HashNames:    cmd.HashFilenames,
		Translations: translations,
	})
	if err != nil && !errors.Is(err, run.ErrAborted) {
		return err
	}

	return report(r, root.Quiet)
}
