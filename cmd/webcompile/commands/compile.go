package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webcompile/internal/config"
	"git.home.luguber.info/inful/webcompile/internal/gitindex"
	"git.home.luguber.info/inful/webcompile/internal/run"
	"git.home.luguber.info/inful/webcompile/internal/writer"
)

// CompileCmd implements the config-driven 'compile' command.
type CompileCmd struct {
	TestRun         bool `name:"test-run" help:"Do not delete/create any files"`
	ContinueOnError bool `help:"Do not stop on the first error"`
	NoGitAdd        bool `name:"no-git-add" help:"Do not add new files to the git index"`
	ExitCode        int  `help:"Exit code when files changed (overrides config)" default:"0"`
}

func (cmd *CompileCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	// CLI flags tighten the loaded configuration; they never loosen it.
	if cmd.TestRun {
		cfg.DryRun = true
	}
	if cmd.ContinueOnError {
		cfg.ContinueOnError = true
	}
	if cmd.NoGitAdd {
		off := false
		cfg.GitAdd = &off
	}
	exitCode := cfg.ExitCode
	if cmd.ExitCode != 0 {
		exitCode = cmd.ExitCode
	}

	if root.Verbose && !root.Quiet {
		dumpConfiguration(root.Config, cfg)
	}
	if cfg.DryRun && !root.Quiet {
		fmt.Println("Test run only!")
	}

	var stager writer.Stager
	if cfg.StageNewFiles() && !cfg.DryRun {
		ix, err := gitindex.Open(cfg.Root)
		if err != nil {
			return err
		}
		stager = ix
	}

	r := run.New(run.Options{
		Root:            cfg.Root,
		DryRun:          cfg.DryRun,
		StopOnError:     !cfg.ContinueOnError,
		Quiet:           root.Quiet,
		ChangedExitCode: exitCode,
	}, stager)

	ctx := context.Background()
	passes := []func() error{
		func() error { return r.Stylesheets(ctx, cfg.Sass) },
		func() error { return r.Scripts(ctx, cfg.JS) },
		func() error { return r.Templates(ctx, cfg.Template) },
	}
	for _, pass := range passes {
		if err := pass(); err != nil {
			if errors.Is(err, run.ErrAborted) {
				break
			}
			return err
		}
	}

	return report(r, root.Quiet)
}

// report turns the run outcome into the process exit status. The
// aggregate failure block goes to stderr in one piece so callers can
// diff successive failures mechanically.
func report(r *run.Run, quiet bool) error {
	if r.HasErrors() {
		fmt.Fprint(os.Stderr, "Compilations failed:\n"+run.FormatErrors(r.Errors()))
		return &run.StatusError{Code: run.ExitFailure, Message: "compilations failed"}
	}
	if !quiet {
		fmt.Println("Compilation succeeded!")
	}
	if status := r.Report(); status != nil {
		if !quiet {
			fmt.Println(status.Message)
		}
		return status
	}
	return nil
}

// dumpConfiguration prints the resolved run options at startup.
func dumpConfiguration(path string, cfg *config.Config) {
	dump := struct {
		Config string `yaml:"config"`
		Sass   struct {
			Format    string `yaml:"format"`
			Precision int    `yaml:"precision"`
			Sourcemap bool   `yaml:"sourcemap"`
			Encoding  string `yaml:"encoding"`
		} `yaml:"sass"`
		JS struct {
			Comments bool   `yaml:"comments"`
			Encoding string `yaml:"encoding"`
		} `yaml:"js"`
		Jinja struct {
			Encoding  string         `yaml:"encoding"`
			Variables map[string]any `yaml:"variables"`
		} `yaml:"jinja"`
		GitAdd          bool `yaml:"git_add"`
		TestRun         bool `yaml:"test_run"`
		ContinueOnError bool `yaml:"continue_on_error"`
		ExitCode        int  `yaml:"exit_code"`
	}{}
	dump.Config = path
	dump.Sass.Format = cfg.Sass.Format
	dump.Sass.Precision = cfg.Sass.Precision
	dump.Sass.Sourcemap = cfg.Sass.Sourcemap
	dump.Sass.Encoding = cfg.Sass.Encoding
	dump.JS.Comments = cfg.JS.Comments
	dump.JS.Encoding = cfg.JS.Encoding
	dump.Jinja.Encoding = cfg.Template.Encoding
	dump.Jinja.Variables = cfg.Template.Variables
	dump.GitAdd = cfg.StageNewFiles()
	dump.TestRun = cfg.DryRun
	dump.ContinueOnError = cfg.ContinueOnError
	dump.ExitCode = cfg.ExitCode

	out, err := yaml.Marshal(dump)
	if err != nil {
		return
	}
	fmt.Println("Compile configuration")
	fmt.Println(strings.TrimRight(string(out), "\n"))
}
