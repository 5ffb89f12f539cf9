// Package run drives one compile pass: it walks the configured
// mappings in a stable order, dispatches each input to its compiler,
// reconciles hash-named outputs, writes artifacts idempotently and
// aggregates per-input failures according to the stop-on-error policy.
//
// All mutable run state (the input->output file map, the ordered error
// collection, the changed flag) lives on the Run value threaded through
// every call; there is no package-level state.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/webcompile/internal/compile"
	"git.home.luguber.info/inful/webcompile/internal/hashname"
	"git.home.luguber.info/inful/webcompile/internal/textenc"
	"git.home.luguber.info/inful/webcompile/internal/wcerrors"
	"git.home.luguber.info/inful/webcompile/internal/writer"
)

// ErrAborted is returned by a pass when stop-on-error is set and an
// input failed. The errors collected so far are on the Run.
var ErrAborted = errors.New("aborted after compilation error")

// Options configure one run.
type Options struct {
	// Root anchors every relative mapping path.
	Root string
	// DryRun disables all filesystem mutation and staging while still
	// reporting what would change.
	DryRun bool
	// StopOnError aborts at the first per-input failure instead of
	// collecting failures for an aggregate report.
	StopOnError bool
	// Quiet suppresses per-file progress output.
	Quiet bool
	// ChangedExitCode is the process exit status when outputs changed
	// but nothing failed.
	ChangedExitCode int
}

// Mapping is one input->output unit of work.
type Mapping struct {
	Input          string // relative to Options.Root
	OutputTemplate string // relative to Options.Root, may contain the hash token
	Encoding       string
	Sourcemap      bool
	Compiler       compile.Compiler
}

// Run accumulates the state of one invocation.
type Run struct {
	opts    Options
	writer  *writer.Writer
	fileMap map[string]string // slash-relative input -> final output
	order   []string
	errs    map[string]string
	changed bool
}

// New creates a run. stager may be nil when staging is disabled.
func New(opts Options, stager writer.Stager) *Run {
	return &Run{
		opts:    opts,
		writer:  &writer.Writer{DryRun: opts.DryRun, Stager: stager},
		fileMap: make(map[string]string),
		errs:    make(map[string]string),
	}
}

// Changed reports whether any output was created, rewritten or removed.
func (r *Run) Changed() bool { return r.changed }

// CollectedError is one per-input failure.
type CollectedError struct {
	Path    string
	Message string
}

// Errors returns the collected failures in processing order. A repeated
// failure for the same input keeps its original position.
func (r *Run) Errors() []CollectedError {
	out := make([]CollectedError, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, CollectedError{Path: p, Message: r.errs[p]})
	}
	return out
}

// HasErrors reports whether any input failed.
func (r *Run) HasErrors() bool { return len(r.errs) > 0 }

// record stores a per-input failure and reports whether the run must
// abort. Duplicate paths overwrite the message, not the position.
func (r *Run) record(inputPath string, failure *wcerrors.Error) bool {
	if _, ok := r.errs[inputPath]; !ok {
		r.order = append(r.order, inputPath)
	}
	r.errs[inputPath] = failure.Report()
	return r.opts.StopOnError
}

// anchor resolves p against the run root. Absolute paths pass through
// untouched: positional invocations hand the run absolute inputs and
// output templates verbatim.
func (r *Run) anchor(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.opts.Root, p)
}

// All processes the given mappings in order. It returns ErrAborted when
// the stop-on-error policy fired, or a fatal error when the environment
// (filesystem, git index) failed; per-input failures are collected on
// the Run instead.
func (r *Run) All(ctx context.Context, mappings []Mapping) error {
	for _, m := range mappings {
		if err := r.process(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) process(ctx context.Context, m Mapping) error {
	absIn := r.anchor(m.Input)

	if _, err := os.Stat(absIn); err != nil {
		if r.record(m.Input, wcerrors.InputNotFound()) {
			return ErrAborted
		}
		return nil
	}

	raw, err := os.ReadFile(absIn)
	if err != nil {
		if r.record(m.Input, wcerrors.Wrap(err, wcerrors.CategoryFilesystem, "")) {
			return ErrAborted
		}
		return nil
	}
	text, err := textenc.Decode(raw, m.Encoding)
	if err != nil {
		if r.record(m.Input, wcerrors.Wrap(err, wcerrors.CategoryInput, "")) {
			return ErrAborted
		}
		return nil
	}

	outPath := r.anchor(m.OutputTemplate)
	art, err := compile.Dispatch(ctx, m.Compiler, compile.Source{
		Path:      absIn,
		Text:      text,
		OutputDir: filepath.Dir(outPath),
	})
	if err != nil {
		if r.record(m.Input, wcerrors.CompileFailed(err)) {
			return ErrAborted
		}
		return nil
	}

	if hashname.HasToken(m.OutputTemplate) {
		res, err := hashname.Apply(outPath, art.Text, m.Encoding, r.opts.DryRun)
		if err != nil {
			return fmt.Errorf("reconcile hashed outputs for %s: %w", m.Input, err)
		}
		for _, removed := range res.Removed {
			r.changed = true
			slog.Debug("Removed stale output", "path", removed)
		}
		outPath = res.Path
	}

	// Absolute outputs under a relative root cannot be relativized;
	// report them as-is.
	relOut := outPath
	if rel, err := filepath.Rel(r.opts.Root, outPath); err == nil {
		relOut = rel
	}
	r.fileMap[filepath.ToSlash(m.Input)] = filepath.ToSlash(relOut)

	rec, err := r.writer.Write(outPath, art.Text, m.Encoding)
	if err != nil {
		return err
	}
	r.note(m.Input, relOut, rec)

	if m.Sourcemap && art.Sourcemap != "" {
		mapPath := filepath.Join(filepath.Dir(outPath), filepath.Base(absIn)+".map.json")
		mapRec, err := r.writer.Write(mapPath, art.Sourcemap, m.Encoding)
		if err != nil {
			return err
		}
		r.note(m.Input, filepath.Base(mapPath), mapRec)
	}
	return nil
}

func (r *Run) note(in, out string, rec writer.ChangeRecord) {
	if !rec.ContentChanged {
		slog.Debug("Already up to date", "input", in, "output", out)
		return
	}
	r.changed = true
	if !r.opts.Quiet {
		fmt.Printf("Compiled: %s -> %s\n", in, out)
	}
}

// CompiledName returns the final output filename for an already
// compiled input path. Part of the compile.Lookup contract used by
// template rendering.
func (r *Run) CompiledName(inputPath string) (string, error) {
	out, ok := r.fileMap[path.Clean(filepath.ToSlash(inputPath))]
	if !ok {
		return "", wcerrors.LookupFailed(inputPath)
	}
	return path.Base(out), nil
}

// ContentHash returns the digest of an input file's current content.
// The input must appear in the run's file map, i.e. it must have been
// compiled earlier in the same run.
func (r *Run) ContentHash(inputPath string) (string, error) {
	key := path.Clean(filepath.ToSlash(inputPath))
	if _, ok := r.fileMap[key]; !ok {
		return "", wcerrors.LookupFailed(inputPath)
	}
	raw, err := os.ReadFile(r.anchor(filepath.FromSlash(key)))
	if err != nil {
		return "", err
	}
	return hashname.Digest(string(raw), textenc.DefaultName)
}
