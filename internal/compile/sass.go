package compile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSassExecutable is the stylesheet compiler invoked when none is
// configured. sassc supports every output style the tool accepts plus
// numeric precision, which the dart-sass CLI does not.
const DefaultSassExecutable = "sassc"

// SassCompiler compiles stylesheets by invoking an external executable.
// The executable is the black box; this adapter only shuttles text in
// and out of it. Compilation happens against a scratch directory so the
// working tree is never touched by the compiler itself.
type SassCompiler struct {
	// Executable overrides the compiler binary. Empty means
	// DefaultSassExecutable resolved via PATH.
	Executable string
	// Style is one of nested, expanded, compact, compressed.
	Style string
	// Precision is the number of decimal places kept for numbers.
	Precision int
	// Sourcemap requests a companion map sidecar.
	Sourcemap bool
}

func (c *SassCompiler) Compile(ctx context.Context, src Source) (Artifact, error) {
	exe := c.Executable
	if exe == "" {
		exe = DefaultSassExecutable
	}

	scratch, err := os.MkdirTemp("", "webcompile-sass-*")
	if err != nil {
		return Artifact{}, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	outPath := filepath.Join(scratch, "out.css")
	args := []string{
		"-t", c.Style,
		"-p", strconv.Itoa(c.Precision),
		"-I", filepath.Dir(src.Path),
	}
	if c.Sourcemap {
		args = append(args, "-m")
	}
	args = append(args, src.Path, outPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Artifact{}, fmt.Errorf("%s: %s", exe, msg)
	}

	css, err := os.ReadFile(outPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("read compiler output: %w", err)
	}
	art := Artifact{Text: string(css)}
	if c.Sourcemap {
		m, err := os.ReadFile(outPath + ".map")
		if err != nil {
			return Artifact{}, fmt.Errorf("read compiler sourcemap: %w", err)
		}
		art.Sourcemap = string(m)
	}
	return art, nil
}
