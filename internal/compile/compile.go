// Package compile defines the contract between the pipeline and the
// per-asset-type compilers, and ships the built-in implementations
// (stylesheet compilation, script minification, template rendering).
//
// Compilers are pure with respect to the filesystem: they receive the
// input and return text, and the pipeline alone decides what gets
// written where.
package compile

import (
	"context"
	"strings"
)

// Source describes one input handed to a compiler.
type Source struct {
	// Path is the absolute path of the input file.
	Path string
	// Text is the input content, already decoded to UTF-8.
	Text string
	// OutputDir is the directory the primary artifact will land in.
	// Compilers that emit relative references (sourcemap roots) need it.
	OutputDir string
}

// Artifact is the result of one successful compiler call.
type Artifact struct {
	// Text is the primary output.
	Text string
	// Sourcemap is the optional sidecar; empty when not produced.
	Sourcemap string
}

// Compiler is the black-box contract for one asset kind.
type Compiler interface {
	Compile(ctx context.Context, src Source) (Artifact, error)
}

// Normalize trims trailing whitespace and appends a single trailing
// newline, so that output is stable under end-of-file normalization
// hooks and content hashing is reproducible.
func Normalize(text string) string {
	return strings.TrimRight(text, " \t\r\n") + "\n"
}

// Dispatch invokes the compiler for one source and normalizes its
// output. Errors come back verbatim for the caller to record against
// the input path.
func Dispatch(ctx context.Context, c Compiler, src Source) (Artifact, error) {
	art, err := c.Compile(ctx, src)
	if err != nil {
		return Artifact{}, err
	}
	art.Text = Normalize(art.Text)
	if art.Sourcemap != "" {
		art.Sourcemap = Normalize(art.Sourcemap)
	}
	return art, nil
}
