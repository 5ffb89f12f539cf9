package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webcompile/internal/compile"
	"git.home.luguber.info/inful/webcompile/internal/wcerrors"
)

// upperCompiler is a deterministic stand-in for an external compiler:
// it upper-cases the input and fails for configured basenames.
type upperCompiler struct {
	fail map[string]string // basename -> error message
}

func (c *upperCompiler) Compile(_ context.Context, src compile.Source) (compile.Artifact, error) {
	if msg, ok := c.fail[filepath.Base(src.Path)]; ok {
		return compile.Artifact{}, errors.New(msg)
	}
	return compile.Artifact{Text: strings.ToUpper(src.Text)}, nil
}

func writeInput(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func plainMapping(in, out string) Mapping {
	return Mapping{
		Input:          in,
		OutputTemplate: out,
		Encoding:       "utf-8",
		Compiler:       &upperCompiler{},
	}
}

func newRun(root string, opts ...func(*Options)) *Run {
	o := Options{Root: root, StopOnError: true, Quiet: true, ChangedExitCode: 3}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o, nil)
}

func TestRun_Idempotence(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/a.scss", "body{color:red}\n")
	ctx := context.Background()

	first := newRun(root)
	require.NoError(t, first.All(ctx, []Mapping{plainMapping("src/a.scss", "dist/a.css")}))
	require.True(t, first.Changed())
	require.Equal(t, 3, first.ExitCode())

	second := newRun(root)
	require.NoError(t, second.All(ctx, []Mapping{plainMapping("src/a.scss", "dist/a.css")}))
	require.False(t, second.Changed())
	require.Equal(t, ExitOK, second.ExitCode())
}

func TestRun_HashRotationScenario(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/a.scss", "body{color:red}\n")
	mapping := plainMapping("src/a.scss", "dist/a.[hash].css")
	ctx := context.Background()

	glob := func() []string {
		matches, err := filepath.Glob(filepath.Join(root, "dist", "a.*.css"))
		require.NoError(t, err)
		return matches
	}

	// First run creates one hashed output and reports the changed code.
	first := newRun(root)
	require.NoError(t, first.All(ctx, []Mapping{mapping}))
	require.Equal(t, 3, first.ExitCode())
	initial := glob()
	require.Len(t, initial, 1)

	// Editing the source rotates the hash variant: new name, old gone.
	writeInput(t, root, "src/a.scss", "body{color:blue}\n")
	second := newRun(root)
	require.NoError(t, second.All(ctx, []Mapping{mapping}))
	require.Equal(t, 3, second.ExitCode())
	rotated := glob()
	require.Len(t, rotated, 1)
	require.NotEqual(t, initial[0], rotated[0])

	// A run with no edits reproduces the same filename and writes nothing.
	third := newRun(root)
	require.NoError(t, third.All(ctx, []Mapping{mapping}))
	require.Equal(t, ExitOK, third.ExitCode())
	require.Equal(t, rotated, glob())
}

func threeMappings(fail string) ([]Mapping, *upperCompiler) {
	c := &upperCompiler{fail: map[string]string{fail: "unexpected token"}}
	ms := []Mapping{
		{Input: "src/a.scss", OutputTemplate: "dist/a.css", Encoding: "utf-8", Compiler: c},
		{Input: "src/b.scss", OutputTemplate: "dist/b.css", Encoding: "utf-8", Compiler: c},
		{Input: "src/c.scss", OutputTemplate: "dist/c.css", Encoding: "utf-8", Compiler: c},
	}
	return ms, c
}

func TestRun_StopOnError_HaltsBeforeThirdInput(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"src/a.scss", "src/b.scss", "src/c.scss"} {
		writeInput(t, root, f, "x\n")
	}
	ms, _ := threeMappings("b.scss")

	r := newRun(root)
	err := r.All(context.Background(), ms)
	require.ErrorIs(t, err, ErrAborted)

	require.FileExists(t, filepath.Join(root, "dist", "a.css"))
	require.NoFileExists(t, filepath.Join(root, "dist", "c.css"))
	require.Equal(t, []CollectedError{{Path: "src/b.scss", Message: "unexpected token"}}, r.Errors())
}

func TestRun_ContinueOnError_AttemptsAllInputs(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"src/a.scss", "src/b.scss", "src/c.scss"} {
		writeInput(t, root, f, "x\n")
	}
	ms, _ := threeMappings("b.scss")

	r := newRun(root, func(o *Options) { o.StopOnError = false })
	require.NoError(t, r.All(context.Background(), ms))

	require.FileExists(t, filepath.Join(root, "dist", "a.css"))
	require.FileExists(t, filepath.Join(root, "dist", "c.css"))
	require.Equal(t, []CollectedError{{Path: "src/b.scss", Message: "unexpected token"}}, r.Errors())
}

func TestRun_ExitCodePrecedence_ErrorBeatsChanged(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/a.scss", "x\n")
	writeInput(t, root, "src/b.scss", "x\n")
	c := &upperCompiler{fail: map[string]string{"b.scss": "boom"}}

	r := newRun(root, func(o *Options) { o.StopOnError = false })
	require.NoError(t, r.All(context.Background(), []Mapping{
		{Input: "src/a.scss", OutputTemplate: "dist/a.css", Encoding: "utf-8", Compiler: c},
		{Input: "src/b.scss", OutputTemplate: "dist/b.css", Encoding: "utf-8", Compiler: c},
	}))

	require.True(t, r.Changed())
	require.True(t, r.HasErrors())
	require.Equal(t, ExitFailure, r.ExitCode())
}

func TestRun_MissingInput_Recorded(t *testing.T) {
	root := t.TempDir()

	r := newRun(root, func(o *Options) { o.StopOnError = false })
	require.NoError(t, r.All(context.Background(), []Mapping{plainMapping("src/gone.scss", "dist/gone.css")}))
	require.Equal(t, []CollectedError{{Path: "src/gone.scss", Message: "Path does not exist"}}, r.Errors())
	require.False(t, r.Changed())
}

func TestRun_DryRun_ReportsWithoutWriting(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/a.scss", "x\n")

	r := newRun(root, func(o *Options) { o.DryRun = true })
	require.NoError(t, r.All(context.Background(), []Mapping{plainMapping("src/a.scss", "dist/a.css")}))
	require.True(t, r.Changed())
	require.NoFileExists(t, filepath.Join(root, "dist", "a.css"))
}

func TestRun_TemplateLookup_UsesCompiledOutputs(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/a.scss", "body{}\n")
	writeInput(t, root, "src/index.html.j2", `<link href="{{ compiledName "src/a.scss" }}">`)
	ctx := context.Background()

	r := newRun(root)
	require.NoError(t, r.All(ctx, []Mapping{plainMapping("src/a.scss", "dist/a.[hash].css")}))

	rend := &compile.TemplateRenderer{Lookup: r}
	require.NoError(t, r.All(ctx, []Mapping{{
		Input:          "src/index.html.j2",
		OutputTemplate: "index.html",
		Encoding:       "utf-8",
		Compiler:       rend,
	}}))
	require.Empty(t, r.Errors())

	html, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)

	css, err := filepath.Glob(filepath.Join(root, "dist", "a.*.css"))
	require.NoError(t, err)
	require.Len(t, css, 1)
	require.Contains(t, string(html), filepath.Base(css[0]))
}

func TestRun_TemplateLookup_UnmappedPathIsError(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/index.html.j2", `{{ compiledName "src/never-compiled.scss" }}`)

	r := newRun(root, func(o *Options) { o.StopOnError = false })
	rend := &compile.TemplateRenderer{Lookup: r}
	require.NoError(t, r.All(context.Background(), []Mapping{{
		Input:          "src/index.html.j2",
		OutputTemplate: "index.html",
		Encoding:       "utf-8",
		Compiler:       rend,
	}}))

	errs := r.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, "src/index.html.j2", errs[0].Path)
	require.Contains(t, errs[0].Message, "no compiled path")
}

func TestRun_ContentHash_RequiresMappedInput(t *testing.T) {
	root := t.TempDir()
	writeInput(t, root, "src/a.scss", "x\n")

	r := newRun(root)
	require.NoError(t, r.All(context.Background(), []Mapping{plainMapping("src/a.scss", "dist/a.css")}))

	digest, err := r.ContentHash("src/a.scss")
	require.NoError(t, err)
	require.Len(t, digest, 32)

	_, err = r.ContentHash("src/other.scss")
	require.Error(t, err)
}

func TestRun_DuplicateErrorKeyKeepsPosition(t *testing.T) {
	r := newRun(t.TempDir(), func(o *Options) { o.StopOnError = false })
	r.record("a", wcerrors.New(wcerrors.CategoryCompile, "first"))
	r.record("b", wcerrors.New(wcerrors.CategoryCompile, "second"))
	r.record("a", wcerrors.New(wcerrors.CategoryCompile, "updated"))

	require.Equal(t, []CollectedError{
		{Path: "a", Message: "updated"},
		{Path: "b", Message: "second"},
	}, r.Errors())
}

func TestRun_AbsoluteInputPaths(t *testing.T) {
	// The positional stylesheet command runs with root "." and hands
	// over absolute input paths untouched; they must not be re-anchored.
	dir := t.TempDir()
	writeInput(t, dir, "site.scss", "body{color:red}\n")
	in := filepath.Join(dir, "site.scss")
	out := filepath.Join(dir, "site.css")

	r := newRun(".")
	require.NoError(t, r.All(context.Background(), []Mapping{plainMapping(in, out)}))
	require.Empty(t, r.Errors())
	require.True(t, r.Changed())
	require.FileExists(t, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "BODY{COLOR:RED}\n", string(data))
}
