package run

import (
	"context"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webcompile/internal/compile"
	"git.home.luguber.info/inful/webcompile/internal/config"
	"git.home.luguber.info/inful/webcompile/internal/hashname"
	"git.home.luguber.info/inful/webcompile/internal/resolve"
	"git.home.luguber.info/inful/webcompile/internal/util/sets"
)

// mappings builds the work list for one asset kind. Map iteration order
// is randomized, so the configured inputs are sorted to keep the
// processing order stable within a run.
func mappings(files map[string]string, encoding string, sourcemap bool, c compile.Compiler) []Mapping {
	inputs := sets.New[string]()
	for in := range files {
		inputs.Add(in)
	}
	out := make([]Mapping, 0, len(files))
	for _, in := range inputs.Sorted() {
		out = append(out, Mapping{
			Input:          in,
			OutputTemplate: files[in],
			Encoding:       encoding,
			Sourcemap:      sourcemap,
			Compiler:       c,
		})
	}
	return out
}

// Stylesheets compiles the configured stylesheet mappings.
func (r *Run) Stylesheets(ctx context.Context, cfg config.SassConfig) error {
	if len(cfg.Files) == 0 {
		return nil
	}
	comp := &compile.SassCompiler{
		Executable: cfg.Executable,
		Style:      cfg.Format,
		Precision:  cfg.Precision,
		Sourcemap:  cfg.Sourcemap,
	}
	return r.All(ctx, mappings(cfg.Files, cfg.Encoding, cfg.Sourcemap, comp))
}

// Scripts minifies the configured script mappings.
func (r *Run) Scripts(ctx context.Context, cfg config.JSConfig) error {
	if len(cfg.Files) == 0 {
		return nil
	}
	min := &compile.JSMinifier{KeepComments: cfg.Comments}
	return r.All(ctx, mappings(cfg.Files, cfg.Encoding, false, min))
}

// Templates renders the configured template mappings. Templates may
// reference outputs of mappings compiled earlier in the same run, so
// this pass must come last.
func (r *Run) Templates(ctx context.Context, cfg config.TemplateConfig) error {
	if len(cfg.Files) == 0 {
		return nil
	}
	rend := &compile.TemplateRenderer{Variables: cfg.Variables, Lookup: r}
	return r.All(ctx, mappings(cfg.Files, cfg.Encoding, false, rend))
}

// StylesheetOptions configure the positional-path stylesheet variant.
type StylesheetOptions struct {
	Executable   string
	Format       string
	Precision    int
	Sourcemap    bool
	Encoding     string
	HashNames    bool
	Translations []resolve.Translation
}

// StylesheetPaths compiles resolved input files in place: each output
// lands next to its source (or in the translated directory) under the
// source's name with the asset extension swapped for ".css". With
// HashNames the output name embeds the content digest after a "#"
// separator, the naming scheme the positional variant has always used.
func (r *Run) StylesheetPaths(ctx context.Context, inputs []string, opts StylesheetOptions) error {
	comp := &compile.SassCompiler{
		Executable: opts.Executable,
		Style:      opts.Format,
		Precision:  opts.Precision,
		Sourcemap:  opts.Sourcemap,
	}
	ms := make([]Mapping, 0, len(inputs))
	for _, in := range inputs {
		outDir := resolve.ApplyTranslations(opts.Translations, filepath.Dir(in))
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		name := base + ".css"
		if opts.HashNames {
			name = base + "#" + hashname.Token + ".css"
		}
		ms = append(ms, Mapping{
			Input:          in,
			OutputTemplate: filepath.Join(outDir, name),
			Encoding:       opts.Encoding,
			Sourcemap:      opts.Sourcemap,
			Compiler:       comp,
		})
	}
	return r.All(ctx, ms)
}
