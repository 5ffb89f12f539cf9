package compile

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// Lookup resolves references from a template to outputs compiled earlier
// in the same run. Both methods fail when the given input path is not a
// key of the run's input->output file map.
type Lookup interface {
	// CompiledName returns the final (possibly hash-named) output
	// filename for an input path.
	CompiledName(inputPath string) (string, error)
	// ContentHash returns the content digest of an input path.
	ContentHash(inputPath string) (string, error)
}

// TemplateRenderer renders template inputs with Go's text/template.
// Templates can reference the hash-named outputs of mappings compiled
// earlier in the run through the compiledName and hash functions.
type TemplateRenderer struct {
	// Variables are exposed as the template's data. Unknown keys are
	// render errors rather than silent empty output.
	Variables map[string]any
	// Lookup serves the compiledName and hash template functions.
	Lookup Lookup
}

func (r *TemplateRenderer) Compile(_ context.Context, src Source) (Artifact, error) {
	funcs := template.FuncMap{
		"compiledName": func(path string) (string, error) {
			if r.Lookup == nil {
				return "", fmt.Errorf("compiledName is not configured")
			}
			return r.Lookup.CompiledName(path)
		},
		"hash": func(path string) (string, error) {
			if r.Lookup == nil {
				return "", fmt.Errorf("hash is not configured")
			}
			return r.Lookup.ContentHash(path)
		},
	}

	tpl, err := template.New("page").Funcs(funcs).Option("missingkey=error").Parse(src.Text)
	if err != nil {
		return Artifact{}, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, r.Variables); err != nil {
		return Artifact{}, fmt.Errorf("render template: %w", err)
	}
	return Artifact{Text: buf.String()}, nil
}
