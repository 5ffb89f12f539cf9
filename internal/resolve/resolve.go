// Package resolve expands path arguments into the concrete set of input
// files to compile.
//
// Partial files (name starting with "_") are not compiled directly.
// Instead, a bounded ancestor walk pulls in the non-partial files that
// plausibly import them. This is an explicit approximation of import
// graph resolution: it may under- or over-include files for deeply
// nested import chains, and it intentionally never parses file contents.
package resolve

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webcompile/internal/util/sets"
	"git.home.luguber.info/inful/webcompile/internal/wcerrors"
)

// PartialPrefix marks a file as include-only.
const PartialPrefix = "_"

// Resolver turns path arguments into a deduplicated, ordered input set.
type Resolver struct {
	// Ext is the asset extension to match, including the dot (".scss").
	Ext string
	// Recurse includes files in subdirectories of directory arguments.
	Recurse bool
	// PartialDepth is the number of ancestor levels walked above a
	// partial's parent directory. Zero means only the immediate parent.
	PartialDepth int
}

// IsPartial reports whether path names a partial file.
func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), PartialPrefix)
}

// Resolve expands the given path arguments. Directory arguments expand
// to every matching file inside them; partial file arguments trigger the
// ancestor walk. The result contains only non-partial files, sorted for
// a stable processing order within the run. A non-existent argument is a
// configuration error, surfaced before any compilation starts.
func (r *Resolver) Resolve(paths []string) ([]string, error) {
	considered := sets.New[string]()
	for _, arg := range paths {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, wcerrors.Configf("path does not exist: %s", arg)
		}
		if !info.IsDir() {
			considered.Add(filepath.Clean(arg))
			continue
		}
		if err := r.collectDir(arg, considered); err != nil {
			return nil, err
		}
	}

	resolved := sets.New[string]()
	for path := range considered {
		if !IsPartial(path) {
			resolved.Add(path)
			continue
		}
		r.collectAncestors(path, resolved)
	}
	return resolved.Sorted(), nil
}

func (r *Resolver) collectDir(dir string, out sets.Set[string]) error {
	if r.Recurse {
		return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return wcerrors.ConfigWrap(err, "walk directory "+dir)
			}
			if !d.IsDir() && r.matches(path) {
				out.Add(filepath.Clean(path))
			}
			return nil
		})
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return wcerrors.ConfigWrap(err, "read directory "+dir)
	}
	for _, e := range entries {
		if !e.IsDir() && r.matches(e.Name()) {
			out.Add(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}

// collectAncestors applies the partial heuristic: starting at the
// partial's parent, visit PartialDepth+1 directory levels and include
// every non-partial matching file found directly inside each.
func (r *Resolver) collectAncestors(partial string, out sets.Set[string]) {
	dir := filepath.Dir(partial)
	for level := 0; level <= r.PartialDepth; level++ {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() || IsPartial(e.Name()) || !r.matches(e.Name()) {
					continue
				}
				out.Add(filepath.Join(dir, e.Name()))
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

func (r *Resolver) matches(path string) bool {
	return strings.EqualFold(filepath.Ext(path), r.Ext)
}
