// Package gitindex is the version-control staging collaborator: it adds
// newly created output files to the git index of the repository rooted
// at the configuration directory.
package gitindex

import (
	"log/slog"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/webcompile/internal/wcerrors"
)

// Index stages files in one repository's git index.
type Index struct {
	root string
	repo *git.Repository
}

// Open opens the repository rooted exactly at root (no parent directory
// search: the config file is expected to live at the repository root).
// It fails loudly when root is not under version control, since staging
// was explicitly requested.
func Open(root string) (*Index, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, wcerrors.GitWrap(err, "config directory is not the root of a git repository (disable git_add)")
	}
	return &Index{root: root, repo: repo}, nil
}

// Stage adds path to the index. The path may be absolute or relative to
// the repository root.
func (ix *Index) Stage(path string) error {
	wt, err := ix.repo.Worktree()
	if err != nil {
		return wcerrors.GitWrap(err, "open git worktree")
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(ix.root, path)
	}
	rel, err := filepath.Rel(ix.root, abs)
	if err != nil {
		return wcerrors.GitWrap(err, "resolve path relative to repository root")
	}

	// go-git expects slash-separated repository-relative paths.
	if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
		return wcerrors.GitWrap(err, "add file to git index")
	}
	slog.Debug("Added to git index", "path", rel)
	return nil
}
