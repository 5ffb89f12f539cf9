// Package writer persists artifact text idempotently. A write happens
// only when the target is missing or its byte content differs from the
// new text; this comparison, not timestamps, is the authority for "did
// this run change anything". Newly created files are registered with the
// version-control staging collaborator so that pre-commit style callers
// observe them in the same commit cycle.
package writer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/webcompile/internal/textenc"
)

// Stager registers a newly created file with the version-control index.
type Stager interface {
	Stage(path string) error
}

// ChangeRecord reports the outcome of one write attempt.
// Invariant: Created implies ContentChanged.
type ChangeRecord struct {
	Path           string
	Created        bool
	ContentChanged bool
}

// Writer writes artifacts to disk.
type Writer struct {
	// DryRun disables every filesystem mutation and staging call while
	// still computing the ChangeRecord a real run would produce.
	DryRun bool
	// Stager, when non-nil, is told about created files. Existing files
	// are never staged; modifications to tracked files are assumed
	// already tracked.
	Stager Stager
}

// Write persists text to path in the named encoding.
func (w *Writer) Write(path, text, encodingName string) (ChangeRecord, error) {
	rec := ChangeRecord{Path: path}

	data, err := textenc.Encode(text, encodingName)
	if err != nil {
		return rec, err
	}

	current, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		rec.Created = true
		rec.ContentChanged = true
		if w.DryRun {
			return rec, nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return rec, fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return rec, fmt.Errorf("write output file: %w", err)
		}
		if w.Stager != nil {
			if err := w.Stager.Stage(path); err != nil {
				return rec, err
			}
		}
		return rec, nil
	case err != nil:
		return rec, fmt.Errorf("read existing output: %w", err)
	}

	if bytes.Equal(current, data) {
		return rec, nil
	}
	rec.ContentChanged = true
	if w.DryRun {
		return rec, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rec, fmt.Errorf("write output file: %w", err)
	}
	return rec, nil
}
