package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingStager struct {
	staged []string
}

func (s *recordingStager) Stage(path string) error {
	s.staged = append(s.staged, path)
	return nil
}

func TestWrite_CreatesFileAndStages(t *testing.T) {
	dir := t.TempDir()
	stager := &recordingStager{}
	w := &Writer{Stager: stager}

	path := filepath.Join(dir, "dist", "a.css")
	rec, err := w.Write(path, "body{}\n", "utf-8")
	require.NoError(t, err)
	require.True(t, rec.Created)
	require.True(t, rec.ContentChanged)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "body{}\n", string(data))
	require.Equal(t, []string{path}, stager.staged)
}

func TestWrite_UnchangedContent_NoWriteNoStage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("body{}\n"), 0o644))

	stager := &recordingStager{}
	w := &Writer{Stager: stager}

	rec, err := w.Write(path, "body{}\n", "utf-8")
	require.NoError(t, err)
	require.False(t, rec.Created)
	require.False(t, rec.ContentChanged)
	require.Empty(t, stager.staged)
}

func TestWrite_ModifiedContent_OverwritesWithoutStaging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	stager := &recordingStager{}
	w := &Writer{Stager: stager}

	rec, err := w.Write(path, "new\n", "utf-8")
	require.NoError(t, err)
	require.False(t, rec.Created)
	require.True(t, rec.ContentChanged)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new\n", string(data))
	// Modifications to already-tracked files are never staged.
	require.Empty(t, stager.staged)
}

func TestWrite_DryRun_ReportsWithoutMutating(t *testing.T) {
	dir := t.TempDir()
	stager := &recordingStager{}
	w := &Writer{DryRun: true, Stager: stager}

	path := filepath.Join(dir, "a.css")
	rec, err := w.Write(path, "body{}\n", "utf-8")
	require.NoError(t, err)
	require.True(t, rec.Created)
	require.True(t, rec.ContentChanged)
	require.NoFileExists(t, path)
	require.Empty(t, stager.staged)
}

func TestWrite_DryRun_ExistingModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w := &Writer{DryRun: true}
	rec, err := w.Write(path, "new\n", "utf-8")
	require.NoError(t, err)
	require.True(t, rec.ContentChanged)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old\n", string(data))
}

func TestWrite_EncodedComparison(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")

	w := &Writer{}
	_, err := w.Write(path, "héllo\n", "latin1")
	require.NoError(t, err)

	// Re-writing identical text in the same encoding is a no-op even
	// though the on-disk bytes are not valid UTF-8.
	rec, err := w.Write(path, "héllo\n", "latin1")
	require.NoError(t, err)
	require.False(t, rec.ContentChanged)
}
