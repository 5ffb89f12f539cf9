package wcerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigf_IsFatal(t *testing.T) {
	err := Configf("missing key %q", "web-compile")
	require.True(t, IsFatal(err))
	require.Equal(t, CategoryConfig, CategoryOf(err))
	require.Contains(t, err.Error(), `missing key "web-compile"`)
}

func TestCompileFailed_NotFatal_UnwrapsCause(t *testing.T) {
	cause := errors.New("unexpected token")
	err := CompileFailed(cause)
	require.False(t, IsFatal(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "compile: unexpected token", err.Error())
}

func TestReport_QuotesUnderlyingMessage(t *testing.T) {
	// The failure report keys messages by input path, so the category
	// and the path stay out of the report text.
	require.Equal(t, "Path does not exist", InputNotFound().Report())
	require.Equal(t, "unexpected token", CompileFailed(errors.New("unexpected token")).Report())
	require.Equal(t, "bad byte", Wrap(errors.New("bad byte"), CategoryInput, "").Report())
}

func TestIsFatal_WrappedFatal(t *testing.T) {
	err := fmt.Errorf("outer: %w", GitWrap(errors.New("no repo"), "open repository"))
	require.True(t, IsFatal(err))
	require.Equal(t, CategoryGit, CategoryOf(err))
}

func TestIsFatal_PlainError(t *testing.T) {
	require.False(t, IsFatal(errors.New("plain")))
	require.Equal(t, Category(""), CategoryOf(errors.New("plain")))
}
