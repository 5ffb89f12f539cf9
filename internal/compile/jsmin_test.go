package compile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const jsSource = `/*! license banner */
// a comment
function add (a, b) {
    return a + b;
}
`

func TestJSMinifier_StripsWhitespaceAndComments(t *testing.T) {
	m := &JSMinifier{}

	art, err := m.Compile(context.Background(), Source{Text: jsSource})
	require.NoError(t, err)
	require.NotContains(t, art.Text, "// a comment")
	require.NotContains(t, art.Text, "license banner")
	require.Contains(t, art.Text, "function")
	require.Less(t, len(art.Text), len(jsSource))
}

func TestJSMinifier_KeepComments_PreservesBangComments(t *testing.T) {
	m := &JSMinifier{KeepComments: true}

	art, err := m.Compile(context.Background(), Source{Text: jsSource})
	require.NoError(t, err)
	require.Contains(t, art.Text, "/*! license banner */")
	require.NotContains(t, art.Text, "// a comment")
}

func TestJSMinifier_InvalidScript_Fails(t *testing.T) {
	m := &JSMinifier{}

	_, err := m.Compile(context.Background(), Source{Text: "function ( {"})
	require.Error(t, err)
}
