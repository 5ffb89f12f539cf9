package compile

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

const jsMediaType = "application/javascript"

// bangComment matches license comments of the form /*! ... */ which the
// KeepComments option re-attaches after minification strips them.
var bangComment = regexp.MustCompile(`(?s)/\*!.*?\*/`)

// JSMinifier minifies scripts in-process.
type JSMinifier struct {
	// KeepComments preserves comments starting with "/*!".
	KeepComments bool
}

func (m *JSMinifier) Compile(_ context.Context, src Source) (Artifact, error) {
	var kept []string
	if m.KeepComments {
		kept = bangComment.FindAllString(src.Text, -1)
	}

	min := minify.New()
	min.AddFunc(jsMediaType, js.Minify)
	out, err := min.String(jsMediaType, src.Text)
	if err != nil {
		return Artifact{}, fmt.Errorf("minify script: %w", err)
	}

	if len(kept) > 0 {
		out = strings.Join(kept, "\n") + "\n" + out
	}
	return Artifact{Text: out}, nil
}
