package resolve

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/webcompile/internal/wcerrors"
)

// Translation rewrites a source directory prefix to an output directory
// prefix, e.g. "src/scss" -> "dist/css".
type Translation struct {
	Src string
	Dst string
}

// ParseTranslations parses "src:dst" arguments.
func ParseTranslations(args []string) ([]Translation, error) {
	out := make([]Translation, 0, len(args))
	for _, arg := range args {
		src, dst, ok := strings.Cut(arg, ":")
		if !ok || src == "" || dst == "" {
			return nil, wcerrors.Configf("malformed translate option: %q (expected 'src:dst')", arg)
		}
		out = append(out, Translation{Src: src, Dst: dst})
	}
	return out, nil
}

// ApplyTranslations rewrites dir using the first matching translation,
// trying shorter source prefixes first. The shortest-prefix-first order
// is long-standing behavior that callers' configs depend on.
func ApplyTranslations(ts []Translation, dir string) string {
	sorted := make([]Translation, len(ts))
	copy(sorted, ts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Src) < len(sorted[j].Src)
	})
	for _, t := range sorted {
		if strings.HasPrefix(dir, t.Src) {
			return t.Dst + dir[len(t.Src):]
		}
	}
	return dir
}
