package run

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exit codes. The changed-files code is configurable per caller; the
// constants here let integrating tools check statuses symbolically.
const (
	// ExitOK means no outputs changed and nothing failed.
	ExitOK = 0
	// ExitFailure means one or more inputs failed to compile. Takes
	// precedence over the changed-files code.
	ExitFailure = 1
	// ExitChangedDefault is the changed-files code of the positional
	// stylesheet variant. The config-driven variant defaults to
	// config.DefaultChangedExitCode.
	ExitChangedDefault = 2
)

// ExitCode computes the final process exit status for this run.
func (r *Run) ExitCode() int {
	if r.HasErrors() {
		return ExitFailure
	}
	if r.changed {
		return r.opts.ChangedExitCode
	}
	return ExitOK
}

// StatusError carries a non-zero exit status out of a command.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// FormatErrors renders the aggregate failure block, one path -> message
// entry per failed input in processing order, as a YAML mapping with
// literal-block messages so successive failures diff cleanly.
func FormatErrors(errs []CollectedError) string {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range errs {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Path},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Message, Style: yaml.LiteralStyle},
		)
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		var b strings.Builder
		for _, e := range errs {
			fmt.Fprintf(&b, "%s: %s\n", e.Path, e.Message)
		}
		return b.String()
	}
	return string(out)
}

// Report converts the run's collected errors into a StatusError, or
// returns nil when nothing failed and nothing changed (or when only the
// changed status applies and quiet handling is up to the caller).
func (r *Run) Report() *StatusError {
	if r.HasErrors() {
		return &StatusError{
			Code:    ExitFailure,
			Message: "Compilations failed:\n" + FormatErrors(r.Errors()),
		}
	}
	if r.changed {
		return &StatusError{Code: r.opts.ChangedExitCode, Message: "File(s) changed"}
	}
	return nil
}
