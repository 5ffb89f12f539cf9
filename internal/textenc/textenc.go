// Package textenc maps the user-facing encoding option (an IANA/WHATWG
// label such as "utf8" or "latin1") onto byte-level encode/decode. The
// UTF-8 labels short-circuit since artifact text is already UTF-8 in
// memory.
package textenc

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultName is the encoding assumed when a mapping does not set one.
const DefaultName = "utf-8"

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", "utf-8":
		return true
	}
	return false
}

// Encode converts text to bytes in the named encoding.
func Encode(text, name string) ([]byte, error) {
	if isUTF8(name) {
		return []byte(text), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode as %q: %w", name, err)
	}
	return out, nil
}

// Decode converts bytes in the named encoding to a string.
func Decode(data []byte, name string) (string, error) {
	if isUTF8(name) {
		return string(data), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode as %q: %w", name, err)
	}
	return string(out), nil
}
