// Package hashname implements content-hashed output filenames. An
// output path template may carry a single "[hash]" token; it is replaced
// by the md5 hex digest of the normalized artifact bytes, and stale
// sibling files produced under earlier digests are removed. The final
// name is therefore a pure function of content: unchanged input
// reproduces the same filename and the run touches nothing.
package hashname

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/webcompile/internal/textenc"
)

// Token is the placeholder substituted in output path templates.
const Token = "[hash]"

// HasToken reports whether the output path template requests hash
// naming. Only the filename component is considered.
func HasToken(outputPath string) bool {
	return strings.Contains(filepath.Base(outputPath), Token)
}

// Digest computes the content hash of text in the given encoding.
func Digest(text, encodingName string) (string, error) {
	data, err := textenc.Encode(text, encodingName)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Result describes one hash-name reconciliation.
type Result struct {
	// Path is the final output path with the token substituted.
	Path string
	// Removed lists the stale hash variants actually deleted. Empty in
	// dry-run mode, where nothing is deleted and deletions do not count
	// as changes.
	Removed []string
}

// Apply substitutes the token in templatePath with the digest of text
// and deletes every sibling file matching the template (token replaced
// by a wildcard) other than the final path itself.
func Apply(templatePath, text, encodingName string, dryRun bool) (Result, error) {
	digest, err := Digest(text, encodingName)
	if err != nil {
		return Result{}, err
	}

	dir := filepath.Dir(templatePath)
	name := filepath.Base(templatePath)
	final := filepath.Join(dir, strings.ReplaceAll(name, Token, digest))
	res := Result{Path: final}

	matches, err := filepath.Glob(filepath.Join(dir, strings.ReplaceAll(name, Token, "*")))
	if err != nil {
		return Result{}, err
	}
	for _, match := range matches {
		if match == final || dryRun {
			continue
		}
		if err := os.Remove(match); err != nil {
			return Result{}, err
		}
		res.Removed = append(res.Removed, match)
	}
	return res, nil
}
