// Package config loads and validates the webcompile configuration.
//
// The configuration file is a YAML, JSON or TOML document with a single
// "web-compile" top-level key. Environment variable references in the
// raw text are expanded before decoding. The rest of the program only
// ever sees the typed Config value produced here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/webcompile/internal/textenc"
	"git.home.luguber.info/inful/webcompile/internal/wcerrors"
)

// TopLevelKey is the required root key of every configuration file.
const TopLevelKey = "web-compile"

// DefaultChangedExitCode is returned by the compile command when outputs
// changed and no other code is configured. Chosen non-zero so pre-commit
// style callers treat regenerated assets as requiring review.
const DefaultChangedExitCode = 3

// Config is the full run configuration consumed by the pipeline.
type Config struct {
	Sass     SassConfig     `yaml:"sass" json:"sass" toml:"sass"`
	JS       JSConfig       `yaml:"js" json:"js" toml:"js"`
	Template TemplateConfig `yaml:"jinja" json:"jinja" toml:"jinja"`

	GitAdd          *bool `yaml:"git_add" json:"git_add" toml:"git_add"`
	DryRun          bool  `yaml:"test_run" json:"test_run" toml:"test_run"`
	ContinueOnError bool  `yaml:"continue_on_error" json:"continue_on_error" toml:"continue_on_error"`
	ExitCode        int   `yaml:"exit_code" json:"exit_code" toml:"exit_code"`

	// Root is the directory containing the configuration file. All
	// mapping paths are resolved relative to it. Set by Load.
	Root string `yaml:"-" json:"-" toml:"-"`
}

// SassConfig holds the stylesheet compilation options.
type SassConfig struct {
	Files     map[string]string `yaml:"files" json:"files" toml:"files"`
	Format    string            `yaml:"format" json:"format" toml:"format"`
	Precision int               `yaml:"precision" json:"precision" toml:"precision"`
	Sourcemap bool              `yaml:"sourcemap" json:"sourcemap" toml:"sourcemap"`
	Encoding  string            `yaml:"encoding" json:"encoding" toml:"encoding"`
	// Executable overrides the stylesheet compiler binary.
	Executable string `yaml:"executable" json:"executable" toml:"executable"`
}

// JSConfig holds the script minification options.
type JSConfig struct {
	Files    map[string]string `yaml:"files" json:"files" toml:"files"`
	Comments bool              `yaml:"comments" json:"comments" toml:"comments"`
	Encoding string            `yaml:"encoding" json:"encoding" toml:"encoding"`
}

// TemplateConfig holds the template rendering options.
type TemplateConfig struct {
	Files     map[string]string `yaml:"files" json:"files" toml:"files"`
	Variables map[string]any    `yaml:"variables" json:"variables" toml:"variables"`
	Encoding  string            `yaml:"encoding" json:"encoding" toml:"encoding"`
}

// StageNewFiles reports whether newly created outputs should be added to
// the git index. Defaults to true when the config does not say.
func (c *Config) StageNewFiles() bool {
	return c.GitAdd == nil || *c.GitAdd
}

// outputFormats accepted for sass.format.
var outputFormats = map[string]bool{
	"nested":     true,
	"expanded":   true,
	"compact":    true,
	"compressed": true,
}

type document struct {
	WebCompile *Config `yaml:"web-compile" json:"web-compile" toml:"web-compile"`
}

// Load reads, decodes and validates the configuration file at path. The
// decoder is chosen from the file extension (yml/yaml, json, toml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wcerrors.Configf("configuration file not found: %s", path)
		}
		return nil, wcerrors.ConfigWrap(err, "read configuration file")
	}
	if len(data) == 0 {
		return nil, wcerrors.Configf("configuration file is empty: %s", path)
	}

	// Expand ${VAR} references before decoding.
	text := os.ExpandEnv(string(data))

	var doc document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = yaml.Unmarshal([]byte(text), &doc)
	case ".json":
		err = json.Unmarshal([]byte(text), &doc)
	case ".toml":
		err = toml.Unmarshal([]byte(text), &doc)
	default:
		return nil, wcerrors.Configf("configuration extension %q not one of: json, toml, yml, yaml", ext)
	}
	if err != nil {
		return nil, wcerrors.ConfigWrap(err, "decode configuration file")
	}
	if doc.WebCompile == nil {
		return nil, wcerrors.Configf("configuration must contain top-level key %q", TopLevelKey)
	}

	cfg := doc.WebCompile
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, wcerrors.ConfigWrap(err, "resolve configuration path")
	}
	cfg.Root = filepath.Dir(abs)

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Sass.Format == "" {
		cfg.Sass.Format = "compressed"
	}
	if cfg.Sass.Precision == 0 {
		cfg.Sass.Precision = 5
	}
	if cfg.Sass.Encoding == "" {
		cfg.Sass.Encoding = "utf-8"
	}
	if cfg.JS.Encoding == "" {
		cfg.JS.Encoding = "utf-8"
	}
	if cfg.Template.Encoding == "" {
		cfg.Template.Encoding = "utf-8"
	}
	if cfg.ExitCode == 0 {
		cfg.ExitCode = DefaultChangedExitCode
	}
}

func validate(cfg *Config) error {
	if !outputFormats[cfg.Sass.Format] {
		return wcerrors.Configf("sass.format %q not one of: nested, expanded, compact, compressed", cfg.Sass.Format)
	}
	if cfg.Sass.Precision < 0 {
		return wcerrors.Configf("sass.precision must be >= 0, got %d", cfg.Sass.Precision)
	}
	for _, enc := range []string{cfg.Sass.Encoding, cfg.JS.Encoding, cfg.Template.Encoding} {
		if _, err := textenc.Encode("", enc); err != nil {
			return wcerrors.ConfigWrap(err, "invalid encoding")
		}
	}
	for _, files := range []map[string]string{cfg.Sass.Files, cfg.JS.Files, cfg.Template.Files} {
		for in, out := range files {
			if in == "" || out == "" {
				return wcerrors.Configf("file mappings must have non-empty input and output paths")
			}
			if filepath.IsAbs(in) || filepath.IsAbs(out) {
				return wcerrors.Configf("file mapping paths must be relative to the config directory: %s: %s", in, out)
			}
		}
	}
	return nil
}

const exampleConfig = `web-compile:
  sass:
    files:
      src/scss/main.scss: dist/css/main.[hash].css
    format: compressed
    precision: 5
    sourcemap: false
  js:
    files:
      src/js/app.js: dist/js/app.[hash].js
    comments: false
  jinja:
    files:
      src/templates/index.html.j2: index.html
    variables:
      site_name: My Site
  git_add: true
  continue_on_error: false
  exit_code: 3
`

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return wcerrors.Configf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}
	return nil
}
