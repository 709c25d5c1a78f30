// Package config loads pagebuilder configuration from an optional YAML file,
// .env files and PAGEBUILDER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConcurrency is the number of pages built at once when unset.
const DefaultConcurrency = 5

// Config is the complete build configuration.
type Config struct {
	ContentDir    string          `yaml:"content_dir"`
	DataDir       string          `yaml:"data_dir"`
	IncludesDir   string          `yaml:"includes_dir"`
	Concurrency   int             `yaml:"concurrency"`
	IncludeDrafts bool            `yaml:"include_drafts"`
	HookErrors    HookErrorPolicy `yaml:"hook_errors"`
	Logging       LoggingConfig   `yaml:"logging"`
	Markdown      MarkdownConfig  `yaml:"markdown"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MarkdownConfig tunes markdown detection and conversion.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	UnsafeHTML *bool    `yaml:"unsafe_html"`
}

// AllowsRawHTML reports whether raw HTML in markdown is passed through (default true).
func (m MarkdownConfig) AllowsRawHTML() bool {
	return m.UnsafeHTML == nil || *m.UnsafeHTML
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ContentDir:  "content",
		DataDir:     "data",
		IncludesDir: "includes",
		Concurrency: DefaultConcurrency,
		HookErrors:  HookErrorsFatal,
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		Markdown: MarkdownConfig{
			Extensions: []string{".md", ".markdown", ".mdown", ".mkd"},
		},
	}
}

// Load builds the configuration. An empty path skips the file and starts from
// Default. Relative directories in a file are resolved against the file's
// directory. .env files next to the config file (or in the working directory)
// are loaded first without overriding the process environment.
func Load(path string) (*Config, error) {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	if _, err := LoadEnvFiles(dir); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load env file").Build()
	}

	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
		cfg.resolvePaths(dir)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ferrors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").WithContext("path", path).Build()
	}

	expanded := os.ExpandEnv(string(raw))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").WithContext("path", path).Build()
	}
	return nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.ContentDir, &c.DataDir, &c.IncludesDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func (c *Config) normalize() {
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	if c.HookErrors == "" {
		c.HookErrors = HookErrorsFatal
	} else if p, err := ParseHookErrorPolicy(string(c.HookErrors)); err == nil {
		c.HookErrors = p
	}
	if len(c.Markdown.Extensions) == 0 {
		c.Markdown.Extensions = Default().Markdown.Extensions
	}
	for i, ext := range c.Markdown.Extensions {
		if ext != "" && ext[0] != '.' {
			c.Markdown.Extensions[i] = "." + ext
		}
	}
}

// String renders the effective configuration as YAML.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(out)
}
