package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvIncludeDrafts = "PAGEBUILDER_INCLUDE_DRAFTS"
	EnvConcurrency   = "PAGEBUILDER_CONCURRENCY"
	EnvHookErrors    = "PAGEBUILDER_HOOK_ERRORS"
	EnvLogLevel      = "PAGEBUILDER_LOG_LEVEL"
	EnvLogFormat     = "PAGEBUILDER_LOG_FORMAT"
)

// envFiles are tried in dir, most specific first. Values already present in
// the environment are never overridden, so .env.local wins over .env.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads the env files present in dir and returns their paths.
func LoadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvIncludeDrafts); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvIncludeDrafts, v, err)
		}
		c.IncludeDrafts = b
	}
	if v, ok := os.LookupEnv(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvConcurrency, v, err)
		}
		c.Concurrency = n
	}
	if v, ok := os.LookupEnv(EnvHookErrors); ok && v != "" {
		p, err := ParseHookErrorPolicy(v)
		if err != nil {
			return envError(EnvHookErrors, v, err)
		}
		c.HookErrors = p
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = LogLevel(v)
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = LogFormat(v)
	}
	return nil
}

func envError(name, value string, err error) error {
	return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid value for "+name).
		WithContext("variable", name).
		WithContext("value", value).
		Build()
}
