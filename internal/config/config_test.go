package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagebuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.False(t, cfg.IncludeDrafts)
	assert.Equal(t, HookErrorsFatal, cfg.HookErrors)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.True(t, cfg.Markdown.AllowsRawHTML())
	assert.Equal(t, []string{".md", ".markdown", ".mdown", ".mkd"}, cfg.Markdown.Extensions)
}

func TestLoad_FileOverridesDefaultsAndResolvesPaths(t *testing.T) {
	t.Setenv("SITE_ROOT", "/srv/site")
	path := writeConfig(t, `
content_dir: pages
data_dir: ${SITE_ROOT}/data
concurrency: 2
hook_errors: LOG
logging:
  level: DEBUG
  format: json
markdown:
  extensions: [md, .txt]
  unsafe_html: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "pages"), cfg.ContentDir)
	assert.Equal(t, "/srv/site/data", cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "includes"), cfg.IncludesDir)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, HookErrorsLog, cfg.HookErrors)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, []string{".md", ".txt"}, cfg.Markdown.Extensions)
	assert.False(t, cfg.Markdown.AllowsRawHTML())
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "contnet_dir: x\n"},
		{"zero concurrency", "concurrency: 0\n"},
		{"bad policy", "hook_errors: ignore\n"},
		{"malformed yaml", "concurrency: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvIncludeDrafts, "true")
	t.Setenv(EnvConcurrency, "9")
	t.Setenv(EnvHookErrors, "log")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load(writeConfig(t, "concurrency: 3\n"))
	require.NoError(t, err)
	assert.True(t, cfg.IncludeDrafts)
	assert.Equal(t, 9, cfg.Concurrency)
	assert.Equal(t, HookErrorsLog, cfg.HookErrors)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv(EnvIncludeDrafts, "sometimes")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvIncludeDrafts)
}

func TestLoadEnvFiles_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PB_TEST_A=from-env\nPB_TEST_B=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("PB_TEST_A=from-local\n"), 0o600))
	t.Setenv("PB_TEST_B", "from-process")
	t.Setenv("PB_TEST_A", "")
	require.NoError(t, os.Unsetenv("PB_TEST_A"))

	loaded, err := LoadEnvFiles(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, "from-local", os.Getenv("PB_TEST_A"))
	assert.Equal(t, "from-process", os.Getenv("PB_TEST_B"))
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("loud"))
	assert.Equal(t, slog.LevelDebug, LogLevelDebug.SlogLevel())
	assert.Equal(t, LogFormatText, NormalizeLogFormat("xml"))

	p, err := ParseHookErrorPolicy("Continue")
	require.NoError(t, err)
	assert.Equal(t, HookErrorsLog, p)
}

func TestConfig_StringIsLoadableYAML(t *testing.T) {
	cfg := Default()
	cfg.HookErrors = HookErrorsLog
	cfg.Concurrency = 3

	dir := t.TempDir()
	path := filepath.Join(dir, "pagebuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg.String()), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, HookErrorsLog, loaded.HookErrors)
	assert.Equal(t, 3, loaded.Concurrency)
	assert.Equal(t, filepath.Join(dir, "content"), loaded.ContentDir)
}
