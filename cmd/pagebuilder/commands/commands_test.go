package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "content/index.md", "---\ntitle: Home\nlayout: base\ntags: [main]\n---\n# {{ .title }}\n")
	writeFile(t, root, "content/docs/getting-started.md", "---\ntags: [docs]\npermalink: /start/\n---\nRead {{ .data.site.name }}\n")
	writeFile(t, root, "content/wip.md", "---\ndraft: true\n---\nNot yet\n")
	writeFile(t, root, "data/site.yaml", "name: Example\n")
	writeFile(t, root, "includes/base.html", "<main>{{ .content }}</main>")
	return root
}

func sourceArgs(root string) []string {
	return []string{
		"--content", filepath.Join(root, "content"),
		"--data", filepath.Join(root, "data"),
		"--includes", filepath.Join(root, "includes"),
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestBuild_PrintsManifest(t *testing.T) {
	root := newSite(t)

	code, stdout, stderr := run(t, append([]string{"build", "--include-output"}, sourceArgs(root)...)...)
	require.Equal(t, 0, code, stderr)

	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &m))
	assert.NotEmpty(t, m.BuildID)
	assert.Equal(t, m.BuildID, m.Report.BuildID)
	assert.Equal(t, 3, m.Report.Discovered)
	assert.Equal(t, 1, m.Report.Drafts)
	require.Len(t, m.Pages, 2)

	byName := map[string]ManifestPage{}
	for _, p := range m.Pages {
		byName[p.Name] = p
	}
	home := byName["index"]
	assert.Equal(t, "Home", home.Title)
	assert.Equal(t, "base", home.Layout)
	assert.Equal(t, []string{"main"}, home.Tags)
	assert.Contains(t, home.Output, "<main>")
	assert.Equal(t, len(home.Output), home.Bytes)

	start := byName["docs/getting-started"]
	assert.Equal(t, "Getting Started", start.Title)
	assert.Equal(t, "/start/", start.Permalinks.Clean)
	assert.Equal(t, "/start/index.html", start.Permalinks.Filesystem)
	assert.Contains(t, start.Output, "Read Example")
}

func TestBuild_DraftsFlag(t *testing.T) {
	root := newSite(t)

	code, stdout, stderr := run(t, append([]string{"build", "--drafts"}, sourceArgs(root)...)...)
	require.Equal(t, 0, code, stderr)

	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &m))
	assert.Len(t, m.Pages, 3)
	for _, p := range m.Pages {
		assert.Empty(t, p.Output)
	}
}

func TestBuild_WritesManifestAndMetricsFiles(t *testing.T) {
	root := newSite(t)
	manifest := filepath.Join(root, "out", "manifest.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(manifest), 0o750))
	metricsFile := filepath.Join(root, "out", "build.prom")

	args := append([]string{"build", "--pretty", "-o", manifest, "--metrics-file", metricsFile}, sourceArgs(root)...)
	code, stdout, stderr := run(t, args...)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	raw, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"build_id\"")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pagebuilder_pages_total")
	assert.Contains(t, string(prom), "pagebuilder_build_outcomes_total")
}

func TestBuild_MissingContentRoot(t *testing.T) {
	root := t.TempDir()

	code, _, stderr := run(t, "build", "--content", filepath.Join(root, "missing"))
	assert.Equal(t, 11, code)
	assert.Contains(t, stderr, "Error:")
}

func TestValidate_ReportsInvalidFrontmatter(t *testing.T) {
	root := newSite(t)
	writeFile(t, root, "content/broken.md", "---\ntitle: 5\ntags: notalist\n---\nBody\n")

	code, stdout, _ := run(t, append([]string{"validate"}, sourceArgs(root)...)...)
	assert.Equal(t, 2, code)
	assert.Contains(t, stdout, "broken.md: tags: expected sequence of strings")
	assert.Contains(t, stdout, "title: expected string, got number")
	assert.Contains(t, stdout, "4 files checked, 2 valid, 1 drafts, 1 invalid")
}

func TestValidate_CleanContent(t *testing.T) {
	root := newSite(t)

	code, stdout, stderr := run(t, append([]string{"validate"}, sourceArgs(root)...)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "0 invalid")
}

func TestMain_Version(t *testing.T) {
	code, stdout, _ := run(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "pagebuilder")
}

func TestMain_UnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "publish")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error:")
}

func TestMain_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "pagebuilder.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("content_dir: content\nunknown_key: true\n"), 0o600))

	code, _, stderr := run(t, "--config", cfg, "build")
	assert.Equal(t, 7, code)
	assert.Contains(t, stderr, "failed to parse config file")
}

func TestMain_ConfigDrivesBuild(t *testing.T) {
	root := newSite(t)
	cfg := filepath.Join(root, "pagebuilder.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("concurrency: 2\nlogging:\n  level: error\n  format: json\n"), 0o600))

	code, stdout, stderr := run(t, "-c", cfg, "build")
	require.Equal(t, 0, code, stderr)

	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(stdout), &m))
	assert.Len(t, m.Pages, 2)
}

func TestValidate_PrintsPathsRelativeToContentRoot(t *testing.T) {
	root := newSite(t)
	writeFile(t, root, "content/posts/broken.md", "---\ntags: notalist\n---\nBody\n")
	t.Chdir(root)

	code, stdout, _ := run(t, "validate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stdout, filepath.Join("posts", "broken.md")+": tags: expected sequence of strings")
	assert.NotContains(t, stdout, root)
}

func TestPipelineOptions_HookPolicy(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, plugin.Fatal, pipelineOptions(cfg).HookPolicy)

	cfg.HookErrors = config.HookErrorsLog
	assert.Equal(t, plugin.LogAndContinue, pipelineOptions(cfg).HookPolicy)
}

func TestMain_HookErrorsFromEnvironment(t *testing.T) {
	t.Setenv("PAGEBUILDER_HOOK_ERRORS", "bogus")
	code, _, stderr := run(t, "validate", "--content", t.TempDir())
	assert.Equal(t, 7, code)
	assert.Contains(t, stderr, "Error:")
}
