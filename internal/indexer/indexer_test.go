package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/pagebuilder/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestIndex_AppendsTaggedContentInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "---\ntitle: A\ntags: [blog, news]\npermalink: /a/\nalias: /old-a/\n---\nA body\n")
	b := writeFile(t, dir, "b.md", "---\ntags: [blog]\n---\nB body\n")
	c := writeFile(t, dir, "c.md", "no frontmatter\n")

	cols := site.NewCollections()
	res, err := New(cols, Options{}).Index(context.Background(), []string{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Files)
	assert.Equal(t, 3, res.Indexed)
	assert.Empty(t, res.Invalid)

	blog := cols.Get("blog")
	require.Len(t, blog, 2)
	assert.Equal(t, a, blog[0].FilePath)
	assert.Equal(t, b, blog[1].FilePath)
	assert.Equal(t, "A body\n", blog[0].Content)
	assert.Equal(t, "/a/", blog[0].OutputPath)
	assert.Equal(t, "/old-a/", blog[0].AliasPath)
	assert.Empty(t, blog[1].OutputPath)
	assert.Equal(t, false, blog[1].Frontmatter["draft"])
	assert.Equal(t, []string{"blog", "news"}, cols.Tags())
}

func TestIndex_InvalidFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.md", "---\ntitle: [1, 2]\ndraft: maybe\ntags: [blog]\n---\nx\n")
	broken := writeFile(t, dir, "broken.md", "---\ntitle: x\n")
	good := writeFile(t, dir, "good.md", "---\ntags: [blog]\n---\nx\n")

	cols := site.NewCollections()
	res, err := New(cols, Options{}).Index(context.Background(), []string{bad, broken, good})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Indexed)
	require.Len(t, res.Invalid, 2)
	assert.Equal(t, bad, res.Invalid[0].Path)
	require.Len(t, res.Invalid[0].Fields, 2)
	assert.Equal(t, "draft", res.Invalid[0].Fields[0].Field)
	assert.Equal(t, "title", res.Invalid[0].Fields[1].Field)
	assert.Equal(t, broken, res.Invalid[1].Path)
	assert.Empty(t, res.Invalid[1].Fields)
	assert.Error(t, res.Invalid[1].Err)

	require.Len(t, cols.Get("blog"), 1)
	assert.Equal(t, good, cols.Get("blog")[0].FilePath)
}

func TestIndex_Drafts(t *testing.T) {
	dir := t.TempDir()
	draft := writeFile(t, dir, "d.md", "---\ndraft: true\ntags: [blog]\n---\nx\n")

	excluded := site.NewCollections()
	res, err := New(excluded, Options{}).Index(context.Background(), []string{draft})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Drafts)
	assert.Equal(t, 0, excluded.Len("blog"))

	included := site.NewCollections()
	res, err = New(included, Options{IncludeDrafts: true}).Index(context.Background(), []string{draft})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Drafts)
	assert.Equal(t, 1, included.Len("blog"))
}

func TestIndex_ReadFailureIsFatal(t *testing.T) {
	_, err := New(site.NewCollections(), Options{}).Index(context.Background(), []string{filepath.Join(t.TempDir(), "gone.md")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadFailed)
}

func TestIndex_Canceled(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(site.NewCollections(), Options{}).Index(ctx, []string{a})
	assert.ErrorIs(t, err, context.Canceled)
}
