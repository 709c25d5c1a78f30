// Package page holds the Page model produced by the build pipeline and the
// pure helpers used to derive its permalinks and presentation fields.
package page

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter/schema"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Permalinks are the three addresses of a page. Alias is empty when the page
// has no redirect source.
type Permalinks struct {
	Clean      string `json:"clean"`
	Filesystem string `json:"filesystem"`
	Alias      string `json:"alias,omitempty"`
}

// Page is one rendered unit. It is mutated in place while being built and must
// be treated as immutable once returned by the pipeline.
type Page struct {
	// Path is the absolute source path.
	Path string
	// Name is the logical name: the path relative to the content root,
	// slash-separated, extension stripped.
	Name        string
	Frontmatter map[string]any
	Body        string
	// Layout points into the include table; nil when the page is unwrapped.
	Layout      *site.Include
	Output      string
	Permalinks  Permalinks
	Digest      string
	Fingerprint string
}

// New returns an empty page for the given source.
func New(path, name, digest string) *Page {
	return &Page{
		Path:        path,
		Name:        name,
		Digest:      digest,
		Frontmatter: map[string]any{},
		Permalinks:  DefaultPermalinks(name),
	}
}

// LogicalName derives the page name of file relative to root.
func LogicalName(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// DefaultPermalinks are used when a page sets no permalink: every such page
// lands on the site root and is written as /<name>.html.
func DefaultPermalinks(name string) Permalinks {
	return Permalinks{Clean: "/", Filesystem: "/" + name + ".html"}
}

// CleanPath normalizes a rendered permalink so it always begins with "/".
func CleanPath(permalink string) string {
	permalink = strings.TrimSpace(permalink)
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return permalink
}

// FilesystemPath is the output file for a clean permalink: the clean path as a
// directory holding index.html.
func FilesystemPath(clean string) string {
	if !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	return clean + "index.html"
}

// Title returns the frontmatter title, if any.
func (p *Page) Title() string {
	s, _ := p.Frontmatter[schema.FieldTitle].(string)
	return s
}

// DisplayTitle returns Title, falling back to the title-cased last segment of
// the logical name ("getting-started" → "Getting Started").
func (p *Page) DisplayTitle() string {
	if t := p.Title(); t != "" {
		return t
	}
	base := path.Base(p.Name)
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}

// Tags returns the normalized tag list.
func (p *Page) Tags() []string {
	tags, _ := p.Frontmatter[schema.FieldTags].([]string)
	return tags
}

// Date returns the page date when set.
func (p *Page) Date() (time.Time, bool) {
	t, ok := p.Frontmatter[schema.FieldDate].(time.Time)
	return t, ok
}

// Draft reports whether the page is flagged as a draft.
func (p *Page) Draft() bool {
	d, _ := p.Frontmatter[schema.FieldDraft].(bool)
	return d
}

// LayoutName is the layout requested by the page frontmatter.
func (p *Page) LayoutName() string {
	s, _ := p.Frontmatter["layout"].(string)
	return s
}
