// Package render expands template bodies and converts markdown to markup.
//
// Both operations are stateless; a Renderer can be shared by any number of
// concurrent page builds.
package render

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMarkdownExtensions are the file extensions treated as markdown.
var DefaultMarkdownExtensions = []string{".md", ".markdown", ".mdown", ".mkd"}

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Engine             TemplateEngine
	Markup             MarkupConverter
	MarkdownExtensions []string
}

// Renderer combines a template engine with a markup converter.
type Renderer struct {
	engine       TemplateEngine
	markup       MarkupConverter
	markdownExts map[string]struct{}
}

// New builds a Renderer.
func New(opts Options) *Renderer {
	markup := opts.Markup
	if markup == nil {
		markup = NewMarkdown(MarkdownOptions{})
	}
	engine := opts.Engine
	if engine == nil {
		engine = NewTextEngine(markup)
	}
	exts := opts.MarkdownExtensions
	if len(exts) == 0 {
		exts = DefaultMarkdownExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return &Renderer{engine: engine, markup: markup, markdownExts: set}
}

// Template renders body against data. Failures are returned as *Error naming source.
func (r *Renderer) Template(ctx context.Context, source, body string, data Context) (string, error) {
	out, err := r.engine.Render(ctx, source, body, data)
	if err != nil {
		return "", &Error{Source: source, Stage: "template", Err: err}
	}
	return out, nil
}

// Markup converts body when filePath has a markdown extension and returns it
// unchanged otherwise.
func (r *Renderer) Markup(body, filePath string) (string, error) {
	if !r.IsMarkdown(filePath) {
		return body, nil
	}
	out, err := r.markup.Convert([]byte(body))
	if err != nil {
		return "", &Error{Source: filePath, Stage: "markup", Err: err}
	}
	return string(out), nil
}

// IsMarkdown reports whether path has a markdown extension.
func (r *Renderer) IsMarkdown(path string) bool {
	_, ok := r.markdownExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// MarkdownExtensions returns the configured markdown extensions.
func (r *Renderer) MarkdownExtensions() []string {
	exts := make([]string, 0, len(r.markdownExts))
	for e := range r.markdownExts {
		exts = append(exts, e)
	}
	slices.Sort(exts)
	return exts
}
