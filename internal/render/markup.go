package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkupConverter turns a markdown body into page markup.
type MarkupConverter interface {
	Convert(src []byte) ([]byte, error)
}

// MarkdownOptions tunes the goldmark converter.
type MarkdownOptions struct {
	HardWraps bool
	// SafeHTML drops raw HTML embedded in markdown instead of passing it through.
	SafeHTML bool
}

type goldmarkConverter struct {
	md goldmark.Markdown
}

// NewMarkdown returns a goldmark converter with GFM and heading IDs enabled.
func NewMarkdown(opts MarkdownOptions) MarkupConverter {
	var htmlOpts []renderer.Option
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if !opts.SafeHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &goldmarkConverter{md: md}
}

func (g *goldmarkConverter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
