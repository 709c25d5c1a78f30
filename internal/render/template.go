package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/ohler55/ojg/jp"
)

// maxIncludeDepth bounds nested include calls so a self-including partial fails
// instead of recursing forever.
const maxIncludeDepth = 16

var errIncludeDepth = errors.New("include nesting too deep")

// TemplateEngine expands a template body against a context.
type TemplateEngine interface {
	Render(ctx context.Context, source, body string, data Context) (string, error)
}

// TextEngine renders bodies with text/template. Besides the builtins it
// provides:
//
//	include "name" [ctx]   render an include's body (current context by default)
//	markdown s             convert s through the markup converter
//	query "$.path" v       evaluate a JSONPath against v (first match, or all matches)
//	date "layout" t        format a time.Time
//	default d v            v unless it is nil or empty, else d
//
// Referencing a key the context lacks is an execution error; optional fields
// are read with index, as in {{ default "anon" (index . "author") }}.
type TextEngine struct {
	markup MarkupConverter
}

// NewTextEngine returns an engine whose markdown helper uses markup.
func NewTextEngine(markup MarkupConverter) *TextEngine {
	return &TextEngine{markup: markup}
}

// Render implements TemplateEngine.
func (e *TextEngine) Render(ctx context.Context, source, body string, data Context) (string, error) {
	return e.render(ctx, source, body, data, 0)
}

func (e *TextEngine) render(ctx context.Context, source, body string, data Context, depth int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmpl, err := template.New(source).
		Option("missingkey=error").
		Funcs(e.funcs(ctx, data, depth)).
		Parse(body)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (e *TextEngine) funcs(ctx context.Context, data Context, depth int) template.FuncMap {
	return template.FuncMap{
		"include": func(name string, args ...any) (string, error) {
			if depth+1 > maxIncludeDepth {
				return "", fmt.Errorf("%w at %q", errIncludeDepth, name)
			}
			inc, ok := data.Includes()[name]
			if !ok {
				return "", fmt.Errorf("include %q not found", name)
			}
			scope := data
			if len(args) > 0 {
				s, err := asContext(args[0])
				if err != nil {
					return "", fmt.Errorf("include %q: %w", name, err)
				}
				scope = s
			}
			return e.render(ctx, inc.Path, inc.Body, scope, depth+1)
		},
		"markdown": func(s string) (string, error) {
			if e.markup == nil {
				return s, nil
			}
			out, err := e.markup.Convert([]byte(s))
			return string(out), err
		},
		"query": func(path string, v any) (any, error) {
			x, err := jp.ParseString(path)
			if err != nil {
				return nil, err
			}
			matches := x.Get(v)
			switch len(matches) {
			case 0:
				return nil, nil
			case 1:
				return matches[0], nil
			default:
				return matches, nil
			}
		},
		"date": func(layout string, v any) (string, error) {
			switch t := v.(type) {
			case time.Time:
				return t.Format(layout), nil
			case string:
				return t, nil
			case nil:
				return "", nil
			default:
				return "", fmt.Errorf("date: unsupported value %T", v)
			}
		},
		"default": func(def, v any) any {
			if v == nil {
				return def
			}
			if s, ok := v.(string); ok && s == "" {
				return def
			}
			return v
		},
	}
}

func asContext(v any) (Context, error) {
	switch c := v.(type) {
	case Context:
		return c, nil
	case map[string]any:
		return Context(c), nil
	default:
		return nil, fmt.Errorf("expected a mapping context, got %T", v)
	}
}
