// Package schema validates page frontmatter against the fixed content schema.
//
// Validation is pure: the input map is never modified. Accepted frontmatter is
// returned as a new map with defaults filled in (draft=false, tags=[]) and
// typed values normalized (date → time.Time, tags → []string). Keys outside
// the schema pass through untouched.
package schema

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"
)

// Field names known to the schema.
const (
	FieldTitle     = "title"
	FieldDate      = "date"
	FieldDraft     = "draft"
	FieldPermalink = "permalink"
	FieldAlias     = "alias"
	FieldTags      = "tags"
)

// FieldError describes one violated schema field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "invalid frontmatter: " + strings.Join(parts, "; ")
}

// FieldNames returns the names of the violated fields.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

type rule struct {
	field string
	// normalize converts an accepted value or reports why it is rejected.
	normalize func(v any) (any, error)
	// fallback supplies a default when the field is absent; nil means none.
	fallback func() any
}

var rules = []rule{
	{field: FieldTitle, normalize: asString},
	{field: FieldDate, normalize: asDate},
	{field: FieldDraft, normalize: asBool, fallback: func() any { return false }},
	{field: FieldPermalink, normalize: asString},
	{field: FieldAlias, normalize: asString},
	{field: FieldTags, normalize: asStringList, fallback: func() any { return []string{} }},
}

// Validate checks fm against the schema and returns the normalized copy.
func Validate(fm map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fm)+2)
	maps.Copy(out, fm)

	var violations []FieldError
	for _, r := range rules {
		v, ok := fm[r.field]
		if !ok || v == nil {
			delete(out, r.field)
			if r.fallback != nil {
				out[r.field] = r.fallback()
			}
			continue
		}
		normalized, err := r.normalize(v)
		if err != nil {
			violations = append(violations, FieldError{Field: r.field, Message: err.Error()})
			continue
		}
		out[r.field] = normalized
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool { return violations[i].Field < violations[j].Field })
		return nil, &ValidationError{Fields: violations}
	}
	return out, nil
}

func asString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %s", typeName(v))
	}
	return s, nil
}

func asBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %s", typeName(v))
	}
	return b, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asDate(v any) (any, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", d)
	default:
		return nil, fmt.Errorf("expected date, got %s", typeName(v))
	}
}

func asStringList(v any) (any, error) {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: expected string, got %s", i, typeName(item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected sequence of strings, got %s", typeName(v))
	}
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "sequence"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
