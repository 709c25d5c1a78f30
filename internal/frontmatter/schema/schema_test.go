package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_FillsDefaults(t *testing.T) {
	out, err := Validate(map[string]any{"title": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out["title"])
	assert.Equal(t, false, out["draft"])
	assert.Equal(t, []string{}, out["tags"])
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"tags": []any{"a"}}
	_, err := Validate(in)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, in["tags"])
	_, hasDraft := in["draft"]
	assert.False(t, hasDraft)
}

func TestValidate_Deterministic(t *testing.T) {
	in := map[string]any{"title": "x", "tags": []any{"b", "a"}, "layout": "base"}
	first, err := Validate(in)
	require.NoError(t, err)
	for range 10 {
		again, err := Validate(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestValidate_NormalizesTypes(t *testing.T) {
	out, err := Validate(map[string]any{
		"date":      "2024-05-06",
		"tags":      []any{"go", "blog"},
		"permalink": "/blog/post/",
		"layout":    "post",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), out["date"])
	assert.Equal(t, []string{"go", "blog"}, out["tags"])
	assert.Equal(t, "/blog/post/", out["permalink"])
	assert.Equal(t, "post", out["layout"])
}

func TestValidate_ReportsEveryViolatedField(t *testing.T) {
	_, err := Validate(map[string]any{
		"title": 42,
		"draft": "yes",
		"tags":  "blog",
		"date":  "not a date",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"date", "draft", "tags", "title"}, verr.FieldNames())
	assert.Contains(t, err.Error(), "draft: expected boolean, got string")
}

func TestValidate_RejectsNonStringTag(t *testing.T) {
	_, err := Validate(map[string]any{"tags": []any{"ok", 3}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tags", verr.Fields[0].Field)
	assert.Contains(t, verr.Fields[0].Message, "element 1")
}

func TestValidate_NullTreatedAsAbsent(t *testing.T) {
	out, err := Validate(map[string]any{"title": nil, "tags": nil})
	require.NoError(t, err)
	_, hasTitle := out["title"]
	assert.False(t, hasTitle)
	assert.Equal(t, []string{}, out["tags"])
}
