package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "pagebuilder.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "pagebuilder.yaml", file)
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		err := FileSystemError("content root not found").Build()
		wrapped := fmt.Errorf("build: %w", err)

		assert.True(t, IsClassified(wrapped))
		assert.True(t, HasCategory(wrapped, CategoryFileSystem))
		assert.Equal(t, SeverityFatal, GetSeverity(wrapped))
		assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	})

	t.Run("Cause is reachable", func(t *testing.T) {
		cause := errors.New("template: unexpected EOF")
		err := WrapError(cause, CategoryRender, "render failed").WithContext("source", "a.md").Build()

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "[render:error] render failed")
	})
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
	}{
		{"ConfigError", ConfigError("x"), CategoryConfig, SeverityFatal},
		{"ValidationError", ValidationError("x"), CategoryValidation, SeverityWarning},
		{"FileSystemError", FileSystemError("x"), CategoryFileSystem, SeverityFatal},
		{"ParseError", ParseError("x"), CategoryParse, SeverityError},
		{"RenderError", RenderError("x"), CategoryRender, SeverityError},
		{"PluginError", PluginError("x"), CategoryPlugin, SeverityFatal},
		{"BuildError", BuildError("x"), CategoryBuild, SeverityFatal},
		{"InternalError", InternalError("x"), CategoryInternal, SeverityFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
		})
	}
}

func TestErrorContextMerge(t *testing.T) {
	ctx1 := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
	ctx2 := ErrorContext{}.Set("key2", "value2").Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	v, _ := merged.GetString("key1")
	assert.Equal(t, "value1", v)
	v, _ = merged.GetString("key2")
	assert.Equal(t, "value2", v)
	v, _ = merged.GetString("shared")
	assert.Equal(t, "overridden", v)

	original, _ := ctx1.GetString("shared")
	assert.Equal(t, "original", original)
}

func TestCLIErrorAdapter(t *testing.T) {
	var logs bytes.Buffer
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil))).WithOutput(&out)

	err := PluginError("hook failed").WithCause(errors.New("boom")).WithContext("hook", "beforeBuild").Build()
	code := adapter.Handle(err)

	assert.Equal(t, 13, code)
	assert.Equal(t, "Error: hook failed: boom\n", out.String())
	assert.Contains(t, logs.String(), "hook=beforeBuild")
	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 1, adapter.ExitCodeFor(errors.New("plain")))
	assert.Equal(t, 2, adapter.ExitCodeFor(ValidationError("bad").Build()))
}
