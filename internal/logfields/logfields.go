package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyName       = "name"
	KeyTag        = "tag"
	KeyHook       = "hook"
	KeyPlugin     = "plugin"
	KeyVersion    = "version"
	KeyLayout     = "layout"
	KeyDigest     = "digest"
	KeyPermalink  = "permalink"
	KeyCount      = "count"
	KeyFields     = "fields"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func File(f string) slog.Attr           { return slog.String(KeyFile, f) }
func Name(n string) slog.Attr           { return slog.String(KeyName, n) }
func Tag(t string) slog.Attr            { return slog.String(KeyTag, t) }
func Hook(h string) slog.Attr           { return slog.String(KeyHook, h) }
func Plugin(p string) slog.Attr         { return slog.String(KeyPlugin, p) }
func Version(v string) slog.Attr        { return slog.String(KeyVersion, v) }
func Layout(l string) slog.Attr         { return slog.String(KeyLayout, l) }
func Digest(d string) slog.Attr         { return slog.String(KeyDigest, d) }
func Permalink(p string) slog.Attr      { return slog.String(KeyPermalink, p) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Fields(names []string) slog.Attr   { return slog.Any(KeyFields, names) }
func Since(start time.Time) slog.Attr   { return DurationMS(float64(time.Since(start).Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
