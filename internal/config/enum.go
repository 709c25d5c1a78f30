package config

import (
	"fmt"
	"sort"
	"strings"
)

// normalizer maps case-insensitive spellings onto enum values.
type normalizer[T comparable] struct {
	values   map[string]T
	fallback T
	keys     []string
}

func newNormalizer[T comparable](values map[string]T, fallback T) *normalizer[T] {
	n := &normalizer[T]{values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		k = clean(k)
		n.values[k] = v
		n.keys = append(n.keys, k)
	}
	sort.Strings(n.keys)
	return n
}

// normalize returns the fallback for unknown input.
func (n *normalizer[T]) normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

func (n *normalizer[T]) parse(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HookErrorPolicy controls whether a failing plugin hook aborts the build.
type HookErrorPolicy string

const (
	HookErrorsFatal HookErrorPolicy = "fatal"
	HookErrorsLog   HookErrorPolicy = "log"
)

var hookErrorNormalizer = newNormalizer(map[string]HookErrorPolicy{
	"fatal":    HookErrorsFatal,
	"log":      HookErrorsLog,
	"continue": HookErrorsLog,
}, HookErrorsFatal)

// ParseHookErrorPolicy accepts fatal, log or continue.
func ParseHookErrorPolicy(raw string) (HookErrorPolicy, error) {
	return hookErrorNormalizer.parse(raw)
}
