package site

import (
	"maps"
	"sync"
)

// Data is the flat namespace of loaded data files keyed by file name.
type Data struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewData returns an empty namespace.
func NewData() *Data {
	return &Data{values: make(map[string]any)}
}

// Set stores v under key and reports whether an existing value was replaced.
func (d *Data) Set(key string, v any) (replaced bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, replaced = d.values[key]
	d.values[key] = v
	return replaced
}

// Get returns the value under key.
func (d *Data) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

// String returns the value under key if it is a string.
func (d *Data) String(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Snapshot returns a shallow copy of the namespace.
func (d *Data) Snapshot() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.values)
}

func (d *Data) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values = make(map[string]any)
}
