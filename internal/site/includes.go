package site

import (
	"sort"
	"sync"
)

// Include is a layout or partial: frontmatter plus template body.
// It is immutable after load and shared by every page that uses it.
type Include struct {
	Name        string
	Path        string
	Frontmatter map[string]any
	Body        string
}

// Includes is the name → Include table.
type Includes struct {
	mu    sync.RWMutex
	table map[string]*Include
}

// NewIncludes returns an empty include table.
func NewIncludes() *Includes {
	return &Includes{table: make(map[string]*Include)}
}

// Set stores inc under name and returns the include it replaced, if any.
func (i *Includes) Set(name string, inc *Include) (replaced *Include) {
	i.mu.Lock()
	defer i.mu.Unlock()
	replaced = i.table[name]
	i.table[name] = inc
	return replaced
}

// Get looks up an include by name.
func (i *Includes) Get(name string) (*Include, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	inc, ok := i.table[name]
	return inc, ok
}

// Names returns all include names, sorted.
func (i *Includes) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := make([]string, 0, len(i.table))
	for n := range i.table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a shallow copy of the table.
func (i *Includes) Snapshot() map[string]*Include {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]*Include, len(i.table))
	for k, v := range i.table {
		out[k] = v
	}
	return out
}

func (i *Includes) reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.table = make(map[string]*Include)
}
