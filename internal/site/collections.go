package site

import (
	"sort"
	"sync"
)

// Entry is one indexed content file inside a tag collection.
type Entry struct {
	Frontmatter map[string]any
	Content     string
	FilePath    string
	// OutputPath mirrors frontmatter.permalink when present.
	OutputPath string
	// AliasPath mirrors frontmatter.alias when present.
	AliasPath string
}

// Collections maps tag names to entries in encounter order.
type Collections struct {
	mu    sync.RWMutex
	byTag map[string][]Entry
}

// NewCollections returns an empty collection set.
func NewCollections() *Collections {
	return &Collections{byTag: make(map[string][]Entry)}
}

// Append adds e to the collection for tag, creating it if absent.
func (c *Collections) Append(tag string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byTag[tag] = append(c.byTag[tag], e)
}

// Get returns a copy of the entries for tag.
func (c *Collections) Get(tag string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := c.byTag[tag]
	if entries == nil {
		return nil
	}
	return append([]Entry(nil), entries...)
}

// Len returns the number of entries tagged with tag.
func (c *Collections) Len(tag string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byTag[tag])
}

// Tags returns every tag name, sorted.
func (c *Collections) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tags := make([]string, 0, len(c.byTag))
	for t := range c.byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Snapshot returns a shallow copy of the tag → entries map.
func (c *Collections) Snapshot() map[string][]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]Entry, len(c.byTag))
	for tag, entries := range c.byTag {
		out[tag] = entries[:len(entries):len(entries)]
	}
	return out
}

// Delete removes a whole collection.
func (c *Collections) Delete(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byTag, tag)
}

func (c *Collections) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byTag = make(map[string][]Entry)
}
