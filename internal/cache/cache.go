// Package cache is the content-addressed Page store shared by concurrent page
// builds.
//
// Writes are idempotent: two builds of the same digest compute the same Page,
// so concurrent Puts for one key are safe and the last one wins.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Digest returns the hex SHA-256 of raw file bytes.
func Digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Store maps content digests to completed pages.
type Store struct {
	pages sync.Map
	size  atomic.Int64
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Get returns the page stored under digest.
func (s *Store) Get(digest string) (*page.Page, bool) {
	v, ok := s.pages.Load(digest)
	if !ok {
		return nil, false
	}
	return v.(*page.Page), true
}

// Put stores p under digest, replacing any previous entry.
func (s *Store) Put(digest string, p *page.Page) {
	if _, loaded := s.pages.Swap(digest, p); !loaded {
		s.size.Add(1)
	}
}

// Len returns the number of cached pages.
func (s *Store) Len() int {
	return int(s.size.Load())
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.pages.Range(func(k, _ any) bool {
		if _, loaded := s.pages.LoadAndDelete(k); loaded {
			s.size.Add(-1)
		}
		return true
	})
}
