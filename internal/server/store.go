package server

import (
	"sort"
)

// Store is the endpoint table served for the lifetime of the process.
//
// It is built once before the listener opens and never changes afterwards,
// so concurrent readers share the map without locking. Anything that needs
// live updates must build a new Store and swap the reference instead of
// writing into this one.
type Store struct {
	endpoints map[string][]byte
	keys      []string
}

// NewStore takes ownership of endpoints; the caller must not modify the map
// or its values afterwards.
func NewStore(endpoints map[string][]byte) *Store {
	if endpoints == nil {
		endpoints = map[string][]byte{}
	}
	keys := make([]string, 0, len(endpoints))
	for k := range endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Store{endpoints: endpoints, keys: keys}
}

// Get returns the content for key. The returned slice is shared and must be
// treated as read-only.
func (s *Store) Get(key string) ([]byte, bool) {
	content, ok := s.endpoints[key]
	return content, ok
}

func (s *Store) Len() int {
	return len(s.endpoints)
}

// Keys returns a sorted copy of the endpoint keys.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}
