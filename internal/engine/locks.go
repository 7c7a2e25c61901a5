package engine

import (
	"sort"
	"sync"
)

// keyedLocks hands out one mutex per key, so independent sessions progress
// concurrently while everything touching one session serializes. Entries are
// reference-counted and dropped when the last holder releases.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[string]*lockEntry)}
}

// lock blocks until the key's mutex is held and returns the release func.
func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	e := k.entries[key]
	if e == nil {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// lockAll acquires several keys in sorted order to avoid lock inversion.
// Duplicate keys are collapsed; locking the same key twice would deadlock.
func (k *keyedLocks) lockAll(keys ...string) func() {
	seen := make(map[string]bool, len(keys))
	sorted := make([]string, 0, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			sorted = append(sorted, key)
		}
	}
	sort.Strings(sorted)
	releases := make([]func(), 0, len(sorted))
	for _, key := range sorted {
		releases = append(releases, k.lock(key))
	}
	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}
