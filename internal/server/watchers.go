package server

import (
	"context"
	"sync"

	"github.com/foliopress/foliopress/internal/activation"
)

// watcherRegistry tracks the activation watcher for each in-flight
// deployment so the status endpoint can serve progress snapshots while
// the poll loop runs in the background.
type watcherRegistry struct {
	mu      sync.Mutex
	entries map[string]*watcherEntry
}

type watcherEntry struct {
	watcher *activation.Watcher
	cancel  context.CancelFunc
}

func newWatcherRegistry() *watcherRegistry {
	return &watcherRegistry{
		entries: make(map[string]*watcherEntry),
	}
}

func (r *watcherRegistry) Put(id string, w *activation.Watcher, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.entries[id]; ok && prev.cancel != nil {
		prev.cancel()
	}
	r.entries[id] = &watcherEntry{watcher: w, cancel: cancel}
}

func (r *watcherRegistry) Get(id string) (*activation.Watcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return entry.watcher, true
}

// Evict drops the entry for id if it still holds w. A newer watcher
// registered under the same id stays put.
func (r *watcherRegistry) Evict(id string, w *activation.Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.watcher != w {
		return
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	delete(r.entries, id)
}

func (r *watcherRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *watcherRegistry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		if entry.cancel != nil {
			entry.cancel()
		}
		delete(r.entries, id)
	}
}
