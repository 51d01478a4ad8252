// Package enginelock serializes the engine's per-repository operations.
// The engine treats each repository as having one logical queue: only
// one rebase plan may execute against a given repository at a time,
// so every public engine operation acquires that repository's lock for
// its duration.
//
// Grounded on the teacher's sync.OnceValues use in
// internal/handler/restack/handler.go to lazily memoize a single
// load within the scope of one call, generalized here to a
// process-lifetime critical section keyed by repository path.
package enginelock

import (
	"path/filepath"
	"sync"
)

// Registry hands out per-repository locks, keyed by the repository's
// canonical filesystem path. The zero value is ready to use.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock blocks until the lock for repoPath is held, and returns a
// function that releases it. repoPath is cleaned with filepath.Clean,
// so spellings that differ only lexically (e.g. with or without a
// trailing slash) resolve to the same lock. Paths are not resolved on
// disk: a symlink and its target, or a relative and an absolute path,
// get different locks.
func (r *Registry) Lock(repoPath string) (unlock func()) {
	key := filepath.Clean(repoPath)

	r.mu.Lock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := r.locks[key]
	if !ok {
		lock = new(sync.Mutex)
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
