// Package bucket is a named registry of repositories, one per site.
package bucket

import (
	"sort"
	"sync"
)

// Bucket maps names to repositories. Safe for concurrent use.
type Bucket[T any] struct {
	mu    sync.RWMutex
	repos map[string]T
}

// New creates an empty bucket.
func New[T any]() *Bucket[T] {
	return &Bucket[T]{repos: make(map[string]T)}
}

// Add registers repo under name, replacing any previous one.
func (b *Bucket[T]) Add(name string, repo T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.repos[name] = repo
}

// Get returns the repository registered under name.
func (b *Bucket[T]) Get(name string) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	repo, ok := b.repos[name]
	return repo, ok
}

// Names returns the registered names, sorted.
func (b *Bucket[T]) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.repos))
	for n := range b.repos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered repositories.
func (b *Bucket[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.repos)
}
