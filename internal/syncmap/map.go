package syncmap

import (
	"sort"
	"sync"
)

// Map is a string keyed map safe for concurrent use.
type Map[T any] struct {
	mux sync.RWMutex
	m   map[string]T
}

// New creates an empty map.
func New[T any]() *Map[T] {
	return &Map[T]{
		m: make(map[string]T),
	}
}

// Get returns the value stored under key, or the zero value.
func (r *Map[T]) Get(key string) T {
	v, _ := r.Lookup(key)
	return v
}

// Lookup returns the value stored under key and whether it was present.
func (r *Map[T]) Lookup(key string) (T, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	v, ok := r.m[key]
	return v, ok
}

// Set adds or replaces the value stored under key.
func (r *Map[T]) Set(key string, value T) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.m[key] = value
}

// Delete removes key.
func (r *Map[T]) Delete(key string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	delete(r.m, key)
}

// Keys returns the keys in ascending order.
func (r *Map[T]) Keys() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]string, 0, len(r.m))
	for k := range r.m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Len returns the number of entries.
func (r *Map[T]) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.m)
}
