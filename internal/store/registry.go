package store

import "sync"

// Registry maps session ids to per-session containers.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	newFn func() T
}

// NewRegistry creates a Registry that builds fresh containers with newFn.
func NewRegistry[T any](newFn func() T) *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
		newFn: newFn,
	}
}

// Open returns the container for id, creating it when absent.
func (r *Registry[T]) Open(id string) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		return item
	}
	item := r.newFn()
	r.items[id] = item
	return item
}

// Get returns the container for id.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// Close drops the container for id.
func (r *Registry[T]) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// Range calls fn for every open container until fn returns false. fn must
// not open or close containers.
func (r *Registry[T]) Range(fn func(id string, item T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, item := range r.items {
		if !fn(id, item) {
			return
		}
	}
}

// Len returns the number of open containers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// SessionRegistry tracks storefront customer sessions.
type SessionRegistry = Registry[*Session]

// AdminSessionRegistry tracks back-office sessions.
type AdminSessionRegistry = Registry[*AdminSession]

// NewSessionRegistry creates an empty customer session registry.
func NewSessionRegistry() *SessionRegistry {
	return NewRegistry(NewSession)
}

// NewAdminSessionRegistry creates an empty back-office session registry.
func NewAdminSessionRegistry() *AdminSessionRegistry {
	return NewRegistry(NewAdminSession)
}
