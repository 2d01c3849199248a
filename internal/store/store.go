// Package store holds the in-memory state containers behind the storefront
// and the back-office. Each container guards its collections with a mutex,
// hands out copies, and notifies subscribers after every mutation.
package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned by update and delete when the id is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate")
	// ErrQuotaExhausted is returned when a voucher has no redemptions left.
	ErrQuotaExhausted = errors.New("quota exhausted")
	// ErrNotLoggedIn is returned when a session has no identity to update.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Clock returns the current time. Stores take one so tests can pin dates.
type Clock func() time.Time

// Action names the kind of mutation an Event reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionLoaded  Action = "loaded"
	ActionCleared Action = "cleared"
)

// Event describes one committed mutation. Payload is a copy and is safe to
// retain.
type Event struct {
	Topic   string    `json:"topic"`
	Action  Action    `json:"action"`
	ID      string    `json:"id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Listener receives events from a store.
type Listener func(Event)

type subscribers struct {
	mu   sync.RWMutex
	next int
	fns  map[int]Listener
}

func (s *subscribers) add(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]Listener)
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// publish must be called without the owning store's lock held.
func (s *subscribers) publish(e Event) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}

type idCounter struct {
	next int
}

func (c *idCounter) seedPast(id int) {
	if id >= c.next {
		c.next = id + 1
	}
}

func (c *idCounter) take() int {
	if c.next == 0 {
		c.next = 1
	}
	id := c.next
	c.next++
	return id
}
