package sse

import (
	"github.com/GTDGit/gtd_storefront/internal/store"
)

// Notifier receives committed store changes.
type Notifier interface {
	Notify(e store.Event)
}

// Source is a store that publishes change events.
type Source interface {
	Subscribe(fn store.Listener) func()
}

// HubNotifier implements Notifier using the SSE Hub. Events of the skipped
// topics are not broadcast.
type HubNotifier struct {
	hub  *Hub
	skip map[string]bool
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub, skipTopics ...string) *HubNotifier {
	skip := make(map[string]bool, len(skipTopics))
	for _, t := range skipTopics {
		skip[t] = true
	}
	return &HubNotifier{hub: hub, skip: skip}
}

func (n *HubNotifier) Notify(e store.Event) {
	if n.skip[e.Topic] || n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&Message{
		Event:     e.Topic + "." + string(e.Action),
		Topic:     e.Topic,
		Action:    string(e.Action),
		ID:        e.ID,
		Payload:   e.Payload,
		Timestamp: e.At,
	})
}

// Attach subscribes n to every source and returns a func that detaches it.
func Attach(n Notifier, sources ...Source) func() {
	cancels := make([]func(), 0, len(sources))
	for _, src := range sources {
		cancels = append(cancels, src.Subscribe(n.Notify))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) Notify(store.Event) {}
