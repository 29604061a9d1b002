// Package event is a synchronous, in-process notification hub: a handler
// registered for a topic runs to completion, in registration order, before
// Publish returns. document.Document publishes a BufferChanged event, plus
// an OverlaysInvalidated event when overlays were dropped, at the end of
// every apply, and a ChunkLoaded event when a read or line scan loads a
// chunk (see internal/document/events.go); a handler never sees a second
// call re-enter while the first is still running — Document's own write
// lock is still held for the whole of Publish.
package event

import (
	"context"
	"sync"

	"github.com/keystorm-labs/buffercore/internal/event/topic"
)

// HandlerFunc handles one published event.
type HandlerFunc func(ctx context.Context, ev any) error

// TopicProvider is implemented by event payloads that know their own topic.
// internal/document/events.go's BufferChanged, OverlaysInvalidated, and
// ChunkLoaded all implement it via an EventTopic method.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Notifier is a minimal synchronous event bus: exact-topic subscription, no
// wildcard matching, no queueing, no background dispatch. A zero-value
// *Notifier is not usable; use NewNotifier. A nil *Notifier is treated by
// Publish as "no subscribers" so callers (document.Load in particular) may
// pass nil when nobody cares about events.
type Notifier struct {
	mu       sync.Mutex
	handlers map[topic.Topic][]HandlerFunc
}

// NewNotifier returns an empty Notifier ready to accept subscriptions.
func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[topic.Topic][]HandlerFunc)}
}

// Subscribe registers fn to run whenever an event whose EventTopic equals t
// is published, and returns a function that removes the subscription.
// Calling the returned function more than once is a no-op.
func (n *Notifier) Subscribe(t topic.Topic, fn HandlerFunc) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.handlers[t] = append(n.handlers[t], fn)
	idx := len(n.handlers[t]) - 1
	removed := false
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if removed {
			return
		}
		removed = true
		hs := n.handlers[t]
		n.handlers[t] = append(hs[:idx:idx], hs[idx+1:]...)
	}
}

// Publish runs every handler subscribed to ev's topic, synchronously and in
// subscription order, stopping at and returning the first handler error. If
// ev does not implement TopicProvider, or n is nil, or nobody subscribed to
// its topic, Publish is a no-op.
func (n *Notifier) Publish(ctx context.Context, ev any) error {
	if n == nil {
		return nil
	}
	tp, ok := ev.(TopicProvider)
	if !ok {
		return nil
	}

	n.mu.Lock()
	handlers := append([]HandlerFunc(nil), n.handlers[tp.EventTopic()]...)
	n.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
