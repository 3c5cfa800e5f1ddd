// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Notifier fans a refresh signal out to all subscribed dashboard sessions.
// Each signal carries the ID of the refresh run that produced it, so
// listeners can log which refresh they re-rendered for.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan string]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives a refresh run ID when the
// cached results change. The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan string {
	ch := make(chan string, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan string) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends the refresh run ID to all listeners.
// Non-blocking: a listener with a pending signal keeps the older one;
// it re-renders from the cache either way.
func (n *Notifier) Broadcast(runID string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- runID:
		default:
		}
	}
}
