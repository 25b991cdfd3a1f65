package application

import (
	"sync"

	"github.com/ericfisherdev/autoreview/internal/domain/model"
)

// SessionListener is notified when the session for uid changes. A nil
// session means the user signed out.
type SessionListener func(uid string, session *model.Session)

// SessionHub fans session lifecycle changes out to subscribers. It replaces
// ambient auth state: dependents subscribe explicitly and must call the
// returned function on teardown.
type SessionHub struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]SessionListener
}

// NewSessionHub creates an empty hub.
func NewSessionHub() *SessionHub {
	return &SessionHub{listeners: make(map[int]SessionListener)}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (h *SessionHub) Subscribe(fn SessionListener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish notifies every current subscriber. Listeners run outside the hub
// lock so they may subscribe or unsubscribe.
func (h *SessionHub) Publish(uid string, session *model.Session) {
	h.mu.RLock()
	listeners := make([]SessionListener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(uid, session)
	}
}

// Len returns the number of active subscriptions.
func (h *SessionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
