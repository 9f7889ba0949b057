// Package presence maps a user id to the one live realtime session that can
// relay to them
package presence

import (
	"context"
	"sync"

	"kydu/internal/core/notify"
)

// Handle is a live session as the registry sees it
// Relay must not block past ctx; enqueueing for write counts as success
type Handle interface {
	ID() string
	Relay(ctx context.Context, p notify.Payload) error
}

// Registry holds at most one handle per user
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Handle
	observe  func(n int)
}

// Option configures a Registry
type Option func(*Registry)

// WithObserver reports the live session count after every change
// it runs under the registry lock and must not call back into it
func WithObserver(fn func(n int)) Option {
	return func(r *Registry) { r.observe = fn }
}

// New returns an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{sessions: make(map[string]Handle)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register makes h the live handle for userID and returns the handle it
// superseded, if any; closing that handle is the caller's job
func (r *Registry) Register(userID string, h Handle) (prev Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.sessions[userID]
	r.sessions[userID] = h
	r.changed()
	if prev != nil && prev.ID() == h.ID() {
		return nil
	}
	return prev
}

// Unregister removes userID only while h is still the registered handle
// a late disconnect from a superseded session leaves the newer one alone
func (r *Registry) Unregister(userID string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[userID]
	if !ok || h == nil || cur.ID() != h.ID() {
		return false
	}
	delete(r.sessions, userID)
	r.changed()
	return true
}

// Lookup returns the live handle for userID
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.Lock()
	h, ok := r.sessions[userID]
	r.mu.Unlock()
	return h, ok
}

// Len reports how many users are online
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) changed() {
	if r.observe != nil {
		r.observe(len(r.sessions))
	}
}
