// Package identity supplies the current user and session lifecycle events
// consumed by the store controller.
package identity

import "sync"

// Session identifies the currently authenticated user.
type Session struct {
	UserID string
	Name   string
}

// Listener receives session changes: ok is true on sign-in and false on
// sign-out (in which case the session value is zero).
type Listener func(session Session, ok bool)

// Provider exposes the current user, if any, plus change notifications.
type Provider interface {
	// Current returns the active session, or ok=false when anonymous.
	Current() (Session, bool)
	// Subscribe registers a listener for sign-in/sign-out events and returns
	// a cancel function. The listener is not called with the current state.
	Subscribe(fn Listener) (cancel func())
}

// MemoryProvider is an in-process Provider driven by explicit SignIn/SignOut
// calls, typically one per connected view.
type MemoryProvider struct {
	mu        sync.Mutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{listeners: make(map[int]Listener)}
}

func (p *MemoryProvider) Current() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Session{}, false
	}
	return *p.current, true
}

func (p *MemoryProvider) Subscribe(fn Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// SignIn makes the given user the active session and notifies listeners.
func (p *MemoryProvider) SignIn(userID, name string) {
	session := Session{UserID: userID, Name: name}
	p.mu.Lock()
	p.current = &session
	listeners := p.snapshotListenersLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(session, true)
	}
}

// SignOut clears the active session and notifies listeners.
func (p *MemoryProvider) SignOut() {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	p.current = nil
	listeners := p.snapshotListenersLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(Session{}, false)
	}
}

// Listeners run outside the lock so they may call back into the provider.
func (p *MemoryProvider) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}
