package ws

import "sync"

// Registry maps a connected user to its single live transport handle. At
// most one handle is registered per user; registering again replaces the
// prior one. The registry owns the user→handle mapping exclusively: other
// components only hold a handle for the duration of one send attempt.
type Registry struct {
	mu      sync.RWMutex
	handles map[int]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[int]Handle)}
}

// Register stores the handle for the user, replacing any prior
// registration. The displaced handle is returned so the caller can close
// it; closing is not done here.
func (r *Registry) Register(userID int, handle Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior := r.handles[userID]
	r.handles[userID] = handle
	return prior
}

// Unregister removes the user's handle. Unknown users are a no-op.
func (r *Registry) Unregister(userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, userID)
}

// UnregisterHandle removes the user's entry only if the registered handle
// is still the given one, so a stale session ending late cannot evict a
// replacement connection. Reports whether an entry was removed.
func (r *Registry) UnregisterHandle(userID int, handle Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.handles[userID]; ok && current == handle {
		delete(r.handles, userID)
		return true
	}
	return false
}

// Handle returns the live handle for the user. A missing entry means the
// user is not currently reachable, not an error.
func (r *Registry) Handle(userID int) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[userID]
	return handle, ok
}

// IsOnline reports whether the user has a registered handle.
func (r *Registry) IsOnline(userID int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[userID]
	return ok
}

// OnlineCount returns the number of registered users.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
