package batch

import "sync"

// HandleID names a callback target without keeping it alive.
type HandleID uint64

// NoHandle marks a callback without a target; it is always delivered.
const NoHandle HandleID = 0

// Liveness reports whether a callback target still exists.
type Liveness interface {
	Alive(id HandleID) bool
}

// Registry hands out handles for callback targets. Releasing a handle makes
// every pending result addressed to it drop silently at dispatch.
type Registry struct {
	mu    sync.RWMutex
	next  HandleID
	alive map[HandleID]struct{}
}

var _ Liveness = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{alive: make(map[HandleID]struct{})}
}

// Register allocates a new live handle.
func (r *Registry) Register() HandleID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.alive[r.next] = struct{}{}
	return r.next
}

// Release marks a handle dead. Releasing an unknown handle is a no-op.
func (r *Registry) Release(id HandleID) {
	r.mu.Lock()
	delete(r.alive, id)
	r.mu.Unlock()
}

// Alive implements Liveness.
func (r *Registry) Alive(id HandleID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.alive[id]
	return ok
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alive)
}
