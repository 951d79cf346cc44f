// Package gate provides single-slot admission control for session-scoped
// operations. One operation may be in flight per instance; an overlapping
// call is rejected rather than queued.
package gate

import "sync"

type Gate struct {
	mu sync.Mutex
}

// TryAcquire claims the slot, reporting false if an operation holds it.
func (g *Gate) TryAcquire() bool {
	return g.mu.TryLock()
}

// Release frees the slot. Must be called exactly once per successful
// TryAcquire, on every exit path.
func (g *Gate) Release() {
	g.mu.Unlock()
}
