package scheduler

import "sync"

// RunGuard is the process-wide mutual-exclusion flag for detection runs.
// It deliberately lives outside any component's lifetime: the thing that
// triggers a run can come and go independently of the run itself. A second
// trigger during an active run is dropped, never queued.
type RunGuard struct {
	mu     sync.Mutex
	active bool
}

// GlobalGuard is the one guard every production scheduler shares.
var GlobalGuard = &RunGuard{}

// TryAcquire claims the run slot. Returns false when a run is already active.
func (g *RunGuard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return false
	}
	g.active = true
	return true
}

// Release frees the slot. Callers defer this immediately after a successful
// TryAcquire so panics anywhere in the pipeline cannot leak the lock.
func (g *RunGuard) Release() {
	g.mu.Lock()
	g.active = false
	g.mu.Unlock()
}

// Active reports whether a run currently holds the slot.
func (g *RunGuard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}
