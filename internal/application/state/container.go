// Package state holds the live group state behind a lock so orchestrators
// can read and replace it atomically. The state itself is a value; every
// mutation goes through Update with a pure transition function.
package state

import (
	"sync"

	"arisan/internal/domain/ledger"
)

// Container guards the current State.
type Container struct {
	mu sync.RWMutex
	st ledger.State
}

// NewContainer creates a container seeded with st.
func NewContainer(st ledger.State) *Container {
	return &Container{st: st}
}

// Current returns the state as of now.
// POST: Returned value is a snapshot; mutating it does not affect the container
func (c *Container) Current() ledger.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st
}

// Update applies fn atomically and installs its result.
// PRE: fn is pure over its input
// POST: On nil error the container holds fn's result; on error the
// state is unchanged
func (c *Container) Update(fn func(ledger.State) (ledger.State, error)) (ledger.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(c.st)
	if err != nil {
		return c.st, err
	}
	c.st = next
	return next, nil
}

// Replace installs st unconditionally. Used by the pull worker after a
// remote merge.
func (c *Container) Replace(st ledger.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st = st
}
