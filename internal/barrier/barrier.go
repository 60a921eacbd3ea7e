// Package barrier provides a reusable N-party rendezvous point.
//
// A Barrier releases all waiting workers at once when the Nth worker
// arrives. It is single-use per round: Reset must be called before any
// worker of the next round calls Wait.
package barrier

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBroken is returned by Wait when the barrier can no longer release
// its waiters correctly.
var ErrBroken = errors.New("barrier broken")

type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	broken  error
}

// New returns a barrier for n parties. n must be at least 1.
func New(n int) *Barrier {
	if n < 1 {
		panic(fmt.Sprintf("barrier: invalid party count %d", n))
	}
	b := &Barrier{parties: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of workers the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Arrived returns how many workers have called Wait this round.
func (b *Barrier) Arrived() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived
}

// Reset zeroes the arrival count and clears a broken state.
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.arrived = 0
	b.broken = nil
}

// Break marks the barrier broken and wakes every waiter. Waiters and any
// later Wait callers in the same round get an error wrapping ErrBroken
// and cause.
func (b *Barrier) Break(cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken != nil {
		return
	}
	if cause == nil {
		cause = errors.New("no cause given")
	}
	b.broken = fmt.Errorf("%w: %w", ErrBroken, cause)
	b.cond.Broadcast()
}

// Wait blocks until all parties of the round have called Wait.
func (b *Barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken != nil {
		return b.broken
	}
	if b.arrived >= b.parties {
		return fmt.Errorf("%w: %d parties already arrived", ErrBroken, b.arrived)
	}

	b.arrived++
	if b.arrived == b.parties {
		b.cond.Broadcast()
		return nil
	}

	// Re-check on every wake; Broadcast from Break also lands here.
	for b.arrived < b.parties {
		if b.broken != nil {
			return b.broken
		}
		b.cond.Wait()
	}
	return nil
}
