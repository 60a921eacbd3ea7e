package bench

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// StallTracker warns about workers whose cycle runs longer than a
// threshold. It only reports; stalled workers keep running.
type StallTracker struct {
	cache   *ttlcache.Cache[uint64, time.Time]
	stalled atomic.Int64
}

// NewStallTracker returns nil when threshold is 0. All methods accept a
// nil receiver.
func NewStallTracker(threshold time.Duration) *StallTracker {
	if threshold <= 0 {
		return nil
	}
	st := &StallTracker{
		cache: ttlcache.New(ttlcache.WithTTL[uint64, time.Time](threshold)),
	}
	st.cache.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[uint64, time.Time]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		st.stalled.Add(1)
		slog.Warn("Worker stalled",
			"worker", item.Key(),
			"running", time.Since(item.Value()).Round(time.Millisecond),
		)
	})
	return st
}

// Start runs the expiry loop in the background.
func (st *StallTracker) Start() {
	if st == nil {
		return
	}
	go st.cache.Start()
}

func (st *StallTracker) Stop() {
	if st == nil {
		return
	}
	st.cache.Stop()
}

// Track marks a worker as in flight.
func (st *StallTracker) Track(workerID uint64) {
	if st == nil {
		return
	}
	st.cache.Set(workerID, time.Now(), ttlcache.DefaultTTL)
}

// Done marks a worker as finished.
func (st *StallTracker) Done(workerID uint64) {
	if st == nil {
		return
	}
	st.cache.Delete(workerID)
}

// InFlight returns the number of tracked workers that are neither done
// nor reported as stalled.
func (st *StallTracker) InFlight() int {
	if st == nil {
		return 0
	}
	return st.cache.Len()
}

// Stalled returns how many workers exceeded the threshold so far.
func (st *StallTracker) Stalled() int64 {
	if st == nil {
		return 0
	}
	return st.stalled.Load()
}
