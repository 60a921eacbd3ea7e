package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tkjaer/echobench/internal/barrier"
	"github.com/tkjaer/echobench/internal/config"
	"github.com/tkjaer/echobench/internal/output"
	"github.com/tkjaer/echobench/internal/target"
)

// State is the driver's position within a round.
type State int32

const (
	StateRoundStart State = iota
	StateSpawning
	StateBarrierWait
	StateExecuting
	StateJoinComplete
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateRoundStart:
		return "ROUND_START"
	case StateSpawning:
		return "SPAWNING"
	case StateBarrierWait:
		return "BARRIER_WAIT"
	case StateExecuting:
		return "EXECUTING"
	case StateJoinComplete:
		return "JOIN_COMPLETE"
	case StateDone:
		return "DONE"
	case StateAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// trace holds optional callbacks used to observe worker progress, and an
// optional cap on the worker group below the worker count.
type trace struct {
	afterBarrier func(workerID uint64)
	beforeSend   func(workerID uint64)
	spawnLimit   int
}

// Benchmark runs rounds of barrier-synchronized workers against one
// echo server.
type Benchmark struct {
	endpoint  target.Endpoint
	resolver  target.Resolver
	forceIPv4 bool
	forceIPv6 bool
	addr      netip.AddrPort

	probe   Probe
	rounds  uint
	workers int

	barrier *barrier.Barrier
	dialer  *net.Dialer
	outputs *output.OutputManager
	stalls  *StallTracker

	state atomic.Int32
	trace trace
}

// NewBenchmark validates args and truncates the result file. The result
// file is always the first output; extra outputs receive each result
// after it has been written there. NewBenchmark owns extra: on error they
// are closed before it returns, otherwise Close releases them.
func NewBenchmark(a config.Args, extra ...output.Output) (*Benchmark, error) {
	fail := func(err error) (*Benchmark, error) {
		for _, o := range extra {
			if cerr := o.Close(); cerr != nil {
				slog.Debug("Failed to close output", "error", cerr)
			}
		}
		return nil, err
	}

	if err := a.Validate(); err != nil {
		return fail(err)
	}

	probe, err := NewProbe(a.Message, int(a.MaxReply))
	if err != nil {
		return fail(err)
	}

	fileOut, err := output.NewFileOutput(a.Output)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrSetup, err))
	}
	om := &output.OutputManager{}
	om.Register(fileOut)
	for _, o := range extra {
		om.Register(o)
	}

	b := &Benchmark{
		endpoint:  target.Endpoint{Host: a.Host, Port: uint16(a.Port)},
		forceIPv4: a.ForceIPv4,
		forceIPv6: a.ForceIPv6,
		probe:     probe,
		rounds:    a.Rounds,
		workers:   int(a.Workers),
		barrier:   barrier.New(int(a.Workers)),
		dialer:    newDialer(),
		outputs:   om,
		stalls:    NewStallTracker(a.StallWarn),
	}
	return b, nil
}

// State returns the current driver state.
func (b *Benchmark) State() State {
	return State(b.state.Load())
}

func (b *Benchmark) setState(s State) {
	old := State(b.state.Swap(int32(s)))
	slog.Debug("Benchmark state", "from", old.String(), "to", s.String())
}

// Run executes every round in order and stops at the first failure.
func (b *Benchmark) Run(ctx context.Context) error {
	addr, err := b.endpoint.Resolve(ctx, b.resolver, b.forceIPv4, b.forceIPv6)
	if err != nil {
		return b.abort(fmt.Errorf("%w: %w", ErrSetup, err))
	}
	b.addr = addr

	slog.Debug("Starting benchmark",
		"target", b.addr.String(),
		"rounds", b.rounds,
		"workers", b.workers,
		"parties", b.barrier.Parties(),
		"probe_bytes", b.probe.Len(),
	)

	b.stalls.Start()
	defer b.stalls.Stop()

	for round := range b.rounds {
		if err := ctx.Err(); err != nil {
			return b.abort(fmt.Errorf("%w: %w", ErrSync, context.Cause(ctx)))
		}
		if err := b.runRound(ctx, round); err != nil {
			return b.abort(err)
		}
		b.outputs.CompleteRound(round, b.workers)
		slog.Info("Round complete", "round", round, "workers", b.workers)
	}

	b.setState(StateDone)
	if n := b.stalls.Stalled(); n > 0 {
		slog.Warn("Benchmark finished with stalled workers", "stalled", n)
	}
	return nil
}

func (b *Benchmark) abort(err error) error {
	b.setState(StateAborted)
	b.outputs.AbortRun(Reason(err))
	slog.Error("Benchmark aborted", "reason", Reason(err), "error", err)
	return err
}

// runRound spawns one worker per barrier party and waits for all of them.
// The first failure cancels the round; the barrier is broken so no worker
// is left waiting for peers that will never arrive.
func (b *Benchmark) runRound(ctx context.Context, round uint) error {
	b.setState(StateRoundStart)
	b.barrier.Reset()

	rctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	// Deferred after cancel so a clean round never breaks the barrier.
	stop := context.AfterFunc(rctx, func() {
		b.barrier.Break(context.Cause(rctx))
	})
	defer stop()

	limit := b.workers
	if b.trace.spawnLimit > 0 {
		limit = b.trace.spawnLimit
	}
	var g errgroup.Group
	g.SetLimit(limit)

	b.setState(StateSpawning)
	for i := range b.workers {
		w := &Worker{
			id:    uint64(round)*uint64(b.workers) + uint64(i),
			round: round,
			b:     b,
		}
		// The barrier cannot open before the last worker exists.
		if i == b.workers-1 {
			b.setState(StateBarrierWait)
		}
		// TryGo refuses only when the group is capped below the worker
		// count, in which case the barrier would never open.
		started := g.TryGo(func() error {
			err := w.Run(rctx)
			if err != nil {
				cancel(err)
			}
			return err
		})
		if !started {
			spawnErr := &WorkerError{
				WorkerID: w.id,
				Round:    round,
				Kind:     ErrSpawn,
				Err:      errors.New("worker group at capacity"),
			}
			cancel(spawnErr)
			g.Wait()
			return spawnErr
		}
	}

	if err := g.Wait(); err != nil {
		// A cancelled run is a sync failure, whatever the workers saw
		// when their I/O was cut short.
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrSync, context.Cause(ctx))
		}
		// Report the worker that cancelled the round, not a peer that
		// failed because of the cancellation.
		var we *WorkerError
		if cause := context.Cause(rctx); errors.As(cause, &we) {
			return cause
		}
		return err
	}
	b.setState(StateJoinComplete)
	return nil
}

// Close releases all outputs.
func (b *Benchmark) Close() error {
	return b.outputs.Close()
}
