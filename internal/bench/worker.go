package bench

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tkjaer/echobench/internal/shared"
)

// Worker performs one synchronized round trip against the echo server.
type Worker struct {
	id    uint64
	round uint
	b     *Benchmark
}

func (w *Worker) fail(kind, err error) error {
	return &WorkerError{WorkerID: w.id, Round: w.round, Kind: kind, Err: err}
}

// Run waits at the barrier, then connects, sends the probe, times the
// echo, validates it and records the result. Any failure is returned
// unretried.
func (w *Worker) Run(ctx context.Context) error {
	b := w.b

	if err := b.barrier.Wait(); err != nil {
		return w.fail(ErrSync, err)
	}
	b.state.CompareAndSwap(int32(StateBarrierWait), int32(StateExecuting))
	if b.trace.afterBarrier != nil {
		b.trace.afterBarrier(w.id)
	}

	b.stalls.Track(w.id)
	defer b.stalls.Done(w.id)

	conn, err := b.dialer.DialContext(ctx, "tcp", b.addr.String())
	if err != nil {
		return w.fail(ErrSetup, err)
	}
	slog.Debug("Connected", "worker", w.id, "local", conn.LocalAddr().String())

	// Abandon blocking I/O as soon as the round is aborted elsewhere.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if b.trace.beforeSend != nil {
		b.trace.beforeSend(w.id)
	}

	reply := make([]byte, b.probe.MaxReply())

	start := time.Now()
	if _, err := conn.Write(b.probe.message); err != nil {
		closeConn(conn)
		return w.fail(ErrSetup, err)
	}
	slog.Debug("Sent probe", "worker", w.id, "bytes", b.probe.Len())

	n, readErr := conn.Read(reply)
	end := time.Now()
	slog.Debug("Received reply", "worker", w.id, "bytes", n)

	if err := closeConn(conn); err != nil {
		slog.Debug("Close failed", "worker", w.id, "error", err)
	}

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return w.fail(ErrSetup, readErr)
	}
	if err := b.probe.Check(reply[:n]); err != nil {
		return w.fail(ErrIntegrity, err)
	}

	elapsed := end.Sub(start)
	result := shared.WorkerResult{
		WorkerID:  w.id,
		Round:     w.round,
		Elapsed:   shared.ElapsedDivisor(elapsed, b.rounds),
		Raw:       elapsed.Microseconds(),
		Timestamp: end,
	}
	if err := b.outputs.RecordResult(result); err != nil {
		return w.fail(ErrSetup, err)
	}

	slog.Debug("Worker done", "worker", w.id, "round", w.round, "elapsed_us", result.Raw)
	return nil
}
