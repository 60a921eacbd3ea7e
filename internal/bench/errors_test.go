package bench

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestWorkerError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := error(&WorkerError{WorkerID: 12, Round: 1, Kind: ErrIntegrity, Err: cause})

	if !errors.Is(err, ErrIntegrity) {
		t.Error("errors.Is(err, ErrIntegrity) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrSetup) {
		t.Error("errors.Is(err, ErrSetup) = true")
	}

	wrapped := fmt.Errorf("round failed: %w", err)
	var we *WorkerError
	if !errors.As(wrapped, &we) || we.WorkerID != 12 {
		t.Errorf("errors.As() = %v, want worker 12", we)
	}

	want := "worker 12 (round 1): integrity failure: unexpected EOF"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&WorkerError{Kind: ErrSetup, Err: io.EOF}, "setup"},
		{&WorkerError{Kind: ErrSync, Err: io.EOF}, "sync"},
		{&WorkerError{Kind: ErrIntegrity, Err: io.EOF}, "integrity"},
		{&WorkerError{Kind: ErrSpawn, Err: io.EOF}, "spawn"},
		{fmt.Errorf("%w: resolve failed", ErrSetup), "setup"},
		{errors.New("other"), "unknown"},
		{nil, "unknown"},
	}

	for _, tt := range tests {
		if got := Reason(tt.err); got != tt.want {
			t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
