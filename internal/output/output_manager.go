package output

import (
	"errors"

	"github.com/tkjaer/echobench/internal/shared"
)

// Output interface for different output types. RecordResult is called
// concurrently by every worker of a round.
type Output interface {
	RecordResult(r shared.WorkerResult) error
	CompleteRound(round uint, workers int)
	AbortRun(reason string)
	Close() error
}

// OutputManager manages multiple outputs
type OutputManager struct {
	outputs []Output
}

// Register adds an output. Not safe to call once a run has started.
func (om *OutputManager) Register(o Output) {
	om.outputs = append(om.outputs, o)
}

// RecordResult hands the result to every output in registration order and
// stops at the first failure.
func (om *OutputManager) RecordResult(r shared.WorkerResult) error {
	for _, o := range om.outputs {
		if err := o.RecordResult(r); err != nil {
			return err
		}
	}
	return nil
}

func (om *OutputManager) CompleteRound(round uint, workers int) {
	for _, o := range om.outputs {
		o.CompleteRound(round, workers)
	}
}

func (om *OutputManager) AbortRun(reason string) {
	for _, o := range om.outputs {
		o.AbortRun(reason)
	}
}

func (om *OutputManager) Close() error {
	var errs []error
	for _, o := range om.outputs {
		errs = append(errs, o.Close())
	}
	return errors.Join(errs...)
}
