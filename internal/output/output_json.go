package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/tkjaer/echobench/internal/shared"
)

// JSONOutput writes every result as one JSON object per line
type JSONOutput struct {
	mu       sync.Mutex
	file     *os.File
	enc      *json.Encoder
	toStdout bool
}

// NewJSONOutput writes to filename, or to stdout when filename is "-" or
// empty.
func NewJSONOutput(filename string) (*JSONOutput, error) {
	if filename == "" || filename == "-" {
		return &JSONOutput{
			file:     os.Stdout,
			enc:      json.NewEncoder(os.Stdout),
			toStdout: true,
		}, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &JSONOutput{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

func (j *JSONOutput) RecordResult(r shared.WorkerResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(r)
}

func (j *JSONOutput) CompleteRound(round uint, workers int) {}

func (j *JSONOutput) AbortRun(reason string) {}

func (j *JSONOutput) Close() error {
	if j.toStdout {
		return nil
	}
	return j.file.Close()
}
