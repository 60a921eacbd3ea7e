package output

import (
	"fmt"
	"os"

	"github.com/tkjaer/echobench/internal/shared"
)

// FileOutput is the result log. Every record opens the file in append
// mode, writes one line and closes it again; concurrent workers rely on
// O_APPEND for short writes instead of a lock.
type FileOutput struct {
	path string
}

// NewFileOutput truncates (or creates) the result log at path.
func NewFileOutput(path string) (*FileOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("truncate result file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("truncate result file: %w", err)
	}
	return &FileOutput{path: path}, nil
}

// Path returns the result log location.
func (fo *FileOutput) Path() string {
	return fo.path
}

func (fo *FileOutput) RecordResult(r shared.WorkerResult) error {
	f, err := os.OpenFile(fo.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open result file: %w", err)
	}
	if _, err := f.WriteString(r.FormatLine()); err != nil {
		f.Close()
		return fmt.Errorf("append result: %w", err)
	}
	return f.Close()
}

func (fo *FileOutput) CompleteRound(round uint, workers int) {}

func (fo *FileOutput) AbortRun(reason string) {}

func (fo *FileOutput) Close() error {
	return nil
}
