package shared

import (
	"testing"
	"time"
)

func TestWorkerResult_FormatLine(t *testing.T) {
	tests := []struct {
		name   string
		result WorkerResult
		want   string
	}{
		{
			name:   "zero",
			result: WorkerResult{},
			want:   "Thread 0 0\n",
		},
		{
			name:   "typical",
			result: WorkerResult{WorkerID: 1234, Elapsed: 87, Raw: 870},
			want:   "Thread 1234 87\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.result.FormatLine()
			if got != tt.want {
				t.Errorf("FormatLine() = %q, want %q", got, tt.want)
			}
			if !ResultLinePattern.MatchString(got[:len(got)-1]) {
				t.Errorf("FormatLine() = %q does not match ResultLinePattern", got)
			}
		})
	}
}

func TestResultLinePattern(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Thread 1 2", true},
		{"Thread 140234 0", true},
		{"Thread -1 2", false},
		{"Thread 1", false},
		{"thread 1 2", false},
		{"Thread 1 2 3", false},
		{"Thread a 2", false},
	}

	for _, tt := range tests {
		if got := ResultLinePattern.MatchString(tt.line); got != tt.want {
			t.Errorf("ResultLinePattern.MatchString(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

// The divisor applies to a single sample; these values pin that arithmetic.
func TestElapsedDivisor(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		rounds  uint
		want    int64
	}{
		{"ten rounds", 1000 * time.Microsecond, 10, 100},
		{"single round", 1000 * time.Microsecond, 1, 1000},
		{"truncates toward zero", 999 * time.Microsecond, 10, 99},
		{"sub-microsecond", 800 * time.Nanosecond, 10, 0},
		{"below divisor", 9 * time.Microsecond, 10, 0},
		{"zero rounds treated as one", 50 * time.Microsecond, 0, 50},
		{"zero elapsed", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedDivisor(tt.elapsed, tt.rounds); got != tt.want {
				t.Errorf("ElapsedDivisor(%v, %d) = %d, want %d", tt.elapsed, tt.rounds, got, tt.want)
			}
		})
	}
}
