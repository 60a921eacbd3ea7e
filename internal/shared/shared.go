package shared

import (
	"fmt"
	"regexp"
	"time"
)

// WorkerResult is one completed round trip. It lives only until every
// output has recorded it.
type WorkerResult struct {
	WorkerID  uint64    `json:"worker_id"`
	Round     uint      `json:"round"`
	Elapsed   int64     `json:"elapsed_us"` // microseconds, after ElapsedDivisor
	Raw       int64     `json:"raw_us"`     // measured microseconds before division
	Timestamp time.Time `json:"timestamp"`  // when the reply was read
}

// ResultLinePattern matches one line of the result log, without the newline.
var ResultLinePattern = regexp.MustCompile(`^Thread \d+ \d+$`)

// FormatLine renders the result log line, including the trailing newline.
func (r WorkerResult) FormatLine() string {
	return fmt.Sprintf("Thread %d %d\n", r.WorkerID, r.Elapsed)
}

// ElapsedDivisor scales one worker's measured round trip by the total
// number of rounds. It is a flat divisor of a single sample, not an
// average over samples; the result log has always been written this way
// and existing comparisons depend on it.
func ElapsedDivisor(elapsed time.Duration, rounds uint) int64 {
	if rounds == 0 {
		rounds = 1
	}
	return elapsed.Microseconds() / int64(rounds)
}
