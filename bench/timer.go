// Package bench times mesh animation rendering backends.
package bench

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoRecords is returned by Timer.Avg before any run.
var ErrNoRecords = errors.New("no records, run the timer first")

// Timer measures the wall time of repeated calls to a function.
type Timer struct {
	Repeat  int
	Records []time.Duration
}

// Run clears previous records and calls fn Repeat times, recording the
// duration of each call. It stops at the first error.
func (t *Timer) Run(fn func() error) error {
	if t.Repeat < 1 {
		return fmt.Errorf("timer repeat must be at least 1, got %d", t.Repeat)
	}
	t.Records = t.Records[:0]
	for i := 0; i < t.Repeat; i++ {
		start := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}
		t.Records = append(t.Records, time.Since(start))
	}
	return nil
}

// Avg returns the mean recorded duration.
func (t *Timer) Avg() (time.Duration, error) {
	if len(t.Records) == 0 {
		return 0, ErrNoRecords
	}
	var sum time.Duration
	for _, r := range t.Records {
		sum += r
	}
	return sum / time.Duration(len(t.Records)), nil
}

func (t *Timer) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Timer(repeat=%d, records=[", t.Repeat)
	for i, r := range t.Records {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%.6fs", r.Seconds())
	}
	sb.WriteString("], avg=")
	if avg, err := t.Avg(); err != nil {
		sb.WriteString("n/a")
	} else {
		fmt.Fprintf(&sb, "%.6fs", avg.Seconds())
	}
	sb.WriteByte(')')
	return sb.String()
}
