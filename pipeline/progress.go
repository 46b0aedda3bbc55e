package pipeline

import "sync"

// Progress milestones. Indexing dominates wall-clock time for large
// documents, so it owns the first 40 percent; synthesis ramps the rest.
const (
	progressChunked  = 5
	progressIndexed  = 40
	progressComplete = 100
)

// ProgressFunc receives progress updates during a pipeline run.
// Implementations must not block; they are called inline.
type ProgressFunc func(progress int, message string)

// reporter delivers progress updates, enforcing monotonicity: a late or
// out-of-order report can never move the percentage backwards.
type reporter struct {
	fn   ProgressFunc
	last int
	mu   sync.Mutex
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn}
}

func (r *reporter) report(progress int, message string) {
	if r.fn == nil {
		return
	}

	// The callback runs under the lock so concurrent reports cannot reach
	// it out of order; ProgressFunc must not block.
	r.mu.Lock()
	defer r.mu.Unlock()
	if progress > progressComplete {
		progress = progressComplete
	}
	if progress < r.last {
		progress = r.last
	}
	r.last = progress
	r.fn(progress, message)
}

// sectionProgress maps "done of total sections" onto the synthesis ramp
// between the indexed and complete milestones.
func sectionProgress(done, total int) int {
	if total <= 0 {
		return progressIndexed
	}
	span := progressComplete - progressIndexed - 5 // leave room for finalization
	return progressIndexed + span*done/total
}
