package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporter_Monotonic(t *testing.T) {
	var seen []int
	r := newReporter(func(progress int, message string) {
		seen = append(seen, progress)
	})

	r.report(5, "a")
	r.report(40, "b")
	r.report(30, "late update") // must not go backwards
	r.report(95, "c")
	r.report(150, "overflow") // capped at 100

	assert.Equal(t, []int{5, 40, 40, 95, 100}, seen)
}

func TestReporter_MonotonicUnderConcurrency(t *testing.T) {
	var seen []int
	r := newReporter(func(progress int, message string) {
		seen = append(seen, progress)
	})

	// Hammer the reporter from many goroutines, the way a section pool
	// larger than one delivers updates. The callback must never observe
	// the percentage moving backwards, regardless of delivery order.
	var wg sync.WaitGroup
	for g := 0; g < 50; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				r.report((g+i)%progressComplete, "section done")
			}
		}(g)
	}
	wg.Wait()

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("callback observed regression %d -> %d at index %d", seen[i-1], seen[i], i)
		}
	}
}

func TestReporter_NilFunc(t *testing.T) {
	r := newReporter(nil)
	// Must not panic
	r.report(50, "ignored")
}

func TestSectionProgress(t *testing.T) {
	// Ramp spans 40..95 across the sections
	assert.Equal(t, 40, sectionProgress(0, 4))
	assert.Equal(t, 67, sectionProgress(2, 4))
	assert.Equal(t, 95, sectionProgress(4, 4))
	assert.Equal(t, 40, sectionProgress(0, 0))
}
