// Package monitor detects and remediates stuck pipeline jobs.
//
// A job is stuck when it is still pending or running but has not posted a
// progress update within the timeout window. The sweep marks such jobs as
// failed and propagates the failure to any result record linked to them, so
// nothing is left "processing forever". Detection is a pure read and is
// exposed separately from remediation so it can be tested and queried on its
// own. Remediation is a single filtered bulk update; jobs that are already
// terminal fall outside the filter, which makes repeated sweeps idempotent.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// DefaultTimeout is the staleness window applied when no override is given.
const DefaultTimeout = 60 * time.Minute

const resultTimeoutMessage = "Processing timeout - task did not complete within expected timeframe"

// Monitor sweeps the job store for stuck jobs.
type Monitor struct {
	jobs    storage.JobRepository
	results storage.ResultRepository
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor) error

// WithTimeout overrides the staleness window.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Monitor) error {
		if timeout <= 0 {
			return fmt.Errorf("monitor timeout must be positive, got %v", timeout)
		}
		m.timeout = timeout
		return nil
	}
}

// WithLogger sets the logger used by the sweep.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		m.logger = logger
		return nil
	}
}

// NewMonitor creates a job monitor over the given repositories.
func NewMonitor(jobs storage.JobRepository, results storage.ResultRepository, opts ...Option) (*Monitor, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job repository cannot be nil")
	}
	if results == nil {
		return nil, fmt.Errorf("result repository cannot be nil")
	}

	m := &Monitor{
		jobs:    jobs,
		results: results,
		timeout: DefaultTimeout,
		logger:  slog.Default().With("component", "monitor"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// jobTimeoutMessage returns the error message written to failed jobs.
// The timeout value is embedded so users know what window was exceeded.
func jobTimeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf("Job timed out (no progress for >%d minutes). Please try again.", int(timeout.Minutes()))
}

// DetectStale returns the jobs currently eligible for remediation: those
// still pending or running whose last update is at or before now−timeout.
// It never mutates job state.
func (m *Monitor) DetectStale(ctx context.Context) ([]*core.Job, error) {
	return m.jobs.FindStale(ctx, time.Now().Add(-m.timeout))
}

// Sweep fails every stale job and transitions its linked result record, if
// any, to failed. Returns the number of jobs failed. Safe to call repeatedly;
// a second sweep over the same job set fails nothing.
func (m *Monitor) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-m.timeout)

	failedIDs, err := m.jobs.FailStale(ctx, cutoff, jobTimeoutMessage(m.timeout))
	if err != nil {
		return 0, fmt.Errorf("failing stale jobs: %w", err)
	}
	if len(failedIDs) == 0 {
		return 0, nil
	}

	m.logger.Warn("failed stuck jobs",
		"count", len(failedIDs),
		"timeout", m.timeout)

	resultCount, err := m.results.FailByJob(ctx, failedIDs, resultTimeoutMessage)
	if err != nil {
		// Jobs are already failed; report the partial remediation.
		return len(failedIDs), fmt.Errorf("failing results for stuck jobs: %w", err)
	}
	if resultCount > 0 {
		m.logger.Info("failed results linked to stuck jobs", "count", resultCount)
	}

	return len(failedIDs), nil
}
