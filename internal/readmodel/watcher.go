// Package readmodel holds the client-side mirrors of server state. The
// server is the single writer; these types observe it through polling
// and expose snapshots to the UI layer.
package readmodel

import (
	"context"
	"sync"
	"time"

	"github.com/elvongray/shipping-labels/internal/domain"
)

// JobAPI is the slice of the API client a JobWatcher needs.
type JobAPI interface {
	GetImport(ctx context.Context, id string) (*domain.ImportJob, error)
}

// JobWatcher polls one import job until it settles. A failed poll keeps
// the last good snapshot and records the error; the next successful
// poll clears it.
type JobWatcher struct {
	client   JobAPI
	jobID    string
	interval time.Duration

	mu      sync.RWMutex
	job     *domain.ImportJob
	lastErr error

	done   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJobWatcher creates a watcher for one job. Start begins polling.
func NewJobWatcher(client JobAPI, jobID string, interval time.Duration) *JobWatcher {
	return &JobWatcher{
		client:   client,
		jobID:    jobID,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start fetches the job immediately and then polls on the configured
// interval until the job reaches a terminal status or ctx is canceled.
func (w *JobWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

func (w *JobWatcher) run(ctx context.Context) {
	defer w.wg.Done()

	if w.fetch(ctx) {
		close(w.done)
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.fetch(ctx) {
				close(w.done)
				return
			}
		}
	}
}

// fetch polls once and reports whether the job has settled.
func (w *JobWatcher) fetch(ctx context.Context) bool {
	job, err := w.client.GetImport(ctx, w.jobID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.lastErr = err
		return false
	}
	w.job = job
	w.lastErr = nil
	return job.Status.IsTerminal()
}

// Snapshot returns the last known job and the error of the most recent
// failed poll, if any. The job may be nil before the first successful
// poll.
func (w *JobWatcher) Snapshot() (*domain.ImportJob, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.job, w.lastErr
}

// Settled reports whether the job has reached a terminal status.
func (w *JobWatcher) Settled() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Done is closed once the job settles.
func (w *JobWatcher) Done() <-chan struct{} {
	return w.done
}

// Close stops polling. It does not close the done channel.
func (w *JobWatcher) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
