package service

import (
	"context"
	"sync"
	"time"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
)

// PollJob periodically pulls the engine's session list into the snapshot
// store. The job is idle until Start is called.
type PollJob struct {
	engine    engine.Client
	snapshots *SnapshotStore
	rates     *RateEstimator
	conflicts *ConflictResolver
	log       *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPollJob creates a PollJob feeding snapshots, rates, and handled-record
// pruning from periodic engine polls.
func NewPollJob(eng engine.Client, snapshots *SnapshotStore, rates *RateEstimator, conflicts *ConflictResolver, log *logger.Logger) *PollJob {
	return &PollJob{
		engine:    eng,
		snapshots: snapshots,
		rates:     rates,
		conflicts: conflicts,
		log:       log,
	}
}

// Start stops any previously running job, then launches a background
// goroutine that polls every interval. If interval is zero or negative it
// defaults to 5 seconds. The goroutine exits when ctx is cancelled or Stop is
// called.
func (j *PollJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		j.pollOnce(jobCtx)
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.pollOnce(jobCtx)
			}
		}
	}()
}

// Run implements workers.Worker: it starts the job with the default interval
// on a background context.
func (j *PollJob) Run() {
	j.Start(context.Background(), 0)
}

// Stop cancels the background goroutine's context and blocks until the
// goroutine has fully exited. Safe to call when the job is not running
// (no-op in that case).
func (j *PollJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *PollJob) pollOnce(ctx context.Context) {
	sessions, err := j.engine.ListSessions(ctx)
	if err != nil {
		j.log.Warn().Err(err).Msg("session poll failed")
		return
	}

	// Rates and bookkeeping track every poll; the snapshot store decides for
	// itself whether listeners need to hear about it.
	for i := range sessions {
		j.rates.Observe(sessions[i])
		j.conflicts.Prune(&sessions[i])
	}
	j.snapshots.Update(sessions)
}
