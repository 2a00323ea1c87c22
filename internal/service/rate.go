package service

import (
	"sync"
	"time"

	"github.com/AIR-hl/syncpilot/models"
)

// defaultMinSampleInterval guards the rate computation against
// divide-by-near-zero noise when samples arrive in quick succession.
const defaultMinSampleInterval = 500 * time.Millisecond

// RateEstimator derives per-session directional throughput from the engine's
// cumulative staging byte counters. State is ephemeral and recomputed from
// the live stream; it is never persisted.
type RateEstimator struct {
	minInterval time.Duration
	now         func() time.Time

	mu     sync.Mutex
	states map[string]*models.RateState
}

// NewRateEstimator returns a RateEstimator. A non-positive minInterval falls
// back to the 500ms default.
func NewRateEstimator(minInterval time.Duration) *RateEstimator {
	if minInterval <= 0 {
		minInterval = defaultMinSampleInterval
	}
	return &RateEstimator{
		minInterval: minInterval,
		now:         time.Now,
		states:      make(map[string]*models.RateState),
	}
}

// Observe folds one session sample into the estimator and returns the
// resulting state.
func (e *RateEstimator) Observe(s models.SyncSession) models.RateState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.states[s.Identifier]
	if !ok {
		state = &models.RateState{IsLocalAlpha: s.Alpha.IsLocal()}
		e.states[s.Identifier] = state
	}
	state.IsLocalAlpha = s.Alpha.IsLocal()

	receiving, bytes := receivingSide(&s)
	if receiving == sideNone {
		// Idle: no transfer direction can be inferred.
		state.UploadRate = 0
		state.DownloadRate = 0
		state.HasSample = false
		return *state
	}

	now := e.now()

	if !state.HasSample {
		// First sample only establishes the baseline; reporting a rate here
		// would show a misleading spike.
		state.LastReceivedSize = bytes
		state.LastTimestamp = now
		state.HasSample = true
		return *state
	}

	if bytes < state.LastReceivedSize {
		// Counter went backwards: a new staging cycle started. New baseline,
		// never negative throughput.
		state.LastReceivedSize = bytes
		state.LastTimestamp = now
		return *state
	}

	elapsed := now.Sub(state.LastTimestamp)
	if elapsed < e.minInterval {
		return *state
	}

	rate := float64(bytes-state.LastReceivedSize) / elapsed.Seconds()
	if rate < 0 {
		rate = 0
	}

	localReceiving := (receiving == sideAlpha) == state.IsLocalAlpha
	if localReceiving {
		state.DownloadRate = rate
		state.UploadRate = 0
	} else {
		state.UploadRate = rate
		state.DownloadRate = 0
	}

	state.LastReceivedSize = bytes
	state.LastTimestamp = now
	return *state
}

// State returns the current estimate for a session, if one exists.
func (e *RateEstimator) State(sessionID string) (models.RateState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.states[sessionID]; ok {
		return *st, true
	}
	return models.RateState{}, false
}

// Forget drops the state for a session, e.g. after termination.
func (e *RateEstimator) Forget(sessionID string) {
	e.mu.Lock()
	delete(e.states, sessionID)
	e.mu.Unlock()
}

type side int

const (
	sideNone side = iota
	sideAlpha
	sideBeta
)

// receivingSide infers which endpoint is actively receiving data: the
// staging status wins, otherwise whichever endpoint carries non-empty
// staging progress.
func receivingSide(s *models.SyncSession) (side, uint64) {
	switch s.Status {
	case models.StatusStagingAlpha:
		return sideAlpha, progressBytes(s.Alpha.StagingProgress)
	case models.StatusStagingBeta:
		return sideBeta, progressBytes(s.Beta.StagingProgress)
	}
	if hasProgress(s.Alpha.StagingProgress) {
		return sideAlpha, progressBytes(s.Alpha.StagingProgress)
	}
	if hasProgress(s.Beta.StagingProgress) {
		return sideBeta, progressBytes(s.Beta.StagingProgress)
	}
	return sideNone, 0
}

func hasProgress(p *models.StagingProgress) bool {
	return p != nil && (p.ReceivedSize > 0 || p.ExpectedSize > 0)
}

func progressBytes(p *models.StagingProgress) uint64 {
	if p == nil {
		return 0
	}
	return p.ReceivedSize
}
