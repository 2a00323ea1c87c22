package service

import (
	"context"
	"sync"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/models"
)

// MonitorManager keeps at most one streaming monitor per session and routes
// its updates into the snapshot store and rate estimator. Streamed updates
// arrive in emission order per session; across sessions, or relative to an
// in-flight poll, no ordering is guaranteed — the snapshot store's change
// rules absorb that.
type MonitorManager struct {
	engine    engine.Client
	snapshots *SnapshotStore
	rates     *RateEstimator
	log       *logger.Logger

	mu       sync.Mutex
	monitors map[string]engine.Monitor
}

// NewMonitorManager returns an empty MonitorManager.
func NewMonitorManager(eng engine.Client, snapshots *SnapshotStore, rates *RateEstimator, log *logger.Logger) *MonitorManager {
	return &MonitorManager{
		engine:    eng,
		snapshots: snapshots,
		rates:     rates,
		log:       log,
		monitors:  make(map[string]engine.Monitor),
	}
}

// Watch opens a monitor for the session unless one is already running.
func (m *MonitorManager) Watch(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	if _, running := m.monitors[sessionID]; running {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	mon, err := m.engine.MonitorSession(ctx, sessionID,
		func(s models.SyncSession) {
			m.rates.Observe(s)
			m.snapshots.MergeSession(s)
		},
		func(err error) {
			m.log.Warn().Err(err).Str("session", sessionID).Msg("monitor stream failed")
			m.drop(sessionID)
		},
	)
	if err != nil {
		return err
	}

	m.mu.Lock()
	// A concurrent Watch may have won; keep the first monitor.
	if _, running := m.monitors[sessionID]; running {
		m.mu.Unlock()
		mon.Stop()
		return nil
	}
	m.monitors[sessionID] = mon
	m.mu.Unlock()
	return nil
}

// Unwatch stops the session's monitor if one is running.
func (m *MonitorManager) Unwatch(sessionID string) {
	m.mu.Lock()
	mon, ok := m.monitors[sessionID]
	delete(m.monitors, sessionID)
	m.mu.Unlock()

	if ok {
		mon.Stop()
	}
}

// StopAll tears down every running monitor.
func (m *MonitorManager) StopAll() {
	m.mu.Lock()
	monitors := m.monitors
	m.monitors = make(map[string]engine.Monitor)
	m.mu.Unlock()

	for _, mon := range monitors {
		mon.Stop()
	}
}

func (m *MonitorManager) drop(sessionID string) {
	m.mu.Lock()
	delete(m.monitors, sessionID)
	m.mu.Unlock()
}
