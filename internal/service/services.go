package service

import (
	"time"

	"github.com/spf13/afero"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/internal/store"
)

// Services aggregates the reconciliation subsystem: one constructed set per
// process, injected into every consumer (no package-level singletons).
type Services struct {
	Engine    engine.Client
	Profiles  store.ProfileStore
	Snapshots *SnapshotStore
	Rates     *RateEstimator
	Conflicts *ConflictResolver
	Restore   *RestoreOrchestrator
	Monitors  *MonitorManager
	Inflight  *InflightKeys
	PollJob   *PollJob
}

// NewServices wires the full service set.
func NewServices(eng engine.Client, run runner.Runner, profiles store.ProfileStore, restoreCfg RestoreConfig, minRateInterval time.Duration, log *logger.Logger) *Services {
	snapshots := NewSnapshotStore(log.GetChildLogger())
	rates := NewRateEstimator(minRateInterval)
	conflicts := NewConflictResolver(eng, run, afero.NewOsFs(), log.GetChildLogger())
	inflight := NewInflightKeys()

	return &Services{
		Engine:    eng,
		Profiles:  profiles,
		Snapshots: snapshots,
		Rates:     rates,
		Conflicts: conflicts,
		Restore:   NewRestoreOrchestrator(eng, profiles, inflight, restoreCfg, log.GetChildLogger()),
		Monitors:  NewMonitorManager(eng, snapshots, rates, log.GetChildLogger()),
		Inflight:  inflight,
		PollJob:   NewPollJob(eng, snapshots, rates, conflicts, log.GetChildLogger()),
	}
}
