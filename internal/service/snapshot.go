package service

import (
	"sync"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/models"
)

// SnapshotStore retains the last-known session list and performs change
// detection over polled snapshots. Listeners are notified only when a real
// change is detected, so a poll loop running every few seconds does not flood
// display surfaces with redraw events.
type SnapshotStore struct {
	log *logger.Logger

	mu        sync.RWMutex
	sessions  []models.SyncSession
	listeners []func()
}

// NewSnapshotStore returns an empty SnapshotStore.
func NewSnapshotStore(log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{log: log}
}

// Subscribe registers fn to run after every accepted snapshot change.
// Callbacks run synchronously on the updating goroutine.
func (s *SnapshotStore) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Sessions returns a copy of the retained snapshot.
func (s *SnapshotStore) Sessions() []models.SyncSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SyncSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// SessionByID returns the retained session with the given identifier, or nil.
func (s *SnapshotStore) SessionByID(id string) *models.SyncSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sessions {
		if s.sessions[i].Identifier == id {
			cp := s.sessions[i]
			return &cp
		}
	}
	return nil
}

// Update compares the new snapshot against the retained one and reports
// whether anything display-relevant changed. Only on a declared change does
// the store replace its snapshot and notify listeners.
func (s *SnapshotStore) Update(next []models.SyncSession) bool {
	s.mu.Lock()
	changed := snapshotChanged(s.sessions, next)
	if changed {
		s.sessions = make([]models.SyncSession, len(next))
		copy(s.sessions, next)
	}
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	if !changed {
		return false
	}

	s.log.Debug().Int("sessions", len(next)).Msg("session snapshot changed")
	for _, fn := range listeners {
		fn()
	}
	return true
}

// MergeSession folds a single streamed session update into the retained
// snapshot, using the same change rules as Update. Unknown identifiers are
// ignored: the poll loop owns session discovery.
func (s *SnapshotStore) MergeSession(update models.SyncSession) bool {
	s.mu.RLock()
	next := make([]models.SyncSession, len(s.sessions))
	copy(next, s.sessions)
	s.mu.RUnlock()

	found := false
	for i := range next {
		if next[i].Identifier == update.Identifier {
			next[i] = update
			found = true
			break
		}
	}
	if !found {
		return false
	}
	return s.Update(next)
}

// snapshotChanged implements the pairwise-by-identifier comparison. A change
// is declared when the session count differs, a session is new, or any of the
// display-relevant fields of a matched pair differs. Array order of identical
// sessions is not a change.
func snapshotChanged(prev, next []models.SyncSession) bool {
	if len(prev) != len(next) {
		return true
	}

	byID := make(map[string]*models.SyncSession, len(prev))
	for i := range prev {
		byID[prev[i].Identifier] = &prev[i]
	}

	for i := range next {
		old, ok := byID[next[i].Identifier]
		if !ok {
			return true
		}
		if sessionChanged(old, &next[i]) {
			return true
		}
	}
	return false
}

func sessionChanged(old, next *models.SyncSession) bool {
	if old.Status != next.Status ||
		old.Paused != next.Paused ||
		old.SuccessfulCycles != next.SuccessfulCycles ||
		old.LastError != next.LastError ||
		old.Alpha.Connected != next.Alpha.Connected ||
		old.Beta.Connected != next.Beta.Connected {
		return true
	}
	if stagingReceived(old) != stagingReceived(next) {
		return true
	}
	return ConflictFingerprint(old.Conflicts) != ConflictFingerprint(next.Conflicts)
}

func stagingReceived(s *models.SyncSession) uint64 {
	var total uint64
	if s.Alpha.StagingProgress != nil {
		total += s.Alpha.StagingProgress.ReceivedSize
	}
	if s.Beta.StagingProgress != nil {
		total += s.Beta.StagingProgress.ReceivedSize
	}
	return total
}
