// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Status is the closed set of session states reported by the external
// synchronization engine. Values match the engine's wire strings.
type Status string

const (
	StatusDisconnected           Status = "disconnected"
	StatusHaltedOnRootEmptied    Status = "halted-on-root-emptied"
	StatusHaltedOnRootDeletion   Status = "halted-on-root-deletion"
	StatusHaltedOnRootTypeChange Status = "halted-on-root-type-change"
	StatusConnectingAlpha        Status = "connecting-alpha"
	StatusConnectingBeta         Status = "connecting-beta"
	StatusWatching               Status = "watching"
	StatusScanning               Status = "scanning"
	StatusWaitingForRescan       Status = "waiting-for-rescan"
	StatusReconciling            Status = "reconciling"
	StatusStagingAlpha           Status = "staging-alpha"
	StatusStagingBeta            Status = "staging-beta"
	StatusTransitioning          Status = "transitioning"
	StatusSaving                 Status = "saving"
)

// Label returns a human-readable form of the status for display surfaces.
func (s Status) Label() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusHaltedOnRootEmptied:
		return "Halted (root emptied)"
	case StatusHaltedOnRootDeletion:
		return "Halted (root deleted)"
	case StatusHaltedOnRootTypeChange:
		return "Halted (root type changed)"
	case StatusConnectingAlpha:
		return "Connecting to alpha"
	case StatusConnectingBeta:
		return "Connecting to beta"
	case StatusWatching:
		return "Watching for changes"
	case StatusScanning:
		return "Scanning"
	case StatusWaitingForRescan:
		return "Waiting for rescan"
	case StatusReconciling:
		return "Reconciling"
	case StatusStagingAlpha:
		return "Staging files on alpha"
	case StatusStagingBeta:
		return "Staging files on beta"
	case StatusTransitioning:
		return "Applying changes"
	case StatusSaving:
		return "Saving archives"
	default:
		return string(s)
	}
}

// Protocol identifies the transport of one endpoint.
type Protocol string

const (
	ProtocolLocal     Protocol = "local"
	ProtocolSSH       Protocol = "ssh"
	ProtocolContainer Protocol = "docker"
)

// StagingProgress reports cumulative staging state for one endpoint while a
// transfer is in flight.
type StagingProgress struct {
	Path          string `json:"path,omitempty"`
	ReceivedSize  uint64 `json:"receivedSize"`
	ExpectedSize  uint64 `json:"expectedSize"`
	ReceivedFiles uint64 `json:"receivedFiles"`
	ExpectedFiles uint64 `json:"expectedFiles"`
}

// Endpoint is one side of a synchronization session.
type Endpoint struct {
	Protocol        Protocol         `json:"protocol"`
	Host            string           `json:"host,omitempty"`
	User            string           `json:"user,omitempty"`
	Path            string           `json:"path"`
	Connected       bool             `json:"connected"`
	Directories     uint64           `json:"directories"`
	Files           uint64           `json:"files"`
	TotalFileSize   uint64           `json:"totalFileSize"`
	StagingProgress *StagingProgress `json:"stagingProgress,omitempty"`
}

// IsLocal reports whether the endpoint lives on the local filesystem.
func (e Endpoint) IsLocal() bool {
	return e.Protocol == ProtocolLocal || (e.Protocol == "" && e.Host == "")
}

// URL renders the endpoint in the engine's address form: a bare path for
// local endpoints, user@host:path for SSH, and docker://container/path for
// containers.
func (e Endpoint) URL() string {
	switch e.Protocol {
	case ProtocolSSH:
		if e.User != "" {
			return e.User + "@" + e.Host + ":" + e.Path
		}
		return e.Host + ":" + e.Path
	case ProtocolContainer:
		return "docker://" + e.Host + e.Path
	default:
		return e.Path
	}
}

// SyncSession is one managed two-endpoint synchronization relationship as
// reported by the engine. Identifier is opaque and stable for the session's
// lifetime; reconfiguring a session means terminating it and creating a new
// one with a new identifier.
type SyncSession struct {
	Identifier       string     `json:"identifier"`
	Name             string     `json:"name,omitempty"`
	Paused           bool       `json:"paused"`
	Status           Status     `json:"status"`
	LastError        string     `json:"lastError,omitempty"`
	SuccessfulCycles uint64     `json:"successfulCycles"`
	Alpha            Endpoint   `json:"alpha"`
	Beta             Endpoint   `json:"beta"`
	Conflicts        []Conflict `json:"conflicts,omitempty"`
}

// LocalEndpoint returns the session's local side and true, or a zero endpoint
// and false for foreign sessions where neither side is local.
func (s *SyncSession) LocalEndpoint() (Endpoint, bool) {
	if s.Alpha.IsLocal() {
		return s.Alpha, true
	}
	if s.Beta.IsLocal() {
		return s.Beta, true
	}
	return Endpoint{}, false
}

// RemoteEndpoint returns the non-local side and true. For foreign sessions
// (no local side) it returns false: such sessions are displayed but never
// mutated by this control plane.
func (s *SyncSession) RemoteEndpoint() (Endpoint, bool) {
	if s.Alpha.IsLocal() && !s.Beta.IsLocal() {
		return s.Beta, true
	}
	if s.Beta.IsLocal() && !s.Alpha.IsLocal() {
		return s.Alpha, true
	}
	return Endpoint{}, false
}

// IsForeign reports whether neither endpoint is local. Foreign sessions are
// treated as read-only by the reconciliation engine.
func (s *SyncSession) IsForeign() bool {
	return !s.Alpha.IsLocal() && !s.Beta.IsLocal()
}

// DisplayName returns the session name, falling back to a truncated
// identifier for unnamed sessions.
func (s *SyncSession) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if len(s.Identifier) > 8 {
		return s.Identifier[:8]
	}
	return s.Identifier
}
