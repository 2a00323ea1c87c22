package models

import "time"

// SyncMode is the engine's two-way/one-way synchronization mode.
type SyncMode string

const (
	SyncModeTwoWaySafe     SyncMode = "two-way-safe"
	SyncModeTwoWayResolved SyncMode = "two-way-resolved"
	SyncModeOneWaySafe     SyncMode = "one-way-safe"
	SyncModeOneWayReplica  SyncMode = "one-way-replica"
)

// TriState is an optional boolean for options where "unset" must be
// distinguishable from an explicit false (the engine applies its own default
// when the option is unset).
type TriState int

const (
	TriStateUnset TriState = iota
	TriStateTrue
	TriStateFalse
)

// Bool returns the explicit value and whether one was set.
func (t TriState) Bool() (value, ok bool) {
	switch t {
	case TriStateTrue:
		return true, true
	case TriStateFalse:
		return false, true
	default:
		return false, false
	}
}

// ConnectionProfile is a persisted recipe for reconnecting one local/remote
// pair. At most one profile exists per (workspace folder, local path, remote
// path) triple; upserts replace on that key.
type ConnectionProfile struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	LocalPath             string    `json:"localPath"`
	RemotePath            string    `json:"remotePath"`
	Mode                  SyncMode  `json:"mode"`
	IgnoreVCS             TriState  `json:"ignoreVcs"`
	IgnorePaths           []string  `json:"ignorePaths,omitempty"`
	WorkspaceFolder       string    `json:"workspaceFolder"`
	LastSessionIdentifier string    `json:"lastSessionIdentifier,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// ProfileInput carries the caller-supplied fields for an upsert. ID and
// UpdatedAt are owned by the store.
type ProfileInput struct {
	Name                  string
	LocalPath             string
	RemotePath            string
	Mode                  SyncMode
	IgnoreVCS             TriState
	IgnorePaths           []string
	WorkspaceFolder       string
	LastSessionIdentifier string
}

// CreateOptions are the engine options accepted when creating a session.
type CreateOptions struct {
	Name        string
	Labels      map[string]string
	Paused      bool
	Mode        SyncMode
	IgnoreVCS   TriState
	IgnorePaths []string
	SymlinkMode string
	WatchMode   string
	Compression string
}

// CreateOptionsFromProfile maps a saved profile back onto engine create
// options.
func CreateOptionsFromProfile(p ConnectionProfile) CreateOptions {
	return CreateOptions{
		Name:        p.Name,
		Mode:        p.Mode,
		IgnoreVCS:   p.IgnoreVCS,
		IgnorePaths: p.IgnorePaths,
	}
}
