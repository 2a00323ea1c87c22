package models

import "time"

// RateState is the per-session throughput estimate derived from the engine's
// cumulative staging byte counters. Ephemeral: recomputed from the live
// session stream and never persisted.
type RateState struct {
	LastReceivedSize uint64
	LastTimestamp    time.Time
	UploadRate       float64
	DownloadRate     float64
	IsLocalAlpha     bool
	HasSample        bool
}

// SessionSummary is the flattened per-session view handed to display
// surfaces: no engine types, just strings and counters.
type SessionSummary struct {
	Identifier    string
	Name          string
	StatusLabel   string
	Paused        bool
	Connected     bool
	Files         uint64
	TotalSize     uint64
	LastError     string
	ConflictCount int
	UploadRate    float64
	DownloadRate  float64
}

// ConflictView is one conflict resolved to display paths on both sides.
type ConflictView struct {
	Root       string
	LocalPath  string
	RemotePath string
	AlphaCount int
	BetaCount  int
	Signature  string
}
