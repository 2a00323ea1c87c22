// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EntryKind describes the filesystem object recorded in a change descriptor.
type EntryKind string

const (
	EntryKindDirectory EntryKind = "directory"
	EntryKindFile      EntryKind = "file"
	EntryKindSymlink   EntryKind = "symlink"
	EntryKindUntracked EntryKind = "untracked"
	EntryKindProblem   EntryKind = "problematic"
)

// Entry is a content descriptor for one side of a change: what the engine
// believes exists at a path. A nil Entry in a Change means "absent".
type Entry struct {
	Kind       EntryKind `json:"kind"`
	Digest     string    `json:"digest,omitempty"`
	Executable bool      `json:"executable,omitempty"`
	Target     string    `json:"target,omitempty"`
}

// Change records one divergence observed under a conflict root: the path that
// changed plus the old and new content descriptors.
type Change struct {
	Path string `json:"path"`
	Old  *Entry `json:"old,omitempty"`
	New  *Entry `json:"new,omitempty"`
}

// Conflict is a synchronization root where both endpoints changed
// incompatibly since the last agreement point. The engine does not assign
// conflicts stable identities across polls; see Signature in the service
// layer for the canonical fingerprint used for idempotency.
type Conflict struct {
	Root         string   `json:"root"`
	AlphaChanges []Change `json:"alphaChanges,omitempty"`
	BetaChanges  []Change `json:"betaChanges,omitempty"`
}

// ResolutionDirection selects which side of a conflict wins.
type ResolutionDirection string

const (
	// DirectionLocal keeps the local endpoint's content and overwrites the
	// remote side.
	DirectionLocal ResolutionDirection = "local"

	// DirectionRemote keeps the remote endpoint's content and overwrites the
	// local side.
	DirectionRemote ResolutionDirection = "remote"
)
