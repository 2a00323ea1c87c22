// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package engine provides the client abstraction for the external
// file-synchronization engine.
//
// The primary abstraction is [Client], which decouples the service layer from
// the way the engine is reached. The package ships a CLI implementation
// ([NewCLIClient]) that drives the engine binary through the runner
// collaborator and parses its JSON output.
//
// Error values defined in errors.go are mapped from engine replies so that
// callers can use [errors.Is] for transport-agnostic handling (e.g.
// [ErrSessionNotFound] when a selected session does not exist).
package engine

import (
	"context"

	"github.com/AIR-hl/syncpilot/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/engine_client_mock.go -package=mock

// Monitor is a handle to a long-lived streaming connection for one session.
type Monitor interface {
	// Stop terminates the underlying monitor process. It is always safe to
	// call multiple times or on an already-stopped monitor.
	Stop()
}

// Client defines communication with the external synchronization engine.
// Implementations are responsible for serialization and for mapping
// engine-level errors to the sentinel values defined in this package. All
// calls honor ctx cancellation.
type Client interface {
	// ListSessions returns all sessions known to the engine. "No sessions
	// exist" is an empty slice and a nil error, not a failure.
	ListSessions(ctx context.Context) ([]models.SyncSession, error)

	// GetSession returns the session with the given identifier, or nil and a
	// nil error when no such session exists.
	GetSession(ctx context.Context, id string) (*models.SyncSession, error)

	// CreateSession asks the engine to establish a new session between the
	// alpha and beta endpoint URLs and returns the new session identifier.
	CreateSession(ctx context.Context, alpha, beta string, opts models.CreateOptions) (string, error)

	// PauseSession pauses the session.
	PauseSession(ctx context.Context, id string) error

	// ResumeSession resumes a paused or disconnected session.
	ResumeSession(ctx context.Context, id string) error

	// TerminateSession permanently removes the session from the engine.
	TerminateSession(ctx context.Context, id string) error

	// FlushSession forces a synchronization cycle and waits for it to
	// complete.
	FlushSession(ctx context.Context, id string) error

	// ResetSession clears the session's synchronization history so the next
	// cycle re-derives state from the filesystem.
	ResetSession(ctx context.Context, id string) error

	// MonitorSession opens a streaming state feed for one session. onUpdate
	// is invoked in engine-emission order for that session; onError is
	// invoked at most once when the stream fails. The returned Monitor's
	// Stop tears the stream down.
	MonitorSession(ctx context.Context, id string, onUpdate func(models.SyncSession), onError func(error)) (Monitor, error)
}
