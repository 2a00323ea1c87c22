// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/store"
	"github.com/AIR-hl/syncpilot/models"
)

// RestoreConfig bounds the orchestrator's retry behavior.
type RestoreConfig struct {
	// Attempts is the hard ceiling per profile restore. Defaults to 3.
	Attempts int

	// BackoffBase scales the linear backoff: the delay before attempt n is
	// min(n*BackoffBase, BackoffCap). Defaults to 1s.
	BackoffBase time.Duration

	// BackoffCap caps the backoff delay. Defaults to 5s.
	BackoffCap time.Duration

	// TerminateOnClose terminates (instead of pausing) sessions whose local
	// endpoint lives inside a removed workspace folder. Off by default:
	// closing a folder should not silently destroy sync history.
	TerminateOnClose bool
}

func (c RestoreConfig) withDefaults() RestoreConfig {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 5 * time.Second
	}
	return c
}

// RestoreOutcome summarizes one workspace-open pass.
type RestoreOutcome struct {
	Folder   string
	Resumed  int
	Reused   int
	Created  int
	Failures []error
}

// RestoreOrchestrator drives the engine back to a converged state when a
// workspace becomes available: resume what is paused, reattach profiles to
// live sessions, recreate sessions for profiles with no live counterpart.
type RestoreOrchestrator struct {
	engine   engine.Client
	profiles store.ProfileStore
	inflight *InflightKeys
	log      *logger.Logger
	cfg      RestoreConfig
}

// NewRestoreOrchestrator returns a RestoreOrchestrator.
func NewRestoreOrchestrator(eng engine.Client, profiles store.ProfileStore, inflight *InflightKeys, cfg RestoreConfig, log *logger.Logger) *RestoreOrchestrator {
	return &RestoreOrchestrator{
		engine:   eng,
		profiles: profiles,
		inflight: inflight,
		log:      log,
		cfg:      cfg.withDefaults(),
	}
}

// WorkspaceOpened runs the restore pass for one workspace folder. A pass
// already in flight for the same folder makes this call a silent no-op.
// Per-profile failures are collected, never aborting the pass; only a failed
// session listing is orchestration-fatal.
func (o *RestoreOrchestrator) WorkspaceOpened(ctx context.Context, folder string) (RestoreOutcome, error) {
	outcome := RestoreOutcome{Folder: folder}

	key := "restore:" + store.NormalizePath(folder)
	if !o.inflight.TryAcquire(key) {
		return outcome, nil
	}
	defer o.inflight.Release(key)

	sessions, err := o.engine.ListSessions(ctx)
	if err != nil {
		return outcome, fmt.Errorf("restore %q: %w", folder, err)
	}

	// Step 1: resume paused sessions whose local root relates to the folder
	// (ancestor or descendant — a session root may contain the folder).
	for i := range sessions {
		s := &sessions[i]
		local, ok := s.LocalEndpoint()
		if !ok || !s.Paused {
			continue
		}
		if !pathsRelated(local.Path, folder) {
			continue
		}
		if err = o.withRetry(ctx, func(ctx context.Context) error {
			return o.engine.ResumeSession(ctx, s.Identifier)
		}); err != nil {
			outcome.Failures = append(outcome.Failures, fmt.Errorf("resume session %s: %w", s.Identifier, err))
			continue
		}
		outcome.Resumed++
		o.log.Info().Str("session", s.Identifier).Str("folder", folder).Msg("resumed paused session")
	}

	// Step 2: reattach or recreate each profile scoped to the folder.
	profiles, err := o.profiles.GetForWorkspace(ctx, folder)
	if err != nil {
		outcome.Failures = append(outcome.Failures, err)
		return outcome, nil
	}
	for _, profile := range profiles {
		if err = o.restoreProfile(ctx, profile, sessions, &outcome); err != nil {
			outcome.Failures = append(outcome.Failures, fmt.Errorf("profile %q: %w", profile.Name, err))
		}
	}
	return outcome, nil
}

func (o *RestoreOrchestrator) restoreProfile(ctx context.Context, profile models.ConnectionProfile, sessions []models.SyncSession, outcome *RestoreOutcome) error {
	live := findProfileSession(profile, sessions)

	if live != nil {
		if live.Paused || live.Status == models.StatusDisconnected {
			if err := o.withRetry(ctx, func(ctx context.Context) error {
				return o.engine.ResumeSession(ctx, live.Identifier)
			}); err != nil {
				return err
			}
		}
		outcome.Reused++
		if live.Identifier != profile.LastSessionIdentifier {
			if err := o.profiles.UpdateLastSessionIdentifier(ctx, profile.ID, live.Identifier); err != nil {
				o.log.Warn().Err(err).Str("profile", profile.ID).Msg("failed to cache session identifier")
			}
		}
		return nil
	}

	var sessionID string
	err := o.withRetry(ctx, func(ctx context.Context) error {
		var createErr error
		sessionID, createErr = o.engine.CreateSession(ctx, profile.LocalPath, profile.RemotePath, models.CreateOptionsFromProfile(profile))
		return createErr
	})
	if err != nil {
		return err
	}

	outcome.Created++
	o.log.Info().Str("session", sessionID).Str("profile", profile.Name).Msg("recreated session from profile")

	if err = o.profiles.UpdateLastSessionIdentifier(ctx, profile.ID, sessionID); err != nil {
		o.log.Warn().Err(err).Str("profile", profile.ID).Msg("failed to cache session identifier")
	}
	return nil
}

// WorkspaceClosed pauses (or, with the opt-in, terminates) sessions whose
// local endpoint is contained in the removed folder.
func (o *RestoreOrchestrator) WorkspaceClosed(ctx context.Context, folder string) []error {
	sessions, err := o.engine.ListSessions(ctx)
	if err != nil {
		return []error{fmt.Errorf("close %q: %w", folder, err)}
	}

	var errs []error
	for i := range sessions {
		s := &sessions[i]
		local, ok := s.LocalEndpoint()
		if !ok || !pathsRelated(local.Path, folder) {
			continue
		}

		if o.cfg.TerminateOnClose {
			err = o.engine.TerminateSession(ctx, s.Identifier)
		} else if !s.Paused {
			err = o.engine.PauseSession(ctx, s.Identifier)
		} else {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.Identifier, err))
		}
	}
	return errs
}

// withRetry wraps one restore step in bounded retry with linear-capped
// backoff, surfacing the final error only after all attempts are spent.
func (o *RestoreOrchestrator) withRetry(ctx context.Context, step func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(o.cfg.Attempts-1), linearBackoff(o.cfg.BackoffBase, o.cfg.BackoffCap))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if stepErr := step(ctx); stepErr != nil {
			return retry.RetryableError(stepErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreExhausted, err)
	}
	return nil
}

// linearBackoff yields min(attempt*base, maxDelay) between attempts.
func linearBackoff(base, maxDelay time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		delay := time.Duration(attempt) * base
		if delay > maxDelay {
			delay = maxDelay
		}
		return delay, false
	})
}

// findProfileSession resolves a profile to a live session: the cached
// identifier wins, then endpoint equality on the normalized local path plus
// remote-form equivalence.
func findProfileSession(profile models.ConnectionProfile, sessions []models.SyncSession) *models.SyncSession {
	if profile.LastSessionIdentifier != "" {
		for i := range sessions {
			if sessions[i].Identifier == profile.LastSessionIdentifier {
				return &sessions[i]
			}
		}
	}

	wantRemote := parseRemoteSpec(profile.RemotePath)
	wantLocal := store.NormalizePath(profile.LocalPath)

	for i := range sessions {
		s := &sessions[i]
		local, ok := s.LocalEndpoint()
		if !ok {
			continue
		}
		remote, ok := s.RemoteEndpoint()
		if !ok {
			continue
		}
		if store.NormalizePath(local.Path) != wantLocal {
			continue
		}
		if remoteEquivalent(wantRemote, remoteSpecFromEndpoint(remote)) {
			return s
		}
	}
	return nil
}
