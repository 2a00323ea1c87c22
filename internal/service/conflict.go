// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/models"
)

// HandledRecord remembers one successfully applied conflict resolution. It
// exists only in process memory: cleared when the session is terminated or
// reset, pruned when the live conflict at that root no longer carries the
// recorded signature.
type HandledRecord struct {
	Direction models.ResolutionDirection
	Signature string
	Timestamp time.Time
}

// BatchFailure is one failed item of a batch accept.
type BatchFailure struct {
	Root string
	Err  error
}

// BatchReport is the outcome of an AcceptAll run. A convergence failure
// after file-level success is reported distinctly (files are fixed, engine
// state is stale), never conflated with a resolution failure.
type BatchReport struct {
	Total           int
	ExcludedHandled int
	Attempted       int
	Succeeded       int
	Failed          int
	Failures        []BatchFailure
	Cancelled       bool
	ConvergenceRan  bool
	ConvergenceOK   bool
	ConvergenceErr  error
}

// ConflictResolver applies conflict directions against session endpoints and
// keeps the handled-conflict bookkeeping that makes batch operations
// idempotent.
type ConflictResolver struct {
	engine engine.Client
	run    runner.Runner
	fs     afero.Fs
	log    *logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	handled map[string]map[string]HandledRecord // session id -> conflict root -> record
}

// NewConflictResolver returns a ConflictResolver talking to the engine via
// eng and applying filesystem and remote-shell operations via fs and run.
func NewConflictResolver(eng engine.Client, run runner.Runner, fs afero.Fs, log *logger.Logger) *ConflictResolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ConflictResolver{
		engine:  eng,
		run:     run,
		fs:      fs,
		log:     log,
		now:     time.Now,
		handled: make(map[string]map[string]HandledRecord),
	}
}

// Accept makes the conflicting subtree at conflict.Root match the chosen
// side, deleting it on the other side when the chosen side lacks the path.
// On success the (session, root) pair is recorded as handled under the
// conflict's current signature. The single-item path deliberately re-applies
// even when a matching handled record exists: re-copying A to B yields the
// same B.
func (r *ConflictResolver) Accept(ctx context.Context, session *models.SyncSession, conflict models.Conflict, direction models.ResolutionDirection) error {
	if err := r.apply(ctx, session, conflict, direction); err != nil {
		return err
	}
	r.record(session.Identifier, conflict, direction)
	return nil
}

func (r *ConflictResolver) apply(ctx context.Context, session *models.SyncSession, conflict models.Conflict, direction models.ResolutionDirection) error {
	local, ok := session.LocalEndpoint()
	if !ok {
		return ErrNoLocalEndpoint
	}

	localPath, err := resolveLocal(local.Path, conflict.Root)
	if err != nil {
		return err
	}

	// The peer may itself be a local path (local↔local sync).
	remote, hasRemote := session.RemoteEndpoint()
	if !hasRemote {
		peer := session.Beta
		if local.Path == session.Beta.Path && local.Protocol == session.Beta.Protocol {
			peer = session.Alpha
		}
		return r.applyLocalPeer(local, peer, conflict, direction, localPath)
	}

	remotePath, err := resolveRemote(remote.Path, conflict.Root)
	if err != nil {
		return err
	}

	switch remote.Protocol {
	case models.ProtocolSSH:
		return r.applySSH(ctx, remote, direction, localPath, remotePath, conflict.Root)
	case models.ProtocolContainer:
		return &ManualResolutionError{
			Root:   conflict.Root,
			Script: containerScript(remote, direction, localPath, remotePath),
		}
	default:
		return fmt.Errorf("unsupported remote endpoint protocol %q", remote.Protocol)
	}
}

func (r *ConflictResolver) applyLocalPeer(local, peer models.Endpoint, conflict models.Conflict, direction models.ResolutionDirection, localPath string) error {
	peerPath, err := resolveLocal(peer.Path, conflict.Root)
	if err != nil {
		return err
	}

	src, dst := localPath, peerPath
	if direction == models.DirectionRemote {
		src, dst = peerPath, localPath
	}
	if src == dst {
		// Both endpoints resolve to the same path; nothing to transfer.
		return nil
	}

	srcExists, err := exists(r.fs, src)
	if err != nil {
		return fmt.Errorf("stat %q: %w", src, err)
	}
	if !srcExists {
		return removeTree(r.fs, dst)
	}
	return copyTree(r.fs, src, dst)
}

func (r *ConflictResolver) applySSH(ctx context.Context, remote models.Endpoint, direction models.ResolutionDirection, localPath, remotePath, root string) error {
	switch direction {
	case models.DirectionLocal:
		return pushToRemote(ctx, r.run, aferoStater{r.fs}, remote, localPath, remotePath)
	case models.DirectionRemote:
		return pullFromRemote(ctx, r.run, aferoMutator{r.fs}, remote, localPath, remotePath)
	default:
		return fmt.Errorf("unknown resolution direction %q for %q", direction, root)
	}
}

// AcceptAll applies direction to every unhandled conflict on the session.
// Conflicts whose current signature matches a prior handled record at the
// same root are excluded (presumed already resolved and unchanged). When
// every attempted item succeeds, the session is reset then flushed so the
// engine drops its conflict history and re-synchronizes against the resolved
// filesystem — local copies alone never retract a reported conflict.
//
// confirm, when non-nil, is asked once with the pending count before any
// mutation; returning false cancels the batch.
func (r *ConflictResolver) AcceptAll(ctx context.Context, session *models.SyncSession, direction models.ResolutionDirection, confirm func(pending int) bool) (BatchReport, error) {
	report := BatchReport{Total: len(session.Conflicts)}

	var pending []models.Conflict
	for _, c := range session.Conflicts {
		if r.isHandled(session.Identifier, c) {
			report.ExcludedHandled++
			continue
		}
		pending = append(pending, c)
	}

	if len(pending) == 0 {
		// Everything already handled; no engine mutation at all.
		return report, nil
	}

	if confirm != nil && !confirm(len(pending)) {
		report.Cancelled = true
		return report, nil
	}

	for _, c := range pending {
		report.Attempted++
		if err := r.apply(ctx, session, c, direction); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BatchFailure{Root: c.Root, Err: err})
			r.log.Warn().Err(err).Str("session", session.Identifier).Str("root", c.Root).Msg("batch conflict resolution failed")
			continue
		}
		report.Succeeded++
		r.record(session.Identifier, c, direction)
	}

	if report.Failed > 0 {
		return report, nil
	}

	report.ConvergenceRan = true
	if err := r.converge(ctx, session.Identifier); err != nil {
		report.ConvergenceErr = err
		r.log.Error().Err(err).Str("session", session.Identifier).Msg("convergence failed after successful resolution")
		return report, nil
	}
	report.ConvergenceOK = true
	return report, nil
}

// converge forces the engine to drop conflict history and re-derive state
// from the filesystem: reset, then flush.
func (r *ConflictResolver) converge(ctx context.Context, sessionID string) error {
	if err := r.engine.ResetSession(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	// The reset discards the engine's conflict history; the handled
	// bookkeeping for the session goes with it.
	r.ClearSession(sessionID)
	if err := r.engine.FlushSession(ctx, sessionID); err != nil {
		return fmt.Errorf("flush session: %w", err)
	}
	return nil
}

func (r *ConflictResolver) record(sessionID string, conflict models.Conflict, direction models.ResolutionDirection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roots, ok := r.handled[sessionID]
	if !ok {
		roots = make(map[string]HandledRecord)
		r.handled[sessionID] = roots
	}
	roots[conflict.Root] = HandledRecord{
		Direction: direction,
		Signature: ConflictSignature(conflict),
		Timestamp: r.now(),
	}
}

// isHandled reports whether a handled record exists for the conflict's root
// with a signature matching its current content. Direction is deliberately
// not compared; see the documented batch-exclusion semantics.
func (r *ConflictResolver) isHandled(sessionID string, conflict models.Conflict) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.handled[sessionID][conflict.Root]
	return ok && rec.Signature == ConflictSignature(conflict)
}

// HandledRecordFor exposes the current record for one root, for display
// surfaces.
func (r *ConflictResolver) HandledRecordFor(sessionID, root string) (HandledRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.handled[sessionID][root]
	return rec, ok
}

// Prune drops handled records whose root no longer carries a
// signature-matching conflict in the session's live conflict set — the
// engine has since produced a genuinely new conflict state there, or the
// conflict is gone.
func (r *ConflictResolver) Prune(session *models.SyncSession) {
	live := make(map[string]string, len(session.Conflicts))
	for _, c := range session.Conflicts {
		live[c.Root] = ConflictSignature(c)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	roots := r.handled[session.Identifier]
	for root, rec := range roots {
		if sig, ok := live[root]; !ok || sig != rec.Signature {
			delete(roots, root)
		}
	}
	if len(roots) == 0 {
		delete(r.handled, session.Identifier)
	}
}

// ClearSession wholesale-drops the handled records for a session. Called
// when the session is terminated or reset.
func (r *ConflictResolver) ClearSession(sessionID string) {
	r.mu.Lock()
	delete(r.handled, sessionID)
	r.mu.Unlock()
}

// ConflictViews resolves a session's conflicts to display paths on both
// sides.
func (r *ConflictResolver) ConflictViews(session *models.SyncSession) []models.ConflictView {
	local, hasLocal := session.LocalEndpoint()
	remote, hasRemote := session.RemoteEndpoint()

	views := make([]models.ConflictView, 0, len(session.Conflicts))
	for _, c := range session.Conflicts {
		view := models.ConflictView{
			Root:       c.Root,
			AlphaCount: len(c.AlphaChanges),
			BetaCount:  len(c.BetaChanges),
			Signature:  ConflictSignature(c),
		}
		if hasLocal {
			view.LocalPath = filepath.Join(local.Path, filepath.FromSlash(c.Root))
		}
		if hasRemote {
			view.RemotePath = remote.URL() + "/" + c.Root
		}
		views = append(views, view)
	}
	return views
}

// aferoStater / aferoMutator adapt afero.Fs to the narrow surfaces the
// remote transfer helpers need.
type aferoStater struct{ fs afero.Fs }

func (a aferoStater) exists(p string) (bool, error) { return exists(a.fs, p) }

type aferoMutator struct{ fs afero.Fs }

func (a aferoMutator) removeAll(p string) error { return removeTree(a.fs, p) }

func (a aferoMutator) mkdirParent(p string) error {
	if err := a.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create parent of %q: %w", p, err)
	}
	return nil
}
