package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/service"
	"github.com/AIR-hl/syncpilot/models"
)

var errNoSessionSelected = errors.New("no session selected")

type mainModel struct {
	ctx      context.Context
	services *service.Services
	info     models.AppBuildInfo
	log      *logger.Logger

	summaries []models.SessionSummary
	idx       int
	busy      bool
	status    string
	errMsg    string

	conflictsOpen     bool
	conflictSessionID string
	conflicts         []models.ConflictView
	cIdx              int

	profilesOpen    bool
	profiles        []models.ConnectionProfile
	pIdx            int
	loadingProfiles bool

	confirming       bool
	confirmDirection models.ResolutionDirection

	scriptOpen bool
	scriptRoot string
	script     string

	addOpen   bool
	addErr    string
	addInputs []textinput.Model
	addFocus  int
	addSaving bool

	infoOpen bool
}

func newMainModel(ctx context.Context, services *service.Services, info models.AppBuildInfo, log *logger.Logger) mainModel {
	return mainModel{
		ctx:       ctx,
		services:  services,
		info:      info,
		log:       log,
		summaries: services.Summaries(),
	}
}

func (m mainModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tickCmd()
	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("action", msg.verb).Msg("session action failed")
			m.errMsg = humanizeEngineError(msg.err)
			return m, nil
		}
		m.status = msg.verb
		m.errMsg = ""
		m.refresh()
		if m.profilesOpen {
			return m, tea.Batch(clearStatusCmd(), m.cmdLoadProfiles())
		}
		return m, clearStatusCmd()
	case resolveDoneMsg:
		m.busy = false
		if msg.script != "" {
			m.log.Info().Str("root", msg.root).Msg("conflict requires manual resolution")
			m.scriptOpen = true
			m.scriptRoot = msg.root
			m.script = msg.script
			m.errMsg = ""
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("root", msg.root).Msg("conflict resolution failed")
			m.errMsg = fmt.Sprintf("Resolution failed for %q: %v", msg.root, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Resolved %q", msg.root)
		m.errMsg = ""
		m.refresh()
		return m, clearStatusCmd()
	case batchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("batch resolution failed")
			m.errMsg = humanizeEngineError(msg.err)
			return m, nil
		}
		m.log.Info().
			Int("attempted", msg.report.Attempted).
			Int("succeeded", msg.report.Succeeded).
			Int("failed", msg.report.Failed).
			Bool("converged", msg.report.ConvergenceOK).
			Msg("batch resolution finished")
		m.status, m.errMsg = summarizeBatch(msg.report)
		m.refresh()
		return m, clearStatusCmd()
	case profilesMsg:
		m.loadingProfiles = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.profiles = msg.profiles
		if m.pIdx >= len(m.profiles) {
			m.pIdx = len(m.profiles) - 1
		}
		if m.pIdx < 0 {
			m.pIdx = 0
		}
		return m, nil
	case createDoneMsg:
		m.addSaving = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("session creation failed")
			m.addErr = humanizeEngineError(msg.err)
			return m, nil
		}
		m.resetAddFlow()
		m.status = "Session created"
		m.errMsg = ""
		return m, clearStatusCmd()
	case copiedMsg:
		m.status = "Script copied to clipboard"
		return m, clearStatusCmd()
	case clearStatusMsg:
		m.status = ""
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.addOpen {
			return m.updateAddFlow(msg)
		}
		return m, nil
	}

	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// q quits everywhere except surfaces where it is typed text.
	if key.Matches(keyMsg, keys.quit) && !m.scriptOpen && !m.addOpen {
		return m, tea.Quit
	}

	if m.addOpen {
		return m.updateAddFlow(keyMsg)
	}
	if m.scriptOpen {
		return m.updateScript(keyMsg)
	}
	if m.confirming {
		return m.updateConfirm(keyMsg)
	}
	if m.infoOpen {
		if key.Matches(keyMsg, keys.esc) || key.Matches(keyMsg, keys.info) {
			m.infoOpen = false
		}
		return m, nil
	}
	if m.profilesOpen {
		return m.updateProfiles(keyMsg)
	}
	if m.conflictsOpen {
		return m.updateConflicts(keyMsg)
	}

	return m.updateSessions(keyMsg)
}

func (m mainModel) updateSessions(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.idx < len(m.summaries)-1 {
			m.idx++
		}
	case key.Matches(keyMsg, keys.pause):
		summary, ok := m.current()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		if summary.Paused {
			return m, m.cmdSessionAction("Session resumed", m.services.Engine.ResumeSession, summary.Identifier)
		}
		return m, m.cmdSessionAction("Session paused", m.services.Engine.PauseSession, summary.Identifier)
	case key.Matches(keyMsg, keys.flush):
		summary, ok := m.current()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.cmdSessionAction("Flush requested", m.services.Engine.FlushSession, summary.Identifier)
	case key.Matches(keyMsg, keys.terminate):
		summary, ok := m.current()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.cmdTerminate(summary.Identifier)
	case key.Matches(keyMsg, keys.enter):
		summary, ok := m.current()
		if !ok {
			m.status = "No sessions"
			return m, nil
		}
		m.conflictsOpen = true
		m.conflictSessionID = summary.Identifier
		m.cIdx = 0
		m.refreshConflicts()
	case key.Matches(keyMsg, keys.add):
		m.startAddFlow()
		return m, textinput.Blink
	case key.Matches(keyMsg, keys.profiles):
		m.profilesOpen = true
		m.loadingProfiles = true
		return m, m.cmdLoadProfiles()
	case key.Matches(keyMsg, keys.info):
		m.infoOpen = true
	}

	return m, nil
}

func (m mainModel) updateConflicts(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.esc):
		m.conflictsOpen = false
	case key.Matches(keyMsg, keys.up):
		if m.cIdx > 0 {
			m.cIdx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.cIdx < len(m.conflicts)-1 {
			m.cIdx++
		}
	case key.Matches(keyMsg, keys.acceptLocal), key.Matches(keyMsg, keys.acceptPeer):
		view, ok := m.currentConflict()
		if !ok || m.busy {
			return m, nil
		}
		direction := models.DirectionLocal
		if key.Matches(keyMsg, keys.acceptPeer) {
			direction = models.DirectionRemote
		}
		m.busy = true
		return m, m.cmdResolve(m.conflictSessionID, view.Root, direction)
	case key.Matches(keyMsg, keys.batchLocal), key.Matches(keyMsg, keys.batchPeer):
		if len(m.conflicts) == 0 || m.busy {
			return m, nil
		}
		m.confirming = true
		m.confirmDirection = models.DirectionLocal
		if key.Matches(keyMsg, keys.batchPeer) {
			m.confirmDirection = models.DirectionRemote
		}
	}

	return m, nil
}

func (m mainModel) updateProfiles(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.esc), key.Matches(keyMsg, keys.profiles):
		m.profilesOpen = false
	case key.Matches(keyMsg, keys.up):
		if m.pIdx > 0 {
			m.pIdx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.pIdx < len(m.profiles)-1 {
			m.pIdx++
		}
	case key.Matches(keyMsg, keys.enter):
		profile, ok := m.currentProfile()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.cmdRestoreWorkspace(profile.WorkspaceFolder)
	case key.Matches(keyMsg, keys.terminate):
		profile, ok := m.currentProfile()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.cmdRemoveProfile(profile.ID)
	}
	return m, nil
}

func (m mainModel) updateConfirm(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.yes):
		m.confirming = false
		m.busy = true
		return m, m.cmdBatch(m.conflictSessionID, m.confirmDirection)
	case key.Matches(keyMsg, keys.no), key.Matches(keyMsg, keys.esc):
		m.confirming = false
		m.status = "Batch resolution cancelled"
		return m, clearStatusCmd()
	}
	return m, nil
}

func (m mainModel) updateScript(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.esc):
		m.scriptOpen = false
		m.script = ""
		m.scriptRoot = ""
	case key.Matches(keyMsg, keys.copy):
		if err := clipboard.WriteAll(m.script); err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", err)
			return m, nil
		}
		return m, func() tea.Msg { return copiedMsg{} }
	}
	return m, nil
}

func (m *mainModel) refresh() {
	m.summaries = m.services.Summaries()
	if m.idx >= len(m.summaries) {
		m.idx = len(m.summaries) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
	if m.conflictsOpen {
		m.refreshConflicts()
	}
}

func (m *mainModel) refreshConflicts() {
	session := m.services.Snapshots.SessionByID(m.conflictSessionID)
	if session == nil {
		m.conflictsOpen = false
		m.conflicts = nil
		return
	}
	m.conflicts = m.services.Conflicts.ConflictViews(session)
	if m.cIdx >= len(m.conflicts) {
		m.cIdx = len(m.conflicts) - 1
	}
	if m.cIdx < 0 {
		m.cIdx = 0
	}
}

func (m mainModel) current() (models.SessionSummary, bool) {
	if m.idx < 0 || m.idx >= len(m.summaries) {
		return models.SessionSummary{}, false
	}
	return m.summaries[m.idx], true
}

func (m mainModel) currentProfile() (models.ConnectionProfile, bool) {
	if m.pIdx < 0 || m.pIdx >= len(m.profiles) {
		return models.ConnectionProfile{}, false
	}
	return m.profiles[m.pIdx], true
}

func (m mainModel) currentConflict() (models.ConflictView, bool) {
	if m.cIdx < 0 || m.cIdx >= len(m.conflicts) {
		return models.ConflictView{}, false
	}
	return m.conflicts[m.cIdx], true
}

func (m mainModel) cmdSessionAction(verb string, fn func(context.Context, string) error, id string) tea.Cmd {
	ctx := m.ctx

	return func() tea.Msg {
		if id == "" {
			return actionDoneMsg{verb: verb, err: errNoSessionSelected}
		}
		return actionDoneMsg{verb: verb, err: fn(ctx, id)}
	}
}

func (m mainModel) cmdTerminate(id string) tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		if id == "" {
			return actionDoneMsg{verb: "Session terminated", err: errNoSessionSelected}
		}
		if err := svc.Engine.TerminateSession(ctx, id); err != nil {
			return actionDoneMsg{verb: "Session terminated", err: err}
		}
		svc.Monitors.Unwatch(id)
		svc.Conflicts.ClearSession(id)
		svc.Rates.Forget(id)
		return actionDoneMsg{verb: "Session terminated"}
	}
}

func (m mainModel) cmdResolve(sessionID, root string, direction models.ResolutionDirection) tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		session := svc.Snapshots.SessionByID(sessionID)
		if session == nil {
			return resolveDoneMsg{root: root, err: errNoSessionSelected}
		}
		conflict, ok := conflictByRoot(session, root)
		if !ok {
			return resolveDoneMsg{root: root, err: fmt.Errorf("conflict at %q is gone", root)}
		}

		err := svc.Conflicts.Accept(ctx, session, conflict, direction)

		var manual *service.ManualResolutionError
		if errors.As(err, &manual) {
			return resolveDoneMsg{root: root, script: manual.Script}
		}
		return resolveDoneMsg{root: root, err: err}
	}
}

func (m mainModel) cmdBatch(sessionID string, direction models.ResolutionDirection) tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		session := svc.Snapshots.SessionByID(sessionID)
		if session == nil {
			return batchDoneMsg{err: errNoSessionSelected}
		}
		// The user already confirmed through the overlay.
		report, err := svc.Conflicts.AcceptAll(ctx, session, direction, func(int) bool { return true })
		return batchDoneMsg{report: report, err: err}
	}
}

func (m mainModel) cmdRemoveProfile(id string) tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		removed, err := svc.Profiles.Remove(ctx, id)
		if err != nil {
			return actionDoneMsg{verb: "Profile removed", err: err}
		}
		if !removed {
			return actionDoneMsg{verb: "Profile was already gone"}
		}
		return actionDoneMsg{verb: "Profile removed"}
	}
}

func (m mainModel) cmdRestoreWorkspace(folder string) tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		outcome, err := svc.Restore.WorkspaceOpened(ctx, folder)
		if err != nil {
			return actionDoneMsg{verb: "Workspace restore", err: err}
		}
		verb := fmt.Sprintf("Restore: %d resumed, %d reused, %d created", outcome.Resumed, outcome.Reused, outcome.Created)
		if len(outcome.Failures) > 0 {
			return actionDoneMsg{verb: verb, err: outcome.Failures[0]}
		}
		return actionDoneMsg{verb: verb}
	}
}

func (m mainModel) cmdLoadProfiles() tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		profiles, err := svc.Profiles.List(ctx)
		return profilesMsg{profiles: profiles, err: err}
	}
}

func conflictByRoot(session *models.SyncSession, root string) (models.Conflict, bool) {
	for _, conflict := range session.Conflicts {
		if conflict.Root == root {
			return conflict, true
		}
	}
	return models.Conflict{}, false
}

// summarizeBatch splits a batch report into a status line and, when the
// engine failed to reconverge after successful file operations, a distinct
// error line so the two outcomes are never conflated.
func summarizeBatch(report service.BatchReport) (status, errMsg string) {
	if report.Cancelled {
		return "Batch resolution cancelled", ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Resolved %d/%d", report.Succeeded, report.Attempted)
	if report.ExcludedHandled > 0 {
		fmt.Fprintf(&b, ", skipped %d already handled", report.ExcludedHandled)
	}
	if report.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", report.Failed)
	}
	status = b.String()

	if report.Failed > 0 && len(report.Failures) > 0 {
		errMsg = fmt.Sprintf("First failure: %s: %v", report.Failures[0].Root, report.Failures[0].Err)
	}
	if report.ConvergenceRan && !report.ConvergenceOK {
		errMsg = fmt.Sprintf("Files updated, but the engine failed to reconverge: %v", report.ConvergenceErr)
	}
	return status, errMsg
}
