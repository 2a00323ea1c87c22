package tui

import (
	"fmt"
	"strings"

	"github.com/AIR-hl/syncpilot/internal/service"
	"github.com/AIR-hl/syncpilot/models"
)

func (m mainModel) View() string {
	if m.addOpen {
		return m.viewAddFlow()
	}
	if m.scriptOpen {
		return m.viewScript()
	}
	if m.confirming {
		return m.viewConfirm()
	}
	if m.infoOpen {
		return renderBuildInfoWindow(m.info)
	}
	if m.profilesOpen {
		return m.viewProfiles()
	}
	if m.conflictsOpen {
		return m.viewConflicts()
	}
	return m.viewSessions()
}

func (m mainModel) viewSessions() string {
	out := ""

	if m.errMsg != "" {
		out += errorStyle.Render("Error: "+m.errMsg) + "\n"
	}
	if m.status != "" {
		out += "Status: " + m.status + "\n"
	}

	if len(m.summaries) == 0 {
		if out != "" {
			out += "\n"
		}
		out += "No synchronization sessions\n"
	} else {
		if out != "" {
			out += "\n"
		}
		out += "Session                  │ State                │ Up         │ Down       │ Conflicts\n"
		out += "─────────────────────────┼──────────────────────┼────────────┼────────────┼──────────\n"
		for i, summary := range m.summaries {
			cursor := " "
			if i == m.idx {
				cursor = ">"
			}

			line := fmt.Sprintf(
				"%s %-23s│ %-21s│ %-11s│ %-11s│ %d",
				cursor,
				fitText(summary.Name, 23),
				fitText(sessionStateLabel(summary), 21),
				valueOrDash(service.FormatRate(summary.UploadRate)),
				valueOrDash(service.FormatRate(summary.DownloadRate)),
				summary.ConflictCount,
			)
			if summary.Paused {
				line = pausedStyle.Render(line)
			}
			out += line + "\n"
		}

		if summary, ok := m.current(); ok && summary.LastError != "" {
			out += "\n" + errorStyle.Render("Last error: "+fitText(summary.LastError, 70)) + "\n"
		}
	}

	return renderPage(
		"SYNC SESSIONS",
		strings.TrimRight(out, "\n"),
		"a: new session │ enter: conflicts │ space: pause/resume │ f: flush │ ctrl+d: terminate │ p: profiles │ i: about │ ↑/↓: nav",
	)
}

func (m mainModel) viewConflicts() string {
	out := ""

	if m.errMsg != "" {
		out += errorStyle.Render("Error: "+m.errMsg) + "\n"
	}
	if m.status != "" {
		out += "Status: " + m.status + "\n"
	}

	if len(m.conflicts) == 0 {
		if out != "" {
			out += "\n"
		}
		out += "No conflicts in this session\n"
	} else {
		if out != "" {
			out += "\n"
		}
		out += "Root                           │ Changes │ Handled\n"
		out += "───────────────────────────────┼─────────┼────────\n"
		for i, view := range m.conflicts {
			cursor := " "
			if i == m.cIdx {
				cursor = ">"
			}

			handled := "-"
			if record, ok := m.services.Conflicts.HandledRecordFor(m.conflictSessionID, view.Root); ok {
				handled = string(record.Direction)
			}

			out += fmt.Sprintf(
				"%s %-29s│ %2dα %2dβ │ %s\n",
				cursor,
				fitText(view.Root, 29),
				view.AlphaCount,
				view.BetaCount,
				handled,
			)
		}

		if view, ok := m.currentConflict(); ok {
			out += "\n"
			out += "Local : " + view.LocalPath + "\n"
			out += "Remote: " + view.RemotePath + "\n"
		}
	}

	return renderPage(
		"CONFLICTS",
		strings.TrimRight(out, "\n"),
		"l: keep local │ r: keep remote │ L/R: resolve all │ esc: back │ ↑/↓: nav",
	)
}

func (m mainModel) viewProfiles() string {
	out := ""

	if m.loadingProfiles {
		out += "Loading profiles...\n"
		return renderPage("CONNECTION PROFILES", strings.TrimRight(out, "\n"), "esc: back")
	}

	if m.errMsg != "" {
		out += errorStyle.Render("Error: "+m.errMsg) + "\n"
	}
	if m.status != "" {
		out += "Status: " + m.status + "\n"
	}

	if len(m.profiles) == 0 {
		if out != "" {
			out += "\n"
		}
		out += "No stored profiles\n"
	} else {
		if out != "" {
			out += "\n"
		}
		out += "Name                 │ Local                    │ Remote\n"
		out += "─────────────────────┼──────────────────────────┼─────────────────────────\n"
		for i, profile := range m.profiles {
			cursor := " "
			if i == m.pIdx {
				cursor = ">"
			}
			out += fmt.Sprintf(
				"%s %-19s│ %-25s│ %s\n",
				cursor,
				fitText(profileLabel(profile), 19),
				fitText(profile.LocalPath, 25),
				fitText(profile.RemotePath, 25),
			)
		}
	}

	return renderPage(
		"CONNECTION PROFILES",
		strings.TrimRight(out, "\n"),
		"enter: restore workspace │ ctrl+d: delete │ esc: back │ ↑/↓: nav",
	)
}

func (m mainModel) viewConfirm() string {
	side := "LOCAL"
	if m.confirmDirection == models.DirectionRemote {
		side = "REMOTE"
	}

	content := fmt.Sprintf("Resolve all %d conflicts keeping the %s side?\n", len(m.conflicts), side)
	content += "Already handled conflicts are skipped.\n\n"
	content += "y yes    n no"
	return overlayBoxStyle.Render(content)
}

func (m mainModel) viewScript() string {
	out := "This session's remote endpoint runs inside a container; the\n"
	out += "conflict cannot be applied automatically. Run the script below\n"
	out += "on the docker host to finish the resolution:\n\n"
	out += m.script

	if m.status != "" {
		out += "\n\n" + m.status
	}

	return renderPage(
		"MANUAL RESOLUTION: "+fitText(m.scriptRoot, 40),
		strings.TrimRight(out, "\n"),
		"c: copy script │ esc: back",
	)
}

func sessionStateLabel(summary models.SessionSummary) string {
	if !summary.Connected && !summary.Paused {
		return "Disconnected"
	}
	return summary.StatusLabel
}

func profileLabel(profile models.ConnectionProfile) string {
	if strings.TrimSpace(profile.Name) != "" {
		return profile.Name
	}
	return profile.ID
}

func valueOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
