package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AIR-hl/syncpilot/models"
)

// The add flow collects a name, a local path, and a remote spec, saves the
// triple as a connection profile, and creates the engine session from it.

func (m *mainModel) startAddFlow() {
	name := textinput.New()
	name.Placeholder = "Name (optional)"
	name.Width = 40
	name.Focus()

	local := textinput.New()
	local.Placeholder = "/path/to/local/folder"
	local.Width = 40

	remote := textinput.New()
	remote.Placeholder = "user@host:/path or docker://container/path"
	remote.Width = 40

	m.addOpen = true
	m.addErr = ""
	m.addInputs = []textinput.Model{name, local, remote}
	m.addFocus = 0
}

func (m *mainModel) resetAddFlow() {
	m.addOpen = false
	m.addErr = ""
	m.addInputs = nil
	m.addFocus = 0
	m.addSaving = false
}

func (m mainModel) updateAddFlow(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.resetAddFlow()
			return m, nil
		case "tab":
			m.addInputs[m.addFocus].Blur()
			m.addFocus = (m.addFocus + 1) % len(m.addInputs)
			m.addInputs[m.addFocus].Focus()
			return m, nil
		case "shift+tab":
			m.addInputs[m.addFocus].Blur()
			m.addFocus = (m.addFocus - 1 + len(m.addInputs)) % len(m.addInputs)
			m.addInputs[m.addFocus].Focus()
			return m, nil
		case "enter":
			if m.addSaving {
				return m, nil
			}
			name := strings.TrimSpace(m.addInputs[0].Value())
			local := strings.TrimSpace(m.addInputs[1].Value())
			remote := strings.TrimSpace(m.addInputs[2].Value())
			if local == "" || remote == "" {
				m.addErr = "local path and remote spec are required"
				return m, nil
			}

			m.addErr = ""
			m.addSaving = true
			return m, m.cmdCreateSession(models.ProfileInput{
				Name:            name,
				LocalPath:       local,
				RemotePath:      remote,
				WorkspaceFolder: local,
			})
		}
	}

	var cmd tea.Cmd
	m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
	return m, cmd
}

func (m mainModel) cmdCreateSession(input models.ProfileInput) tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		profile, err := svc.Profiles.Upsert(ctx, input)
		if err != nil {
			return createDoneMsg{err: err}
		}

		sessionID, err := svc.Engine.CreateSession(ctx, profile.LocalPath, profile.RemotePath, models.CreateOptionsFromProfile(profile))
		if err != nil {
			return createDoneMsg{err: err}
		}

		if err = svc.Profiles.UpdateLastSessionIdentifier(ctx, profile.ID, sessionID); err != nil {
			return createDoneMsg{err: err}
		}
		return createDoneMsg{}
	}
}

func (m mainModel) viewAddFlow() string {
	out := "Name      : [ " + m.addInputs[0].View() + " ]\n"
	out += "Local     : [ " + m.addInputs[1].View() + " ]\n"
	out += "Remote    : [ " + m.addInputs[2].View() + " ]\n"
	if m.addErr != "" {
		out += "\n" + errorStyle.Render("Error: "+m.addErr) + "\n"
	}
	if m.addSaving {
		out += "\nCreating session...\n"
	}

	return renderPage(
		"NEW SYNC SESSION",
		strings.TrimRight(out, "\n"),
		"tab: next field │ shift+tab: prev field │ enter: create │ esc: cancel",
	)
}
