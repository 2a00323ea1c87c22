package tui

import (
	"time"

	"github.com/AIR-hl/syncpilot/internal/service"
	"github.com/AIR-hl/syncpilot/models"
)

type tickMsg time.Time

type actionDoneMsg struct {
	verb string
	err  error
}

type resolveDoneMsg struct {
	root   string
	script string
	err    error
}

type batchDoneMsg struct {
	report service.BatchReport
	err    error
}

type profilesMsg struct {
	profiles []models.ConnectionProfile
	err      error
}

type createDoneMsg struct {
	err error
}

type copiedMsg struct{}

type clearStatusMsg struct{}
