package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/service"
	"github.com/AIR-hl/syncpilot/models"
)

type TUI struct {
	services *service.Services
	info     models.AppBuildInfo
	log      *logger.Logger
}

func New(services *service.Services, info models.AppBuildInfo, log *logger.Logger) (*TUI, error) {
	return &TUI{services: services, info: info, log: log}, nil
}

// Run drives the interactive status panel until the user quits.
func (t *TUI) Run(ctx context.Context) error {
	model := newMainModel(ctx, t.services, t.info, t.log)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
