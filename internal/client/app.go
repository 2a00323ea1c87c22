package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/AIR-hl/syncpilot/internal/config"
	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/internal/service"
	"github.com/AIR-hl/syncpilot/internal/store"
	"github.com/AIR-hl/syncpilot/internal/tui"
	"github.com/AIR-hl/syncpilot/internal/workers"
	"github.com/AIR-hl/syncpilot/models"
)

type App struct {
	cfg      *config.StructuredConfig
	log      *logger.Logger
	services *service.Services
	workers  *workers.Workers
	tui      *tui.TUI
}

func NewApp(info models.AppBuildInfo) (*App, error) {
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg.Log)

	kv, err := newKeyValue(context.Background(), cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open state storage: %w", err)
	}

	run := runner.New()
	eng := engine.NewCLIClient(engine.CLIConfig{
		Binary:  cfg.Engine.Binary,
		Timeout: cfg.Engine.Timeout,
	}, run, log.GetChildLogger())

	profiles := store.NewProfileStore(kv, log.GetChildLogger())

	svcs := service.NewServices(eng, run, profiles, service.RestoreConfig{
		Attempts:         cfg.Restore.Attempts,
		BackoffBase:      cfg.Restore.BackoffBase,
		BackoffCap:       cfg.Restore.BackoffCap,
		TerminateOnClose: cfg.Restore.TerminateOnClose,
	}, cfg.Rate.MinSampleInterval, log)

	ui, err := tui.New(svcs, info, log.GetChildLogger())
	if err != nil {
		return nil, fmt.Errorf("create terminal ui: %w", err)
	}

	return &App{
		cfg:      cfg,
		log:      log,
		services: svcs,
		tui:      ui,
	}, nil
}

// pollWorker adapts the poll job to the workers contract, binding it to the
// application context and configured interval.
type pollWorker struct {
	job      *service.PollJob
	ctx      context.Context
	interval time.Duration
}

func (w *pollWorker) Run() {
	w.job.Start(w.ctx, w.interval)
}

func (a *App) Run() error {
	ctx := context.Background()

	for _, folder := range a.cfg.Workspaces.Folders {
		outcome, err := a.services.Restore.WorkspaceOpened(ctx, folder)
		if err != nil {
			a.log.Warn().Err(err).Str("folder", folder).Msg("workspace restore failed")
			continue
		}
		a.log.Info().
			Str("folder", outcome.Folder).
			Int("resumed", outcome.Resumed).
			Int("reused", outcome.Reused).
			Int("created", outcome.Created).
			Int("failures", len(outcome.Failures)).
			Msg("workspace restored")
		for _, restoreErr := range outcome.Failures {
			a.log.Warn().Err(restoreErr).Str("folder", folder).Msg("profile restore failed")
		}
	}

	// Every snapshot change re-asserts the watch set; Watch is a no-op for
	// sessions that already stream.
	a.services.Snapshots.Subscribe(func() {
		for _, session := range a.services.Snapshots.Sessions() {
			if err := a.services.Monitors.Watch(ctx, session.Identifier); err != nil {
				a.log.Warn().Err(err).Str("session", session.Identifier).Msg("session watch failed")
			}
		}
	})

	a.workers = workers.NewWorkers(&pollWorker{
		job:      a.services.PollJob,
		ctx:      ctx,
		interval: a.cfg.Poll.Interval,
	})
	a.workers.Run()
	defer func() {
		a.services.PollJob.Stop()
		a.services.Monitors.StopAll()
	}()

	return a.tui.Run(ctx)
}

func newLogger(cfg config.Log) *logger.Logger {
	var log *logger.Logger
	if cfg.ToFile {
		log = logger.NewFileLogger("syncpilot")
	} else {
		log = logger.NewLogger("syncpilot")
	}
	if cfg.Level != "" {
		if level, err := zerolog.ParseLevel(cfg.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
	return log
}

func newKeyValue(ctx context.Context, cfg config.Storage, log *logger.Logger) (store.KeyValue, error) {
	switch cfg.Backend {
	case config.StorageBackendMemory:
		return store.NewMemoryKeyValue(), nil
	case config.StorageBackendSQLite:
		return store.NewSQLiteKeyValue(ctx, storagePath(cfg.Path, "state.db"), log.GetChildLogger())
	case config.StorageBackendFile, "":
		return store.NewFileKeyValue(storagePath(cfg.Path, "state.json"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func storagePath(configured, defaultName string) string {
	if configured != "" {
		return configured
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "syncpilot", defaultName)
}
