package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/models"
)

// sessionTemplate asks the engine to emit its full session state as JSON.
const sessionTemplate = "{{ json . }}"

// CLIConfig configures the CLI-backed engine client.
type CLIConfig struct {
	// Binary is the engine executable name or path. Defaults to "mutagen".
	Binary string

	// Timeout bounds every non-streaming engine invocation.
	Timeout time.Duration
}

type cliClient struct {
	binary  string
	timeout time.Duration
	run     runner.Runner
	log     *logger.Logger
}

// NewCLIClient returns a Client that drives the engine binary through run.
func NewCLIClient(cfg CLIConfig, run runner.Runner, log *logger.Logger) Client {
	if cfg.Binary == "" {
		cfg.Binary = "mutagen"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &cliClient{binary: cfg.Binary, timeout: cfg.Timeout, run: run, log: log}
}

func (c *cliClient) invoke(ctx context.Context, args ...string) (runner.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.run.Run(ctx, c.binary, args...)
	if err != nil && errors.Is(err, runner.ErrBinaryNotFound) {
		return res, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return res, err
}

func (c *cliClient) ListSessions(ctx context.Context) ([]models.SyncSession, error) {
	res, err := c.invoke(ctx, "sync", "list", "--template", sessionTemplate)
	if err != nil {
		if isNoSessionsReply(res.Stderr) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions, err := parseSessionList(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (c *cliClient) GetSession(ctx context.Context, id string) (*models.SyncSession, error) {
	res, err := c.invoke(ctx, "sync", "list", id, "--template", sessionTemplate)
	if err != nil {
		if isNoSessionsReply(res.Stderr) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	sessions, err := parseSessionList(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	for i := range sessions {
		if sessions[i].Identifier == id {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (c *cliClient) CreateSession(ctx context.Context, alpha, beta string, opts models.CreateOptions) (string, error) {
	args := append([]string{"sync", "create", alpha, beta}, createFlags(opts)...)

	res, err := c.invoke(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	id := parseCreatedIdentifier(res.Stdout)
	if id == "" {
		return "", fmt.Errorf("create session: engine did not report a session identifier (output: %q)", strings.TrimSpace(res.Stdout))
	}

	c.log.Info().Str("session", id).Str("alpha", alpha).Str("beta", beta).Msg("created session")
	return id, nil
}

func (c *cliClient) PauseSession(ctx context.Context, id string) error {
	return c.sessionVerb(ctx, "pause", id)
}

func (c *cliClient) ResumeSession(ctx context.Context, id string) error {
	return c.sessionVerb(ctx, "resume", id)
}

func (c *cliClient) TerminateSession(ctx context.Context, id string) error {
	return c.sessionVerb(ctx, "terminate", id)
}

func (c *cliClient) FlushSession(ctx context.Context, id string) error {
	return c.sessionVerb(ctx, "flush", id)
}

func (c *cliClient) ResetSession(ctx context.Context, id string) error {
	return c.sessionVerb(ctx, "reset", id)
}

func (c *cliClient) sessionVerb(ctx context.Context, verb, id string) error {
	res, err := c.invoke(ctx, "sync", verb, id)
	if err != nil {
		if isNoSessionsReply(res.Stderr) {
			return fmt.Errorf("%s session %s: %w", verb, id, ErrSessionNotFound)
		}
		return fmt.Errorf("%s session %s: %w", verb, id, err)
	}
	return nil
}

// createFlags renders CreateOptions into engine command-line flags. Ignore
// paths and labels are emitted in sorted order so invocations are
// deterministic.
func createFlags(opts models.CreateOptions) []string {
	var args []string

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	if opts.Paused {
		args = append(args, "--paused")
	}
	if opts.Mode != "" {
		args = append(args, "--sync-mode", string(opts.Mode))
	}
	if v, ok := opts.IgnoreVCS.Bool(); ok {
		if v {
			args = append(args, "--ignore-vcs")
		} else {
			args = append(args, "--no-ignore-vcs")
		}
	}
	ignores := append([]string(nil), opts.IgnorePaths...)
	sort.Strings(ignores)
	for _, p := range ignores {
		args = append(args, "--ignore", p)
	}
	if opts.SymlinkMode != "" {
		args = append(args, "--symlink-mode", opts.SymlinkMode)
	}
	if opts.WatchMode != "" {
		args = append(args, "--watch-mode", opts.WatchMode)
	}
	if opts.Compression != "" {
		args = append(args, "--compression", opts.Compression)
	}

	labels := make([]string, 0, len(opts.Labels))
	for k, v := range opts.Labels {
		labels = append(labels, k+"="+v)
	}
	sort.Strings(labels)
	for _, l := range labels {
		args = append(args, "--label", l)
	}

	return args
}

// parseCreatedIdentifier extracts the session identifier from engine create
// output. The engine prints "Created session <id>"; older builds print the
// bare identifier on its own line.
func parseCreatedIdentifier(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "Created session "); ok {
			return strings.TrimSpace(rest)
		}
		if !strings.Contains(line, " ") {
			return line
		}
	}
	return ""
}

// parseSessionList decodes engine template output: either a JSON array of
// sessions or one JSON object per line.
func parseSessionList(out string) ([]models.SyncSession, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var sessions []models.SyncSession
		if err := json.Unmarshal([]byte(trimmed), &sessions); err != nil {
			return nil, fmt.Errorf("decode session list: %w", err)
		}
		return sessions, nil
	}

	var sessions []models.SyncSession
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var s models.SyncSession
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, fmt.Errorf("decode session line: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
