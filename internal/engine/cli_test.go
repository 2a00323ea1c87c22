package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/mock"
	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/models"
)

func newTestClient(t *testing.T) (engine.Client, *mock.MockRunner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	run := mock.NewMockRunner(ctrl)
	return engine.NewCLIClient(engine.CLIConfig{}, run, logger.Nop()), run
}

const sessionJSON = `{"identifier":"sess-1","status":"watching","paused":false,` +
	`"alpha":{"protocol":"local","path":"/ws/a","connected":true},` +
	`"beta":{"protocol":"ssh","host":"build","path":"/srv","connected":true}}`

func TestListSessions_JSONArray(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", "sync", "list", "--template", "{{ json . }}").
		Return(runner.Result{Stdout: "[" + sessionJSON + "]"}, nil)

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].Identifier)
	assert.Equal(t, models.StatusWatching, sessions[0].Status)
	assert.Equal(t, models.ProtocolSSH, sessions[0].Beta.Protocol)
}

func TestListSessions_JSONLines(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", "sync", "list", "--template", "{{ json . }}").
		Return(runner.Result{Stdout: sessionJSON + "\n" + sessionJSON + "\n"}, nil)

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestListSessions_EmptySelectionIsNotAnError(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(runner.Result{Stderr: "Error: unable to locate requested sessions", ExitCode: 1},
			errors.New("exit status 1"))

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestListSessions_MissingBinary(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(runner.Result{}, runner.ErrBinaryNotFound)

	_, err := client.ListSessions(context.Background())
	assert.ErrorIs(t, err, engine.ErrEngineUnavailable)
}

func TestGetSession(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", "sync", "list", "sess-1", "--template", "{{ json . }}").
		Return(runner.Result{Stdout: sessionJSON}, nil)

	session, err := client.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "sess-1", session.Identifier)
}

func TestGetSession_NotFound(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", "sync", "list", "ghost", "--template", "{{ json . }}").
		Return(runner.Result{Stderr: "did not match any sessions", ExitCode: 1}, errors.New("exit status 1"))

	session, err := client.GetSession(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCreateSession(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen",
			"sync", "create", "/ws/a", "dev@build:/srv",
			"--name", "proj",
			"--sync-mode", "two-way-safe",
			"--ignore-vcs",
			"--ignore", ".cache",
			"--ignore", "node_modules").
		Return(runner.Result{Stdout: "Created session sess-new\n"}, nil)

	id, err := client.CreateSession(context.Background(), "/ws/a", "dev@build:/srv", models.CreateOptions{
		Name:        "proj",
		Mode:        models.SyncModeTwoWaySafe,
		IgnoreVCS:   models.TriStateTrue,
		IgnorePaths: []string{"node_modules", ".cache"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-new", id)
}

func TestCreateSession_NoIdentifierInOutput(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", "sync", "create", "/a", "/b").
		Return(runner.Result{Stdout: "something unexpected happened here\n"}, nil)

	_, err := client.CreateSession(context.Background(), "/a", "/b", models.CreateOptions{})
	assert.Error(t, err)
}

func TestSessionVerbs(t *testing.T) {
	verbs := map[string]func(engine.Client, context.Context, string) error{
		"pause":     func(c engine.Client, ctx context.Context, id string) error { return c.PauseSession(ctx, id) },
		"resume":    func(c engine.Client, ctx context.Context, id string) error { return c.ResumeSession(ctx, id) },
		"terminate": func(c engine.Client, ctx context.Context, id string) error { return c.TerminateSession(ctx, id) },
		"flush":     func(c engine.Client, ctx context.Context, id string) error { return c.FlushSession(ctx, id) },
		"reset":     func(c engine.Client, ctx context.Context, id string) error { return c.ResetSession(ctx, id) },
	}

	for verb, call := range verbs {
		t.Run(verb, func(t *testing.T) {
			client, run := newTestClient(t)
			run.EXPECT().
				Run(gomock.Any(), "mutagen", "sync", verb, "sess-1").
				Return(runner.Result{}, nil)
			assert.NoError(t, call(client, context.Background(), "sess-1"))
		})
	}
}

func TestSessionVerb_NotFound(t *testing.T) {
	client, run := newTestClient(t)

	run.EXPECT().
		Run(gomock.Any(), "mutagen", "sync", "pause", "ghost").
		Return(runner.Result{Stderr: "unable to locate requested sessions", ExitCode: 1}, errors.New("exit status 1"))

	err := client.PauseSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}
