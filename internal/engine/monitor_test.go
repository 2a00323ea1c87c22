package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/AIR-hl/syncpilot/internal/engine"
	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/mock"
	"github.com/AIR-hl/syncpilot/models"
)

func TestMonitorSession_StreamsUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	run := mock.NewMockRunner(ctrl)
	handle := mock.NewMockHandle(ctrl)
	client := engine.NewCLIClient(engine.CLIConfig{}, run, logger.Nop())

	stream := `{"identifier":"sess-1","status":"scanning"}` + "\n" +
		"this line is not json\n" +
		`{"identifier":"sess-1","status":"watching"}` + "\n"

	run.EXPECT().
		Start(gomock.Any(), "mutagen", "sync", "monitor", "sess-1", "--template", "{{ json . }}\n").
		Return(handle, nil)
	handle.EXPECT().Stdout().Return(strings.NewReader(stream))
	handle.EXPECT().Wait().Return(nil)

	updates := make(chan models.SyncSession, 4)
	mon, err := client.MonitorSession(context.Background(), "sess-1",
		func(s models.SyncSession) { updates <- s },
		func(err error) { t.Errorf("unexpected stream error: %v", err) },
	)
	require.NoError(t, err)

	// Malformed lines are skipped, well-formed ones flow through in order.
	assert.Equal(t, models.StatusScanning, recvUpdate(t, updates).Status)
	assert.Equal(t, models.StatusWatching, recvUpdate(t, updates).Status)

	handle.EXPECT().Stop()
	mon.Stop()
	// Repeated Stop must not touch the process again.
	mon.Stop()
}

func TestMonitorSession_ProcessDeathReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	run := mock.NewMockRunner(ctrl)
	handle := mock.NewMockHandle(ctrl)
	client := engine.NewCLIClient(engine.CLIConfig{}, run, logger.Nop())

	exitErr := errors.New("exit status 1")
	run.EXPECT().
		Start(gomock.Any(), "mutagen", "sync", "monitor", "sess-1", "--template", "{{ json . }}\n").
		Return(handle, nil)
	handle.EXPECT().Stdout().Return(strings.NewReader(""))
	handle.EXPECT().Wait().Return(exitErr)

	failed := make(chan error, 1)
	_, err := client.MonitorSession(context.Background(), "sess-1",
		func(models.SyncSession) {},
		func(err error) { failed <- err },
	)
	require.NoError(t, err)

	select {
	case err := <-failed:
		assert.ErrorIs(t, err, exitErr)
	case <-time.After(2 * time.Second):
		t.Fatal("stream failure was not reported")
	}
}

func TestMonitorSession_StartFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	run := mock.NewMockRunner(ctrl)
	client := engine.NewCLIClient(engine.CLIConfig{}, run, logger.Nop())

	run.EXPECT().
		Start(gomock.Any(), "mutagen", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("no such binary"))

	_, err := client.MonitorSession(context.Background(), "sess-1", func(models.SyncSession) {}, nil)
	assert.Error(t, err)
}

func recvUpdate(t *testing.T, ch <-chan models.SyncSession) models.SyncSession {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return models.SyncSession{}
	}
}
