package service

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
	"github.com/AIR-hl/syncpilot/models"
)

func newTestMonitorManager(t *testing.T) (*MonitorManager, *mock.MockClient, *SnapshotStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	eng := mock.NewMockClient(ctrl)
	snapshots := NewSnapshotStore(logger.Nop())
	return NewMonitorManager(eng, snapshots, NewRateEstimator(0), logger.Nop()), eng, snapshots
}

func TestMonitorManager_WatchOncePerSession(t *testing.T) {
	mgr, eng, _ := newTestMonitorManager(t)
	ctrl := gomock.NewController(t)

	mon := mock.NewMockMonitor(ctrl)
	eng.EXPECT().
		MonitorSession(gomock.Any(), "s1", gomock.Any(), gomock.Any()).
		Return(mon, nil).
		Times(1)

	require.NoError(t, mgr.Watch(context.Background(), "s1"))
	// Second watch for the same session reuses the running monitor.
	require.NoError(t, mgr.Watch(context.Background(), "s1"))

	mon.EXPECT().Stop()
	mgr.Unwatch("s1")

	// Unwatch on an unknown session is a no-op.
	mgr.Unwatch("s1")
}

func TestMonitorManager_UpdatesFlowIntoSnapshot(t *testing.T) {
	mgr, eng, snapshots := newTestMonitorManager(t)
	ctrl := gomock.NewController(t)

	require.True(t, snapshots.Update([]models.SyncSession{watchedSession("s1", 1)}))

	var onUpdate func(models.SyncSession)
	mon := mock.NewMockMonitor(ctrl)
	eng.EXPECT().
		MonitorSession(gomock.Any(), "s1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, up func(models.SyncSession), _ func(error)) (engine.Monitor, error) {
			onUpdate = up
			return mon, nil
		})

	require.NoError(t, mgr.Watch(context.Background(), "s1"))
	require.NotNil(t, onUpdate)

	update := watchedSession("s1", 2)
	update.Status = models.StatusStagingBeta
	onUpdate(update)

	assert.Equal(t, models.StatusStagingBeta, snapshots.SessionByID("s1").Status)

	mon.EXPECT().Stop()
	mgr.StopAll()
}

func TestMonitorManager_StreamFailureDropsMonitor(t *testing.T) {
	mgr, eng, _ := newTestMonitorManager(t)
	ctrl := gomock.NewController(t)

	var onError func(error)
	first := mock.NewMockMonitor(ctrl)
	eng.EXPECT().
		MonitorSession(gomock.Any(), "s1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ func(models.SyncSession), fail func(error)) (engine.Monitor, error) {
			onError = fail
			return first, nil
		})

	require.NoError(t, mgr.Watch(context.Background(), "s1"))
	onError(errors.New("stream closed"))

	// The failed monitor was dropped, so a new Watch opens a fresh one.
	second := mock.NewMockMonitor(ctrl)
	eng.EXPECT().
		MonitorSession(gomock.Any(), "s1", gomock.Any(), gomock.Any()).
		Return(second, nil)
	require.NoError(t, mgr.Watch(context.Background(), "s1"))

	second.EXPECT().Stop()
	mgr.StopAll()
}
