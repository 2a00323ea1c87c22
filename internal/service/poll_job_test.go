package service

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/internal/mock"
	"github.com/AIR-hl/syncpilot/models"
)

func newTestPollJob(t *testing.T) (*PollJob, *mock.MockClient, *SnapshotStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	eng := mock.NewMockClient(ctrl)
	run := mock.NewMockRunner(ctrl)

	snapshots := NewSnapshotStore(logger.Nop())
	rates := NewRateEstimator(0)
	conflicts := NewConflictResolver(eng, run, afero.NewMemMapFs(), logger.Nop())
	return NewPollJob(eng, snapshots, rates, conflicts, logger.Nop()), eng, snapshots
}

func TestPollJob_PollsImmediatelyAndFeedsSnapshot(t *testing.T) {
	job, eng, snapshots := newTestPollJob(t)

	eng.EXPECT().ListSessions(gomock.Any()).
		Return([]models.SyncSession{watchedSession("s1", 1)}, nil).
		MinTimes(1)

	// The snapshot change notification fires after the poll has landed.
	updated := make(chan struct{}, 1)
	snapshots.Subscribe(func() {
		select {
		case updated <- struct{}{}:
		default:
		}
	})

	job.Start(context.Background(), time.Hour)
	defer job.Stop()

	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not poll on start")
	}

	require.Len(t, snapshots.Sessions(), 1)
	assert.Equal(t, "s1", snapshots.Sessions()[0].Identifier)
}

func TestPollJob_StopIsIdempotent(t *testing.T) {
	job, eng, _ := newTestPollJob(t)
	eng.EXPECT().ListSessions(gomock.Any()).Return(nil, nil).AnyTimes()

	// Stop before any Start is a no-op.
	job.Stop()

	job.Start(context.Background(), time.Hour)
	job.Stop()
	job.Stop()
}

func TestPollJob_RestartReplacesPreviousRun(t *testing.T) {
	job, eng, _ := newTestPollJob(t)
	eng.EXPECT().ListSessions(gomock.Any()).Return(nil, nil).AnyTimes()

	job.Start(context.Background(), time.Hour)
	job.Start(context.Background(), time.Hour)
	job.Stop()
}
