package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIR-hl/syncpilot/models"
)

// fakeClock injects deterministic time into the estimator.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEstimator() (*RateEstimator, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	est := NewRateEstimator(0)
	est.now = clock.now
	return est, clock
}

func stagingSession(status models.Status, alphaBytes, betaBytes uint64) models.SyncSession {
	s := models.SyncSession{
		Identifier: "sess-1",
		Status:     status,
		Alpha:      models.Endpoint{Protocol: models.ProtocolLocal, Path: "/local"},
		Beta:       models.Endpoint{Protocol: models.ProtocolSSH, Host: "h", Path: "/remote"},
	}
	if alphaBytes > 0 {
		s.Alpha.StagingProgress = &models.StagingProgress{ReceivedSize: alphaBytes, ExpectedSize: alphaBytes * 2}
	}
	if betaBytes > 0 {
		s.Beta.StagingProgress = &models.StagingProgress{ReceivedSize: betaBytes, ExpectedSize: betaBytes * 2}
	}
	return s
}

func TestRateEstimator_FirstSampleIsBaselineOnly(t *testing.T) {
	est, _ := newTestEstimator()

	state := est.Observe(stagingSession(models.StatusStagingBeta, 0, 1000))
	assert.True(t, state.HasSample)
	assert.Zero(t, state.UploadRate)
	assert.Zero(t, state.DownloadRate)
}

func TestRateEstimator_LocalAlphaUploadToBeta(t *testing.T) {
	est, clock := newTestEstimator()

	est.Observe(stagingSession(models.StatusStagingBeta, 0, 1000))
	clock.advance(2 * time.Second)
	state := est.Observe(stagingSession(models.StatusStagingBeta, 0, 5000))

	// Local alpha, beta receiving: bytes flow out of this machine.
	assert.InDelta(t, 2000.0, state.UploadRate, 0.01)
	assert.Zero(t, state.DownloadRate)
}

func TestRateEstimator_LocalAlphaDownloadFromBeta(t *testing.T) {
	est, clock := newTestEstimator()

	est.Observe(stagingSession(models.StatusStagingAlpha, 1000, 0))
	clock.advance(time.Second)
	state := est.Observe(stagingSession(models.StatusStagingAlpha, 4000, 0))

	assert.InDelta(t, 3000.0, state.DownloadRate, 0.01)
	assert.Zero(t, state.UploadRate)
}

func TestRateEstimator_DirectionFromProgressWhenStatusAmbiguous(t *testing.T) {
	est, clock := newTestEstimator()

	// Status does not name a staging side, but beta carries progress.
	est.Observe(stagingSession(models.StatusWatching, 0, 500))
	clock.advance(time.Second)
	state := est.Observe(stagingSession(models.StatusWatching, 0, 1500))

	assert.InDelta(t, 1000.0, state.UploadRate, 0.01)
}

func TestRateEstimator_CounterDecreaseResetsBaseline(t *testing.T) {
	est, clock := newTestEstimator()

	est.Observe(stagingSession(models.StatusStagingBeta, 0, 9000))
	clock.advance(time.Second)
	est.Observe(stagingSession(models.StatusStagingBeta, 0, 10000))

	// New staging cycle: counter dropped. No negative rate, baseline resets.
	clock.advance(time.Second)
	state := est.Observe(stagingSession(models.StatusStagingBeta, 0, 200))
	assert.GreaterOrEqual(t, state.UploadRate, 0.0)
	assert.GreaterOrEqual(t, state.DownloadRate, 0.0)

	clock.advance(time.Second)
	state = est.Observe(stagingSession(models.StatusStagingBeta, 0, 1200))
	assert.InDelta(t, 1000.0, state.UploadRate, 0.01)
}

func TestRateEstimator_SamplesBelowMinIntervalIgnored(t *testing.T) {
	est, clock := newTestEstimator()

	est.Observe(stagingSession(models.StatusStagingBeta, 0, 1000))
	clock.advance(100 * time.Millisecond)
	state := est.Observe(stagingSession(models.StatusStagingBeta, 0, 2000))

	// Too close to the last sample to divide by.
	assert.Zero(t, state.UploadRate)
	assert.Equal(t, uint64(1000), state.LastReceivedSize)
}

func TestRateEstimator_IdleClearsRates(t *testing.T) {
	est, clock := newTestEstimator()

	est.Observe(stagingSession(models.StatusStagingBeta, 0, 1000))
	clock.advance(time.Second)
	est.Observe(stagingSession(models.StatusStagingBeta, 0, 3000))

	state := est.Observe(stagingSession(models.StatusWatching, 0, 0))
	assert.Zero(t, state.UploadRate)
	assert.Zero(t, state.DownloadRate)
	assert.False(t, state.HasSample)
}

func TestRateEstimator_StateAndForget(t *testing.T) {
	est, _ := newTestEstimator()
	est.Observe(stagingSession(models.StatusStagingBeta, 0, 1000))

	st, ok := est.State("sess-1")
	require.True(t, ok)
	assert.True(t, st.HasSample)

	est.Forget("sess-1")
	_, ok = est.State("sess-1")
	assert.False(t, ok)
}
