package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/models"
)

func TestSummaries(t *testing.T) {
	svc := &Services{
		Snapshots: NewSnapshotStore(logger.Nop()),
		Rates:     NewRateEstimator(0),
	}

	s := watchedSession("s1", 3)
	s.Alpha.Files = 120
	s.Alpha.TotalFileSize = 4096
	paused := watchedSession("s2", 1)
	paused.Paused = true
	svc.Snapshots.Update([]models.SyncSession{s, paused})

	summaries := svc.Summaries()
	assert.Len(t, summaries, 2)

	byID := make(map[string]models.SessionSummary)
	for _, sum := range summaries {
		byID[sum.Identifier] = sum
	}

	assert.Equal(t, "Watching for changes", byID["s1"].StatusLabel)
	assert.True(t, byID["s1"].Connected)
	assert.Equal(t, uint64(120), byID["s1"].Files)
	assert.Equal(t, uint64(4096), byID["s1"].TotalSize)

	// Paused wins over whatever status string the engine reports.
	assert.Equal(t, "Paused", byID["s2"].StatusLabel)
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatByteSize(512))
	assert.Equal(t, "1.0 KiB", FormatByteSize(1024))
	assert.Equal(t, "1.5 MiB", FormatByteSize(1536*1024))
	assert.Equal(t, "2.0 GiB", FormatByteSize(2<<30))
}

func TestFormatRate(t *testing.T) {
	assert.Empty(t, FormatRate(0))
	assert.Equal(t, "2.0 KiB/s", FormatRate(2048))
}
