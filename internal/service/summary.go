package service

import (
	"fmt"

	"github.com/AIR-hl/syncpilot/models"
)

// Summaries flattens the retained snapshot into per-session display rows,
// folding in the current rate estimates.
func (s *Services) Summaries() []models.SessionSummary {
	sessions := s.Snapshots.Sessions()
	out := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		out = append(out, s.summarize(&sessions[i]))
	}
	return out
}

func (s *Services) summarize(session *models.SyncSession) models.SessionSummary {
	summary := models.SessionSummary{
		Identifier:    session.Identifier,
		Name:          session.DisplayName(),
		StatusLabel:   session.Status.Label(),
		Paused:        session.Paused,
		Connected:     session.Alpha.Connected && session.Beta.Connected,
		LastError:     session.LastError,
		ConflictCount: len(session.Conflicts),
	}
	if local, ok := session.LocalEndpoint(); ok {
		summary.Files = local.Files
		summary.TotalSize = local.TotalFileSize
	}
	if rate, ok := s.Rates.State(session.Identifier); ok {
		summary.UploadRate = rate.UploadRate
		summary.DownloadRate = rate.DownloadRate
	}
	if session.Paused {
		summary.StatusLabel = "Paused"
	}
	return summary
}

// FormatByteSize renders a byte count for display surfaces.
func FormatByteSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatRate renders a per-second transfer rate.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return ""
	}
	return FormatByteSize(uint64(bytesPerSecond)) + "/s"
}
