package tui

import (
	"errors"
	"strings"

	"github.com/AIR-hl/syncpilot/internal/engine"
)

func humanizeEngineError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, engine.ErrEngineUnavailable) {
		return "Synchronization engine is not installed or its daemon is not running"
	}
	if errors.Is(err, engine.ErrSessionNotFound) {
		return "Session no longer exists; it may have been terminated elsewhere"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "context deadline exceeded") {
		return "Engine daemon is unreachable"
	}

	return err.Error()
}
