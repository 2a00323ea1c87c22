package engine

import (
	"errors"
	"strings"
)

var (
	// ErrSessionNotFound indicates the engine has no session matching the
	// requested identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEngineUnavailable indicates the engine binary is missing or its
	// daemon could not be reached.
	ErrEngineUnavailable = errors.New("synchronization engine unavailable")
)

// noSessionMarkers are the engine reply fragments that mean "the selection
// matched nothing" rather than a real failure. The engine reports an empty
// result set this way when a selector is supplied.
var noSessionMarkers = []string{
	"unable to locate requested sessions",
	"no matching sessions",
	"did not match any sessions",
}

func isNoSessionsReply(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range noSessionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
