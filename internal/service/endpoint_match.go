package service

import (
	"path/filepath"
	"strings"

	"github.com/AIR-hl/syncpilot/internal/store"
	"github.com/AIR-hl/syncpilot/models"
)

// remoteSpec is the decomposed form of a remote endpoint address string.
type remoteSpec struct {
	protocol models.Protocol
	user     string
	host     string
	path     string
}

// parseRemoteSpec decomposes the address forms a profile may carry:
// user@host:path, host:path, and docker://container/path.
func parseRemoteSpec(s string) remoteSpec {
	if rest, ok := strings.CutPrefix(s, "docker://"); ok {
		host, p, found := strings.Cut(rest, "/")
		if found {
			p = "/" + p
		}
		return remoteSpec{protocol: models.ProtocolContainer, host: host, path: p}
	}

	host, p, found := strings.Cut(s, ":")
	if !found {
		return remoteSpec{protocol: models.ProtocolLocal, path: s}
	}

	var user string
	if u, h, hasUser := strings.Cut(host, "@"); hasUser {
		user, host = u, h
	}
	return remoteSpec{protocol: models.ProtocolSSH, user: user, host: host, path: p}
}

// remoteSpecFromEndpoint renders a live endpoint into the same decomposed
// form for comparison against profile strings.
func remoteSpecFromEndpoint(ep models.Endpoint) remoteSpec {
	return remoteSpec{
		protocol: ep.Protocol,
		user:     ep.User,
		host:     ep.Host,
		path:     ep.Path,
	}
}

// remoteEquivalent reports whether two remote forms refer to the same
// endpoint. The user component is compared only when both sides carry one:
// "host:path" and "user@host:path" commonly name the same target through ssh
// config.
func remoteEquivalent(a, b remoteSpec) bool {
	if a.protocol != b.protocol && !(a.protocol == models.ProtocolLocal && b.protocol == models.ProtocolLocal) {
		return false
	}
	if a.host != b.host {
		return false
	}
	if a.user != "" && b.user != "" && a.user != b.user {
		return false
	}
	if a.protocol == models.ProtocolLocal {
		return store.NormalizePath(a.path) == store.NormalizePath(b.path)
	}
	return strings.TrimSuffix(a.path, "/") == strings.TrimSuffix(b.path, "/")
}

// pathsRelated reports the bidirectional containment check used when
// deciding whether a session belongs to a workspace folder: a session's
// configured root may be an ancestor or a descendant of the folder.
func pathsRelated(a, b string) bool {
	na := store.NormalizePath(a)
	nb := store.NormalizePath(b)
	if na == nb {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(na, nb+sep) || strings.HasPrefix(nb, na+sep)
}
