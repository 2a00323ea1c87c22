package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AIR-hl/syncpilot/models"
)

func TestParseRemoteSpec(t *testing.T) {
	spec := parseRemoteSpec("dev@build:/srv/proj")
	assert.Equal(t, models.ProtocolSSH, spec.protocol)
	assert.Equal(t, "dev", spec.user)
	assert.Equal(t, "build", spec.host)
	assert.Equal(t, "/srv/proj", spec.path)

	spec = parseRemoteSpec("build:/srv/proj")
	assert.Equal(t, models.ProtocolSSH, spec.protocol)
	assert.Empty(t, spec.user)
	assert.Equal(t, "build", spec.host)

	spec = parseRemoteSpec("docker://webapp/srv/app")
	assert.Equal(t, models.ProtocolContainer, spec.protocol)
	assert.Equal(t, "webapp", spec.host)
	assert.Equal(t, "/srv/app", spec.path)

	spec = parseRemoteSpec("/home/dev/proj")
	assert.Equal(t, models.ProtocolLocal, spec.protocol)
	assert.Equal(t, "/home/dev/proj", spec.path)
}

func TestRemoteEquivalent(t *testing.T) {
	withUser := parseRemoteSpec("dev@build:/srv/proj")
	withoutUser := parseRemoteSpec("build:/srv/proj")
	otherUser := parseRemoteSpec("ops@build:/srv/proj")
	otherHost := parseRemoteSpec("dev@staging:/srv/proj")
	trailingSlash := parseRemoteSpec("build:/srv/proj/")

	// Missing user on either side matches: ssh config supplies it.
	assert.True(t, remoteEquivalent(withUser, withoutUser))
	assert.True(t, remoteEquivalent(withUser, withUser))
	assert.True(t, remoteEquivalent(withoutUser, trailingSlash))

	assert.False(t, remoteEquivalent(withUser, otherUser))
	assert.False(t, remoteEquivalent(withUser, otherHost))

	container := parseRemoteSpec("docker://webapp/srv/app")
	assert.False(t, remoteEquivalent(withUser, container))
	assert.True(t, remoteEquivalent(container, parseRemoteSpec("docker://webapp/srv/app")))
}

func TestRemoteEquivalent_FromEndpoint(t *testing.T) {
	live := remoteSpecFromEndpoint(models.Endpoint{
		Protocol: models.ProtocolSSH,
		User:     "dev",
		Host:     "build",
		Path:     "/srv/proj",
	})
	assert.True(t, remoteEquivalent(live, parseRemoteSpec("build:/srv/proj")))
}

func TestPathsRelated(t *testing.T) {
	assert.True(t, pathsRelated("/ws/proj", "/ws/proj"))
	assert.True(t, pathsRelated("/ws/proj", "/ws/proj/sub"))
	assert.True(t, pathsRelated("/ws/proj/sub", "/ws/proj"))
	assert.False(t, pathsRelated("/ws/proj", "/ws/project"))
	assert.False(t, pathsRelated("/ws/a", "/ws/b"))
}
