package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/models"
)

// remoteState is the probed kind of a remote path.
type remoteState string

const (
	remoteDirectory remoteState = "directory"
	remoteFile      remoteState = "file"
	remoteMissing   remoteState = "missing"
)

func sshTarget(ep models.Endpoint) string {
	if ep.User != "" {
		return ep.User + "@" + ep.Host
	}
	return ep.Host
}

// probeRemote classifies remotePath on the endpoint's host over the remote
// shell. The path fragment is shell-quoted before interpolation.
func probeRemote(ctx context.Context, run runner.Runner, ep models.Endpoint, remotePath string) (remoteState, error) {
	q := shellQuote(remotePath)
	script := fmt.Sprintf("if [ -d %s ]; then echo directory; elif [ -e %s ]; then echo file; else echo missing; fi", q, q)

	res, err := run.Run(ctx, "ssh", sshTarget(ep), script)
	if err != nil {
		return "", fmt.Errorf("probe remote path %q: %w", remotePath, err)
	}

	switch state := remoteState(strings.TrimSpace(res.Stdout)); state {
	case remoteDirectory, remoteFile, remoteMissing:
		return state, nil
	default:
		return "", fmt.Errorf("probe remote path %q: unexpected reply %q", remotePath, res.Stdout)
	}
}

// pushToRemote makes remotePath on the endpoint match localPath: copy when
// the local side has the path, delete remotely when it does not.
func pushToRemote(ctx context.Context, run runner.Runner, fs fsStater, ep models.Endpoint, localPath, remotePath string) error {
	target := sshTarget(ep)

	localExists, err := fs.exists(localPath)
	if err != nil {
		return fmt.Errorf("stat local path %q: %w", localPath, err)
	}

	if !localExists {
		if _, err = run.Run(ctx, "ssh", target, "rm -rf "+shellQuote(remotePath)); err != nil {
			return fmt.Errorf("remove remote path %q: %w", remotePath, err)
		}
		return nil
	}

	parent := path.Dir(remotePath)
	setup := fmt.Sprintf("mkdir -p %s && rm -rf %s", shellQuote(parent), shellQuote(remotePath))
	if _, err = run.Run(ctx, "ssh", target, setup); err != nil {
		return fmt.Errorf("prepare remote path %q: %w", remotePath, err)
	}

	if _, err = run.Run(ctx, "scp", "-r", "-q", localPath, target+":"+shellQuote(remotePath)); err != nil {
		return fmt.Errorf("copy %q to remote %q: %w", localPath, remotePath, err)
	}
	return nil
}

// pullFromRemote makes localPath match remotePath on the endpoint: copy when
// the remote side has the path, delete locally when it does not.
func pullFromRemote(ctx context.Context, run runner.Runner, fs fsMutator, ep models.Endpoint, localPath, remotePath string) error {
	state, err := probeRemote(ctx, run, ep, remotePath)
	if err != nil {
		return err
	}

	if state == remoteMissing {
		return fs.removeAll(localPath)
	}

	if err = fs.removeAll(localPath); err != nil {
		return err
	}
	if err = fs.mkdirParent(localPath); err != nil {
		return err
	}

	if _, err = run.Run(ctx, "scp", "-r", "-q", sshTarget(ep)+":"+shellQuote(remotePath), localPath); err != nil {
		return fmt.Errorf("copy remote %q to %q: %w", remotePath, localPath, err)
	}
	return nil
}

// fsStater / fsMutator are the minimal local-filesystem surfaces the remote
// transfer paths need; the resolver provides afero-backed implementations.
type fsStater interface {
	exists(p string) (bool, error)
}

type fsMutator interface {
	removeAll(p string) error
	mkdirParent(p string) error
}

// containerScript renders the human-runnable command sequence for resolving
// a conflict against a container endpoint. Auto-applying into containers is
// not supported; the user runs (or adapts) this script by hand.
func containerScript(ep models.Endpoint, direction models.ResolutionDirection, localPath, remotePath string) string {
	container := ep.Host

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Manual conflict resolution for container endpoint ")
	b.WriteString(container)
	b.WriteString("\n")

	switch direction {
	case models.DirectionLocal:
		fmt.Fprintf(&b, "docker exec %s rm -rf %s\n", container, shellQuote(remotePath))
		fmt.Fprintf(&b, "docker cp %s %s:%s\n", shellQuote(localPath), container, shellQuote(path.Dir(remotePath)))
	case models.DirectionRemote:
		fmt.Fprintf(&b, "rm -rf %s\n", shellQuote(localPath))
		fmt.Fprintf(&b, "docker cp %s:%s %s\n", container, shellQuote(remotePath), shellQuote(filepath.Dir(localPath)))
	}
	return b.String()
}
