// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/AIR-hl/syncpilot/internal/runner"
	"github.com/AIR-hl/syncpilot/models"
)

// MonitorSession starts a long-lived engine monitor process for id and
// forwards parsed state updates to onUpdate. Updates for one session arrive
// in emission order; nothing is guaranteed relative to concurrent List calls.
func (c *cliClient) MonitorSession(ctx context.Context, id string, onUpdate func(models.SyncSession), onError func(error)) (Monitor, error) {
	handle, err := c.run.Start(ctx, c.binary, "sync", "monitor", id, "--template", sessionTemplate+"\n")
	if err != nil {
		return nil, err
	}

	m := &cliMonitor{handle: handle}

	go func() {
		scanner := bufio.NewScanner(handle.Stdout())
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var s models.SyncSession
			if err := json.Unmarshal([]byte(line), &s); err != nil {
				c.log.Warn().Err(err).Str("session", id).Msg("monitor: skipping malformed update")
				continue
			}
			onUpdate(s)
		}

		err := handle.Wait()
		if m.stopped() {
			// Stream torn down by Stop; process exit is expected.
			return
		}
		if err == nil && scanner.Err() != nil {
			err = scanner.Err()
		}
		if err != nil && onError != nil {
			onError(err)
		}
	}()

	return m, nil
}

type cliMonitor struct {
	handle runner.Handle

	mu   sync.Mutex
	done bool
}

// Stop kills the monitor process. Idempotent: repeated calls and calls on an
// already-exited monitor are no-ops.
func (m *cliMonitor) Stop() {
	m.mu.Lock()
	already := m.done
	m.done = true
	m.mu.Unlock()

	if !already {
		m.handle.Stop()
	}
}

func (m *cliMonitor) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}
