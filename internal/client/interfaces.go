// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

// Client is the lifecycle contract for the runnable application.
type Client interface {
	// Run restores configured workspaces, starts the background jobs, and
	// blocks on the interactive panel until exit.
	Run() error
}
