// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive application runtime.
//
// It wires configuration, the engine adapter, local state storage, the
// reconciliation services, background polling, and the terminal UI into a
// single process lifecycle.
package client
