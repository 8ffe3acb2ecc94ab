// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the vault application runtime.
//
// It wires storage, the event bus, the audit subscriber, the vault service
// and the session watcher into a single process lifecycle used by the
// command-line interface.
package client
