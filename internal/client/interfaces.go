// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for the vault runtime.
type Client interface {
	// Start launches background work and returns immediately.
	Start(ctx context.Context)
	// Close releases every resource. It must be safe to call twice.
	Close(ctx context.Context) error
}
