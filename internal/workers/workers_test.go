// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"testing"
)

// mockWorker is a test implementation of the Worker interface
// that records start/stop calls into a shared journal.
type mockWorker struct {
	name    string
	journal *[]string
}

func (m *mockWorker) Start(context.Context) {
	*m.journal = append(*m.journal, "start "+m.name)
}

func (m *mockWorker) Stop() {
	*m.journal = append(*m.journal, "stop "+m.name)
}

func TestWorkers_StartStopOrder(t *testing.T) {
	var journal []string
	ws := New(
		&mockWorker{name: "a", journal: &journal},
		nil,
		&mockWorker{name: "b", journal: &journal},
	)

	ws.Start(context.Background())
	ws.Stop()

	want := []string{"start a", "start b", "stop b", "stop a"}
	if len(journal) != len(want) {
		t.Fatalf("expected %v, got %v", want, journal)
	}
	for i := range want {
		if journal[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], journal[i])
		}
	}
}

func TestWorkers_Empty(t *testing.T) {
	ws := New()

	// Should not panic on empty workers list
	ws.Start(context.Background())
	ws.Stop()
}

func TestWorkers_ZeroValue(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Start(context.Background())
	ws.Stop()
}
