// Package testutil contains small helpers shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/hupe1980/graphmesh/core"
)

// Collect drains an event stream until it closes, failing the test if the
// timeout fires first.
func Collect(t *testing.T, events <-chan core.Event, timeout time.Duration) []core.Event {
	t.Helper()

	var out []core.Event
	deadline := time.After(timeout)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("timeout waiting for event stream to close after %d events", len(out))
			return out
		}
	}
}

// Outputs extracts the values of all OutputEvents in order.
func Outputs(events []core.Event) []any {
	var out []any
	for _, ev := range events {
		if o, ok := ev.(core.OutputEvent); ok {
			out = append(out, o.Value)
		}
	}
	return out
}

// Terminal returns the last event, which callers assert to be the expected
// terminal kind.
func Terminal(t *testing.T, events []core.Event) core.Event {
	t.Helper()
	if len(events) == 0 {
		t.Fatalf("event stream was empty")
	}
	return events[len(events)-1]
}
