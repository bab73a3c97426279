/*
store.go - Persistence and reporting interfaces

PURPOSE:
  Defines the two collaborators the ledger core depends on: a key-value
  Store holding the single ledger record and the device identifier, and a
  Reporter delivering best-effort security telemetry.

STORE SEMANTICS:
  - One ledger record and one device record per installation.
  - LoadLedger returns (nil, nil) when no record exists yet. A read error
    is a degradation signal, never fatal.
  - SaveLedger overwrites the single record atomically.

REPORTER SEMANTICS:
  - Fire-and-forget. Implementations must never propagate their own
    failures to the caller and must not block mutation paths beyond
    issuing the request.

SEE ALSO:
  - store/memory.go: In-memory implementation with failure injection
  - ../store/sqlite/sqlite.go: SQLite-backed implementation
*/
package ledger

import (
	"context"
	"sync"
)

// =============================================================================
// STORE - Key-value persistence for ledger + device records
// =============================================================================

// Store persists the single ledger record and the device identifier.
type Store interface {
	// LoadLedger returns the persisted ledger record, or (nil, nil) when
	// none exists.
	LoadLedger(ctx context.Context) (*Record, error)

	// SaveLedger overwrites the persisted ledger record.
	SaveLedger(ctx context.Context, r Record) error

	// DeleteLedger removes the persisted ledger record.
	DeleteLedger(ctx context.Context) error

	// LoadDeviceID returns the persisted device identifier, or "" when
	// none exists.
	LoadDeviceID(ctx context.Context) (string, error)

	// SaveDeviceID persists the device identifier.
	SaveDeviceID(ctx context.Context, id string) error

	// DeleteDeviceID removes the device identifier. Used only for full
	// account erasure.
	DeleteDeviceID(ctx context.Context) error
}

// =============================================================================
// REPORTER - Best-effort security telemetry
// =============================================================================

// Reporter delivers security events. Delivery is best-effort: failures
// are swallowed by the implementation.
type Reporter interface {
	Report(ctx context.Context, action string, metadata map[string]any)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Report(context.Context, string, map[string]any) {}

// ReportedEvent is a captured security event.
type ReportedEvent struct {
	Action   string
	Metadata map[string]any
}

// RecordingReporter captures events in memory. Synchronous, for tests.
type RecordingReporter struct {
	mu     sync.Mutex
	events []ReportedEvent
}

func (r *RecordingReporter) Report(_ context.Context, action string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ReportedEvent{Action: action, Metadata: metadata})
}

// Events returns a copy of all captured events.
func (r *RecordingReporter) Events() []ReportedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ReportedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// EventsByAction returns captured events matching action.
func (r *RecordingReporter) EventsByAction(action string) []ReportedEvent {
	var out []ReportedEvent
	for _, e := range r.Events() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
