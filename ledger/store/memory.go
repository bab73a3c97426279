// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/arcadia/coin-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// ErrInjected is returned by Memory when failure injection is enabled.
var ErrInjected = errors.New("injected storage failure")

// Memory holds the ledger and device records in process memory. Supports
// failure injection for storage-degradation tests.
type Memory struct {
	mu       sync.RWMutex
	ledger   *ledger.Record
	deviceID string

	failReads  bool
	failWrites bool

	saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

// FailReads toggles read failure injection.
func (m *Memory) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = fail
}

// FailWrites toggles write failure injection.
func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// SaveCount returns how many times the ledger record was written.
func (m *Memory) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Tamper mutates the stored record in place without restamping the
// checksum, simulating a manual edit of the save file.
func (m *Memory) Tamper(mutate func(*ledger.Record)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledger != nil {
		mutate(m.ledger)
	}
}

func (m *Memory) LoadLedger(_ context.Context) (*ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failReads {
		return nil, ErrInjected
	}
	if m.ledger == nil {
		return nil, nil
	}
	r := *m.ledger
	return &r, nil
}

func (m *Memory) SaveLedger(_ context.Context, r ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrInjected
	}
	m.ledger = &r
	m.saves++
	return nil
}

func (m *Memory) DeleteLedger(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrInjected
	}
	m.ledger = nil
	return nil
}

func (m *Memory) LoadDeviceID(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failReads {
		return "", ErrInjected
	}
	return m.deviceID, nil
}

func (m *Memory) SaveDeviceID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrInjected
	}
	m.deviceID = id
	return nil
}

func (m *Memory) DeleteDeviceID(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrInjected
	}
	m.deviceID = ""
	return nil
}
