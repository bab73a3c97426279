/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All error values in one place. Public operations favor soft rejection
  (boolean results, no-op returns) over errors; an error means a real
  failure, and no internal failure escapes the contract boundary as a
  panic.

USAGE:
  if errors.Is(err, ledger.ErrStorageWrite) {
      // mutation was rolled back, in-memory state unchanged
  }
*/
package ledger

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStorageWrite indicates a persisted write failed. The in-memory
	// mutation is rolled back before this is returned.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrNotLoaded is returned when a mutation is attempted before Load.
	ErrNotLoaded = errors.New("ledger not loaded")
)
