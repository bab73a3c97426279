/*
Package ledger provides the tamper-resistant local economy ledger.

PURPOSE:
  This package contains the authoritative in-memory + persisted economy
  state for a single installation: the spendable coin balance, lifetime
  earned/spent counters, and the integrity checksum that detects manual
  edits of the stored record.

KEY CONCEPTS IN THIS FILE (types.go):
  - LedgerState: The canonical in-memory economy state
  - Record: The persisted shape of that state (epoch-ms timestamps)
  - CreditSource: Where a credit came from (gameplay, purchase, ...)
  - LoadStatus: Outcome of loading persisted state

DESIGN PRINCIPLES:
  1. Single owner: SecureLedger exclusively owns LedgerState per process
  2. Integrity: Every persisted write is stamped with a fresh checksum
  3. Detectability: Naive tampering produces a recoverable reset, never
     silent currency inflation

SEE ALSO:
  - ledger.go: SecureLedger state machine and mutation entry points
  - integrity.go: Checksum computation and verification
  - policy.go: Anti-cheat rules applied before credits
*/
package ledger

import "time"

// =============================================================================
// LEDGER STATE - Canonical in-memory economy state
// =============================================================================

// LedgerState is the authoritative economy state for one installation.
//
// INVARIANT: Balance == LifetimeEarned - LifetimeSpent after every
// successful mutation. Disagreement is treated as a security signal and
// corrected by clamping, never silently trusted.
type LedgerState struct {
	Balance        int64
	LifetimeEarned int64
	LifetimeSpent  int64
	Version        int64
	LastValidated  time.Time
	Checksum       string
}

// Record is the persisted shape of LedgerState. Timestamps are epoch
// milliseconds to keep the stored format locale-independent.
type Record struct {
	Balance          int64
	TotalCoinsEarned int64
	TotalCoinsSpent  int64
	LastValidated    int64
	Checksum         string
	Version          int64
}

func (s LedgerState) toRecord() Record {
	return Record{
		Balance:          s.Balance,
		TotalCoinsEarned: s.LifetimeEarned,
		TotalCoinsSpent:  s.LifetimeSpent,
		LastValidated:    s.LastValidated.UnixMilli(),
		Checksum:         s.Checksum,
		Version:          s.Version,
	}
}

func stateFromRecord(r Record) LedgerState {
	return LedgerState{
		Balance:        r.Balance,
		LifetimeEarned: r.TotalCoinsEarned,
		LifetimeSpent:  r.TotalCoinsSpent,
		Version:        r.Version,
		LastValidated:  time.UnixMilli(r.LastValidated).UTC(),
		Checksum:       r.Checksum,
	}
}

// =============================================================================
// CREDIT SOURCES
// =============================================================================

// CreditSource identifies where a credit originated. Gameplay and reward
// credits pass through anti-cheat gates; purchase credits are an
// independent trust path validated server-side.
type CreditSource string

const (
	SourceGameplay    CreditSource = "gameplay"
	SourcePurchase    CreditSource = "purchase"
	SourceReward      CreditSource = "reward"
	SourceAchievement CreditSource = "achievement"
)

// =============================================================================
// LOAD STATUS
// =============================================================================

// LoadStatus describes the outcome of loading persisted state.
type LoadStatus string

const (
	// LoadValid means the persisted record verified cleanly (or a fresh
	// zero-state was created because none existed).
	LoadValid LoadStatus = "valid"

	// LoadResetAfterTamper means the stored checksum did not match a
	// freshly computed one and the ledger was reset to a zero-state.
	LoadResetAfterTamper LoadStatus = "reset_after_tamper"

	// LoadDegraded means persistent storage could not be read; the ledger
	// continues on an in-memory zero-state.
	LoadDegraded LoadStatus = "degraded"
)

// LoadResult is returned by Load. Failure modes are signaled through
// Status, never through a panic or a fatal error.
type LoadResult struct {
	Status  LoadStatus
	Balance int64
}

// Stats is a read-only snapshot of the ledger.
type Stats struct {
	Balance        int64      `json:"balance"`
	LifetimeEarned int64      `json:"lifetime_earned"`
	LifetimeSpent  int64      `json:"lifetime_spent"`
	Version        int64      `json:"version"`
	LastValidated  time.Time  `json:"last_validated"`
	Status         LoadStatus `json:"status"`
}

// =============================================================================
// SECURITY EVENT ACTIONS
// =============================================================================

const (
	EventTamperDetected     = "tamper_detected"
	EventRollbackDetected   = "rollback_detected"
	EventInvariantViolation = "invariant_violation"
	EventHighScore          = "high_score"
	EventVelocityCoins      = "velocity_coins"
	EventFallbackValidation = "fallback_validation"
	EventGrantMismatch      = "grant_mismatch"
)
