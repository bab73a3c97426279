/*
ledger.go - SecureLedger state machine and mutation entry points

PURPOSE:
  The authoritative economy state for one installation. Owns LedgerState
  exclusively for the process lifetime and routes every mutation through
  the same sequence: policy check, apply, stamp, persist.

STATES:
  Unloaded -> Loaded(Valid) | Loaded(ResetAfterTamper) | Loaded(Degraded)
  Each mutation: Loaded -> Mutating -> Persisted -> Loaded

LOAD BEHAVIOR:
  - No record: create zero-state, stamp, persist.
  - Record present: recompute checksum over its own fields. Mismatch
    means corruption or tampering: emit one tamper_detected event
    (truncated digest prefixes only) and reset to a stamped zero-state.
  - Record with a strictly lower version than one already observed this
    run: restored backup, treated like tampering.
  - Storage read failure: in-memory zero-state, load marked degraded.
    Never fatal.

CONCURRENCY:
  All mutation entry points (Load, Credit, Debit, Reset, FullReset) are
  serialized through a single mutex held from policy check through the
  persisted write. Two concurrent credits can never both read the same
  pre-mutation balance. Read-only queries take the same lock and observe
  only committed state.

FAILURE DISCIPLINE:
  A failed persisted write rolls the in-memory state back before the
  error is returned. No internal failure panics past the public
  contract.

SEE ALSO:
  - integrity.go: Checksum stamping and verification
  - policy.go: Anti-cheat gates invoked by Credit
  - store.go: Store and Reporter interfaces
*/
package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// =============================================================================
// SECURE LEDGER
// =============================================================================

// Config carries the ledger's static configuration.
type Config struct {
	// PlatformTag is mixed into every checksum ("ios", "android").
	PlatformTag string

	// Policy holds the anti-cheat thresholds. Zero value means
	// DefaultPolicy().
	Policy Policy

	// Now overrides the clock. Tests only.
	Now func() time.Time
}

// SecureLedger owns the economy state. Construct once per process with
// New, call Load before any mutation.
type SecureLedger struct {
	mu        sync.Mutex
	store     Store
	reporter  Reporter
	identity  *DeviceIdentity
	integrity Integrity
	policy    Policy
	now       func() time.Time

	loaded bool
	status LoadStatus
	state  LedgerState

	// Highest version observed this run. A later load presenting a
	// strictly lower version is a restored backup.
	maxSeenVersion int64
}

// New creates an unloaded ledger. The store backs both the ledger record
// and the device identifier.
func New(store Store, reporter Reporter, cfg Config) *SecureLedger {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if cfg.PlatformTag == "" {
		cfg.PlatformTag = "unknown"
	}
	if cfg.Policy.RewardDenominations == nil {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SecureLedger{
		store:     store,
		reporter:  reporter,
		identity:  NewDeviceIdentity(store),
		integrity: Integrity{PlatformTag: cfg.PlatformTag},
		policy:    cfg.Policy,
		now:       cfg.Now,
	}
}

// Identity returns the device identity manager backed by the same store.
func (l *SecureLedger) Identity() *DeviceIdentity {
	return l.identity
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads and verifies persisted state. Idempotent: loading twice
// without an intervening mutation yields identical state and does not
// persist again. Failure modes are signaled through LoadResult.Status.
func (l *SecureLedger) Load(ctx context.Context) LoadResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.store.LoadLedger(ctx)
	if err != nil {
		log.Printf("ledger: storage read failed, continuing on zero-state: %v", err)
		l.state = l.freshStateLocked()
		l.finishLoadLocked(LoadDegraded)
		return LoadResult{Status: LoadDegraded, Balance: 0}
	}

	if rec == nil {
		l.state = l.freshStateLocked()
		status := LoadValid
		if err := l.store.SaveLedger(ctx, l.state.toRecord()); err != nil {
			log.Printf("ledger: failed to persist initial state: %v", err)
			status = LoadDegraded
		}
		l.finishLoadLocked(status)
		return LoadResult{Status: status, Balance: 0}
	}

	if !l.integrity.Verify(*rec) {
		computed := l.integrity.Checksum(rec.Balance, rec.TotalCoinsEarned, rec.TotalCoinsSpent, rec.Version)
		l.reporter.Report(ctx, EventTamperDetected, map[string]any{
			"stored_prefix":   DigestPrefix(rec.Checksum),
			"computed_prefix": DigestPrefix(computed),
			"version":         rec.Version,
		})
		return l.resetAfterTamperLocked(ctx)
	}

	if l.maxSeenVersion > 0 && rec.Version < l.maxSeenVersion {
		l.reporter.Report(ctx, EventRollbackDetected, map[string]any{
			"loaded_version":    rec.Version,
			"last_seen_version": l.maxSeenVersion,
		})
		return l.resetAfterTamperLocked(ctx)
	}

	l.state = stateFromRecord(*rec)
	l.finishLoadLocked(LoadValid)
	return LoadResult{Status: LoadValid, Balance: l.state.Balance}
}

// resetAfterTamperLocked replaces state with a stamped zero-state and
// persists it so the next load is clean.
func (l *SecureLedger) resetAfterTamperLocked(ctx context.Context) LoadResult {
	l.state = l.freshStateLocked()
	if err := l.store.SaveLedger(ctx, l.state.toRecord()); err != nil {
		log.Printf("ledger: failed to persist reset state: %v", err)
	}
	l.loaded = true
	l.status = LoadResetAfterTamper
	l.maxSeenVersion = l.state.Version
	return LoadResult{Status: LoadResetAfterTamper, Balance: 0}
}

func (l *SecureLedger) finishLoadLocked(status LoadStatus) {
	l.loaded = true
	l.status = status
	if l.state.Version > l.maxSeenVersion {
		l.maxSeenVersion = l.state.Version
	}
}

// freshStateLocked builds a stamped zero-state at version 1.
func (l *SecureLedger) freshStateLocked() LedgerState {
	s := LedgerState{Version: 1, LastValidated: l.now().UTC()}
	s.Checksum = l.integrity.Checksum(s.Balance, s.LifetimeEarned, s.LifetimeSpent, s.Version)
	return s
}

// =============================================================================
// QUERIES
// =============================================================================

// VerifiedBalance recomputes lifetimeEarned - lifetimeSpent. If the
// stored balance disagrees, the clamped non-negative value is returned
// and the mismatch is reported; the stored field is corrected on the
// next persisted mutation, not eagerly.
func (l *SecureLedger) VerifiedBalance(ctx context.Context) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verifiedBalanceLocked(ctx)
}

func (l *SecureLedger) verifiedBalanceLocked(ctx context.Context) int64 {
	computed := l.state.LifetimeEarned - l.state.LifetimeSpent
	if computed < 0 {
		computed = 0
	}
	if computed != l.state.Balance {
		log.Printf("ledger: balance invariant violation: stored %d, computed %d", l.state.Balance, computed)
		l.reporter.Report(ctx, EventInvariantViolation, map[string]any{
			"stored":   l.state.Balance,
			"computed": computed,
		})
	}
	return computed
}

// Stats returns a consistent snapshot of the ledger.
func (l *SecureLedger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Balance:        l.state.Balance,
		LifetimeEarned: l.state.LifetimeEarned,
		LifetimeSpent:  l.state.LifetimeSpent,
		Version:        l.state.Version,
		LastValidated:  l.state.LastValidated,
		Status:         l.status,
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Credit adds coins from the given source and returns the new balance.
//
// Amounts <= 0 are a no-op returning the current verified balance, not
// an error. Reward credits outside the allow-listed denominations are
// silently dropped: the caller cannot distinguish "granted" from
// "rejected" except by re-reading the balance.
func (l *SecureLedger) Credit(ctx context.Context, amount int64, source CreditSource) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		return 0, ErrNotLoaded
	}

	verified := l.verifiedBalanceLocked(ctx)
	if amount <= 0 {
		return verified, nil
	}

	hasPrior := !l.state.LastValidated.IsZero()
	sinceLast := l.now().Sub(l.state.LastValidated)
	allowed, signals := l.policy.EvaluateCredit(source, amount, sinceLast, hasPrior)
	for _, s := range signals {
		l.reporter.Report(ctx, s.Action, s.Metadata)
	}
	if !allowed {
		return verified, nil
	}

	prev := l.state
	l.state.Balance = verified + amount
	l.state.LifetimeEarned += amount
	if err := l.stampAndPersistLocked(ctx); err != nil {
		l.state = prev
		return verified, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return l.state.Balance, nil
}

// Debit removes coins. Returns false (with no mutation) when amount is
// non-positive or exceeds the verified balance. The error is non-nil
// only when the persisted write failed; the mutation is rolled back
// first.
func (l *SecureLedger) Debit(ctx context.Context, amount int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		return false, ErrNotLoaded
	}

	verified := l.verifiedBalanceLocked(ctx)
	if amount <= 0 || amount > verified {
		return false, nil
	}

	prev := l.state
	l.state.Balance = verified - amount
	l.state.LifetimeSpent += amount
	if err := l.stampAndPersistLocked(ctx); err != nil {
		l.state = prev
		return false, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return true, nil
}

// stampAndPersistLocked bumps the version, refreshes lastValidated,
// recomputes the checksum, and persists. The caller rolls back on error.
func (l *SecureLedger) stampAndPersistLocked(ctx context.Context) error {
	l.state.Version++
	l.state.LastValidated = l.now().UTC()
	l.state.Checksum = l.integrity.Checksum(
		l.state.Balance, l.state.LifetimeEarned, l.state.LifetimeSpent, l.state.Version)

	if err := l.store.SaveLedger(ctx, l.state.toRecord()); err != nil {
		return err
	}
	if l.state.Version > l.maxSeenVersion {
		l.maxSeenVersion = l.state.Version
	}
	return nil
}

// =============================================================================
// RESETS
// =============================================================================

// Reset recreates a zero-state and clears persisted ledger storage. The
// device identifier is preserved.
func (l *SecureLedger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.DeleteLedger(ctx)
	l.state = l.freshStateLocked()
	l.loaded = true
	l.status = LoadValid
	l.maxSeenVersion = l.state.Version

	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// FullReset is Reset plus clearing the device identifier. Used only for
// full account erasure.
func (l *SecureLedger) FullReset(ctx context.Context) error {
	if err := l.Reset(ctx); err != nil {
		return err
	}
	return l.identity.Clear(ctx)
}
