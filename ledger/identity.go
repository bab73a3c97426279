/*
identity.go - Stable per-install device identifier

PURPOSE:
  Generates and persists an opaque random identifier for this
  installation. The identifier survives ledger resets and is cleared
  only on full account erasure.

BEHAVIOR:
  - First call: 16 bytes of cryptographically strong randomness,
    persisted as 32 lowercase hex characters.
  - Subsequent calls: cached/persisted value returned unchanged.
  - Storage read failure is treated as "not yet created" and falls
    through to generation. Never fatal.
*/
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// =============================================================================
// DEVICE IDENTITY MANAGER
// =============================================================================

// DeviceIdentity owns the per-install device identifier.
type DeviceIdentity struct {
	mu     sync.Mutex
	store  Store
	cached string
}

func NewDeviceIdentity(store Store) *DeviceIdentity {
	return &DeviceIdentity{store: store}
}

// GetOrCreate returns the stable device identifier, generating and
// persisting one on first use.
func (d *DeviceIdentity) GetOrCreate(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != "" {
		return d.cached, nil
	}

	// A read failure means "not yet created", not fatal.
	if id, err := d.store.LoadDeviceID(ctx); err == nil && id != "" {
		d.cached = id
		return id, nil
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate device id: %w", err)
	}
	id := hex.EncodeToString(raw)

	if err := d.store.SaveDeviceID(ctx, id); err != nil {
		// Keep the generated id for this process even if persistence
		// failed; the next run will generate a fresh one.
		d.cached = id
		return id, nil
	}

	d.cached = id
	return id, nil
}

// Clear removes the device identifier. Used only for full account
// erasure.
func (d *DeviceIdentity) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cached = ""
	return d.store.DeleteDeviceID(ctx)
}
