package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arcadia/coin-engine/ledger"
	"github.com/arcadia/coin-engine/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "coins.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadLedger_AbsentRecord(t *testing.T) {
	// GIVEN: A freshly migrated database
	// WHEN: LoadLedger runs
	// THEN: (nil, nil) signals "no record yet", not an error

	s := newTestStore(t)

	rec, err := s.LoadLedger(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSaveLedger_RoundTrip(t *testing.T) {
	// GIVEN: A stamped ledger record
	// WHEN: It is saved and loaded back
	// THEN: Every field survives unchanged

	s := newTestStore(t)
	ctx := context.Background()

	want := ledger.Record{
		Balance:          750,
		TotalCoinsEarned: 1000,
		TotalCoinsSpent:  250,
		LastValidated:    1772452800000,
		Checksum:         "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Version:          42,
	}
	require.NoError(t, s.SaveLedger(ctx, want))

	got, err := s.LoadLedger(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSaveLedger_OverwritesSingleRecord(t *testing.T) {
	// GIVEN: A persisted record
	// WHEN: A newer record is saved
	// THEN: Only the newer record remains

	s := newTestStore(t)
	ctx := context.Background()

	first := ledger.Record{Balance: 100, TotalCoinsEarned: 100, Checksum: "aa", Version: 2, LastValidated: 1}
	second := ledger.Record{Balance: 50, TotalCoinsEarned: 100, TotalCoinsSpent: 50, Checksum: "bb", Version: 3, LastValidated: 2}

	require.NoError(t, s.SaveLedger(ctx, first))
	require.NoError(t, s.SaveLedger(ctx, second))

	got, err := s.LoadLedger(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestDeleteLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLedger(ctx, ledger.Record{Balance: 1, TotalCoinsEarned: 1, Checksum: "aa", Version: 2}))
	require.NoError(t, s.DeleteLedger(ctx))

	rec, err := s.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Deleting again is harmless.
	assert.NoError(t, s.DeleteLedger(ctx))
}

func TestDeviceID_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.LoadDeviceID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id, "absent identifier reads as empty string")

	require.NoError(t, s.SaveDeviceID(ctx, "00112233445566778899aabbccddeeff"))

	id, err = s.LoadDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "00112233445566778899aabbccddeeff", id)

	// Overwrite keeps the single-row discipline.
	require.NoError(t, s.SaveDeviceID(ctx, "ffeeddccbbaa99887766554433221100"))
	id, err = s.LoadDeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ffeeddccbbaa99887766554433221100", id)
}

func TestDeleteDeviceID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDeviceID(ctx, "00112233445566778899aabbccddeeff"))
	require.NoError(t, s.DeleteDeviceID(ctx))

	id, err := s.LoadDeviceID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestStore_BacksFullLedgerLifecycle(t *testing.T) {
	// GIVEN: A ledger running on the SQLite store
	// WHEN: State is mutated, then reloaded by a second ledger instance
	//       over the same database
	// THEN: The persisted state verifies cleanly and carries over

	dbPath := filepath.Join(t.TempDir(), "coins.db")
	s, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	first := ledger.New(s, nil, ledger.Config{PlatformTag: "android"})
	require.Equal(t, ledger.LoadValid, first.Load(ctx).Status)

	_, err = first.Credit(ctx, 500, ledger.SourceReward)
	require.NoError(t, err)
	ok, err := first.Debit(ctx, 200)
	require.NoError(t, err)
	require.True(t, ok)

	second := ledger.New(s, nil, ledger.Config{PlatformTag: "android"})
	result := second.Load(ctx)

	assert.Equal(t, ledger.LoadValid, result.Status)
	assert.Equal(t, int64(300), result.Balance)
}
