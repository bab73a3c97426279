/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists the single ledger record and the device identifier for one
  installation. SQLite is the on-device key-value collaborator; the same
  patterns apply to any embedded store.

INTERFACES IMPLEMENTED:
  ledger.Store: Ledger record + device identifier persistence

SINGLE-ROW DISCIPLINE:
  Both tables are constrained to one row (id = 1). There is exactly one
  ledger and one device identity per installation; concurrent processes
  sharing the same file are out of scope.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety within the process. All ledger
  mutation is already serialized above this layer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better crash
  recovery: a mid-write process kill leaves either the old record or the
  new one, never a torn row.

USAGE:
  store, err := sqlite.New("./data/coins.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/arcadia/coin-engine/ledger"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Single economy ledger record per installation
	CREATE TABLE IF NOT EXISTS economy_ledger (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		balance INTEGER NOT NULL,
		total_coins_earned INTEGER NOT NULL,
		total_coins_spent INTEGER NOT NULL,
		last_validated INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Single device identifier per installation
	CREATE TABLE IF NOT EXISTS device_identity (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		device_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER RECORD (ledger.Store interface)
// =============================================================================

// LoadLedger returns the persisted ledger record, or (nil, nil) when none
// exists yet.
func (s *Store) LoadLedger(ctx context.Context) (*ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r ledger.Record
	err := s.db.QueryRowContext(ctx,
		`SELECT balance, total_coins_earned, total_coins_spent, last_validated, checksum, version
		 FROM economy_ledger WHERE id = 1`,
	).Scan(&r.Balance, &r.TotalCoinsEarned, &r.TotalCoinsSpent, &r.LastValidated, &r.Checksum, &r.Version)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger record: %w", err)
	}
	return &r, nil
}

// SaveLedger overwrites the single ledger record.
func (s *Store) SaveLedger(ctx context.Context, r ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO economy_ledger
		(id, balance, total_coins_earned, total_coins_spent, last_validated, checksum, version, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			balance = excluded.balance,
			total_coins_earned = excluded.total_coins_earned,
			total_coins_spent = excluded.total_coins_spent,
			last_validated = excluded.last_validated,
			checksum = excluded.checksum,
			version = excluded.version,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.Balance, r.TotalCoinsEarned, r.TotalCoinsSpent,
		r.LastValidated, r.Checksum, r.Version,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger record: %w", err)
	}
	return nil
}

// DeleteLedger removes the ledger record.
func (s *Store) DeleteLedger(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM economy_ledger WHERE id = 1")
	return err
}

// =============================================================================
// DEVICE IDENTIFIER
// =============================================================================

// LoadDeviceID returns the persisted device identifier, or "" when none
// exists.
func (s *Store) LoadDeviceID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT device_id FROM device_identity WHERE id = 1",
	).Scan(&id)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load device id: %w", err)
	}
	return id, nil
}

// SaveDeviceID persists the device identifier.
func (s *Store) SaveDeviceID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO device_identity (id, device_id, created_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			device_id = excluded.device_id
	`

	_, err := s.db.ExecContext(ctx, query, id, time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteDeviceID removes the device identifier.
func (s *Store) DeleteDeviceID(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM device_identity WHERE id = 1")
	return err
}
