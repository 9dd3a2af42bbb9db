package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/runebound/internal/engine"
)

var (
	_ engine.GameStateRepo = (*Store)(nil)
	_ engine.ResultWriter  = (*Store)(nil)
)

// Store provides durable game state and battle logs on SQLite.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := runMigrations(context.Background(), db, "sqlite3", "sqlite"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Table names are constants, never caller input.
const (
	tableSwitches   = "switches"
	tableVariables  = "variables"
	tableTimestamps = "timestamps"
	tableCurrencies = "currencies"
	tableInventory  = "inventory"
)

// getValue reads one integer cell. A missing row reads as 0.
func (s *Store) getValue(ctx context.Context, table, key string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM "+table+" WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s %q: %w", table, key, err)
	}
	return v, nil
}

// setValue upserts one integer cell.
func (s *Store) setValue(ctx context.Context, table, key string, v int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, v)
	if err != nil {
		return fmt.Errorf("write %s %q: %w", table, key, err)
	}
	return nil
}

func (s *Store) Switch(ctx context.Context, key string) (bool, error) {
	v, err := s.getValue(ctx, tableSwitches, key)
	return v != 0, err
}

func (s *Store) SetSwitch(ctx context.Context, key string, on bool) error {
	return s.setValue(ctx, tableSwitches, key, boolToInt(on))
}

func (s *Store) Variable(ctx context.Context, key string) (int64, error) {
	return s.getValue(ctx, tableVariables, key)
}

func (s *Store) SetVariable(ctx context.Context, key string, v int64) error {
	return s.setValue(ctx, tableVariables, key, v)
}

func (s *Store) Timestamp(ctx context.Context, key string) (int64, error) {
	return s.getValue(ctx, tableTimestamps, key)
}

func (s *Store) SetTimestamp(ctx context.Context, key string, unix int64) error {
	return s.setValue(ctx, tableTimestamps, key, unix)
}

func (s *Store) Currency(ctx context.Context, kind string) (int64, error) {
	return s.getValue(ctx, tableCurrencies, kind)
}

func (s *Store) SetCurrency(ctx context.Context, kind string, v int64) error {
	return s.setValue(ctx, tableCurrencies, kind, v)
}

func (s *Store) Inventory(ctx context.Context, item string) (int64, error) {
	return s.getValue(ctx, tableInventory, item)
}

func (s *Store) SetInventory(ctx context.Context, item string, v int64) error {
	return s.setValue(ctx, tableInventory, item, v)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
