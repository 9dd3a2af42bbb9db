package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/roach88/runebound/internal/engine"
)

var _ engine.GameStateRepo = (*PGStore)(nil)

// PGStore is the PostgreSQL equivalent of Store, for shared deployments.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL, applies migrations and returns a
// PGStore.
func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	if err := migratePostgres(ctx, dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// migratePostgres runs goose over a short-lived database/sql handle; the
// pool itself is not a *sql.DB.
func migratePostgres(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return runMigrations(ctx, sqlDB, "postgres", "postgres")
}

// Close closes the connection pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// Pool returns the underlying pgx pool.
func (s *PGStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PGStore) getValue(ctx context.Context, table, key string) (int64, error) {
	var v int64
	err := s.pool.QueryRow(ctx, "SELECT value FROM "+table+" WHERE key = $1", key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying %s %q: %w", table, key, err)
	}
	return v, nil
}

func (s *PGStore) setValue(ctx context.Context, table, key string, v int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+table+` (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, v)
	if err != nil {
		return fmt.Errorf("writing %s %q: %w", table, key, err)
	}
	return nil
}

func (s *PGStore) Switch(ctx context.Context, key string) (bool, error) {
	v, err := s.getValue(ctx, tableSwitches, key)
	return v != 0, err
}

func (s *PGStore) SetSwitch(ctx context.Context, key string, on bool) error {
	return s.setValue(ctx, tableSwitches, key, boolToInt(on))
}

func (s *PGStore) Variable(ctx context.Context, key string) (int64, error) {
	return s.getValue(ctx, tableVariables, key)
}

func (s *PGStore) SetVariable(ctx context.Context, key string, v int64) error {
	return s.setValue(ctx, tableVariables, key, v)
}

func (s *PGStore) Timestamp(ctx context.Context, key string) (int64, error) {
	return s.getValue(ctx, tableTimestamps, key)
}

func (s *PGStore) SetTimestamp(ctx context.Context, key string, unix int64) error {
	return s.setValue(ctx, tableTimestamps, key, unix)
}

func (s *PGStore) Currency(ctx context.Context, kind string) (int64, error) {
	return s.getValue(ctx, tableCurrencies, kind)
}

func (s *PGStore) SetCurrency(ctx context.Context, kind string, v int64) error {
	return s.setValue(ctx, tableCurrencies, kind, v)
}

func (s *PGStore) Inventory(ctx context.Context, item string) (int64, error) {
	return s.getValue(ctx, tableInventory, item)
}

func (s *PGStore) SetInventory(ctx context.Context, item string, v int64) error {
	return s.setValue(ctx, tableInventory, item, v)
}

// WriteResults appends one resolution step in a transaction. Empty steps
// are recorded too; a rewritten (battle, seq) is ignored.
func (s *PGStore) WriteResults(ctx context.Context, battleID string, seq int64, results []engine.ActionResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "battle", battleID, "seq", seq, "error", err)
		}
	}()

	tag, err := tx.Exec(ctx, `
		INSERT INTO battle_steps (battle_id, seq, results)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, battleID, seq, len(results))
	if err != nil {
		return fmt.Errorf("inserting step %d of battle %s: %w", seq, battleID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	for i, r := range results {
		payload, err := marshalResult(r)
		if err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO battle_results
			(battle_id, seq, ordinal, kind, target, payload)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, battleID, seq, i, string(r.Kind), r.Target, payload)
		if err != nil {
			return fmt.Errorf("inserting result %d of battle %s step %d: %w", i, battleID, seq, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReadResults returns every result of a battle ordered by seq, ordinal.
func (s *PGStore) ReadResults(ctx context.Context, battleID string) ([]LoggedResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, ordinal, payload
		FROM battle_results
		WHERE battle_id = $1
		ORDER BY seq ASC, ordinal ASC
	`, battleID)
	if err != nil {
		return nil, fmt.Errorf("querying results for battle %s: %w", battleID, err)
	}
	defer rows.Close()

	out := []LoggedResult{}
	for rows.Next() {
		row := LoggedResult{BattleID: battleID}
		var payload string
		if err := rows.Scan(&row.Seq, &row.Ordinal, &payload); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		if row.Result, err = unmarshalResult(payload); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return out, nil
}

// ListBattles summarizes every logged battle, ordered by battle ID.
func (s *PGStore) ListBattles(ctx context.Context) ([]BattleSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT battle_id, COUNT(*), SUM(results)::BIGINT
		FROM battle_steps
		GROUP BY battle_id
		ORDER BY battle_id COLLATE "C"
	`)
	if err != nil {
		return nil, fmt.Errorf("querying battles: %w", err)
	}
	defer rows.Close()

	out := []BattleSummary{}
	for rows.Next() {
		var b BattleSummary
		if err := rows.Scan(&b.BattleID, &b.Steps, &b.Results); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle rows: %w", err)
	}
	return out, nil
}
