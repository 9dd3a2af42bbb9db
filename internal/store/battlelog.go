package store

import (
	"context"
	"fmt"

	"github.com/roach88/runebound/internal/engine"
)

// LoggedResult is one battle log row.
type LoggedResult struct {
	BattleID string              `json:"battle_id"`
	Seq      int64               `json:"seq"`
	Ordinal  int                 `json:"ordinal"`
	Result   engine.ActionResult `json:"result"`
}

// BattleSummary describes one logged battle.
type BattleSummary struct {
	BattleID string `json:"battle_id"`
	Steps    int64  `json:"steps"`   // Resolved steps, including empty ones
	Results  int64  `json:"results"` // Result rows
}

// BattleLog is the append-only record of resolved battle steps.
type BattleLog interface {
	engine.ResultWriter
	ReadResults(ctx context.Context, battleID string) ([]LoggedResult, error)
	ListBattles(ctx context.Context) ([]BattleSummary, error)
}

var (
	_ BattleLog = (*Store)(nil)
	_ BattleLog = (*PGStore)(nil)
	_ BattleLog = (*MemoryState)(nil)
)

// WriteResults appends one resolution step and its results in one
// transaction. A step with no results still gets a battle_steps row.
// Rewriting the same (battle, seq) is silently ignored.
func (s *Store) WriteResults(ctx context.Context, battleID string, seq int64, results []engine.ActionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write results: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO battle_steps (battle_id, seq, results)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, battleID, seq, len(results))
	if err != nil {
		return fmt.Errorf("write results: step: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write results: step: %w", err)
	}
	if n == 0 {
		return nil
	}

	for i, r := range results {
		payload, err := marshalResult(r)
		if err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO battle_results
			(battle_id, seq, ordinal, kind, target, payload)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, battleID, seq, i, string(r.Kind), r.Target, payload)
		if err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write results: commit: %w", err)
	}
	return nil
}

// ReadResults returns every result of a battle.
// Ordered by seq ASC, ordinal ASC for deterministic replay.
func (s *Store) ReadResults(ctx context.Context, battleID string) ([]LoggedResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, ordinal, payload
		FROM battle_results
		WHERE battle_id = ?
		ORDER BY seq ASC, ordinal ASC
	`, battleID)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	defer rows.Close()

	out := []LoggedResult{}
	for rows.Next() {
		row := LoggedResult{BattleID: battleID}
		var payload string
		if err := rows.Scan(&row.Seq, &row.Ordinal, &payload); err != nil {
			return nil, fmt.Errorf("read results: scan: %w", err)
		}
		if row.Result, err = unmarshalResult(payload); err != nil {
			return nil, fmt.Errorf("read results: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return out, nil
}

// ListBattles summarizes every logged battle, ordered by battle ID. UUIDv7
// IDs sort by creation time.
func (s *Store) ListBattles(ctx context.Context) ([]BattleSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT battle_id, COUNT(*), SUM(results)
		FROM battle_steps
		GROUP BY battle_id
		ORDER BY battle_id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	out := []BattleSummary{}
	for rows.Next() {
		var b BattleSummary
		if err := rows.Scan(&b.BattleID, &b.Steps, &b.Results); err != nil {
			return nil, fmt.Errorf("list battles: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	return out, nil
}
