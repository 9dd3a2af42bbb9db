package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/runebound/internal/engine"
)

var _ engine.GameStateRepo = (*MemoryState)(nil)

// MemoryState is an in-memory GameStateRepo and BattleLog for tests and dry
// runs. Nothing survives the process.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemoryState struct {
	mu      sync.RWMutex
	tables  map[string]map[string]int64
	steps   map[string]map[int64]int // battle -> seq -> result count
	results []LoggedResult
}

// NewMemoryState returns an empty state.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		tables: make(map[string]map[string]int64),
		steps:  make(map[string]map[int64]int),
	}
}

func (m *MemoryState) get(table, key string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables[table][key]
}

func (m *MemoryState) set(table, key string, v int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = make(map[string]int64)
		m.tables[table] = t
	}
	t[key] = v
}

func (m *MemoryState) Switch(_ context.Context, key string) (bool, error) {
	return m.get(tableSwitches, key) != 0, nil
}

func (m *MemoryState) SetSwitch(_ context.Context, key string, on bool) error {
	m.set(tableSwitches, key, boolToInt(on))
	return nil
}

func (m *MemoryState) Variable(_ context.Context, key string) (int64, error) {
	return m.get(tableVariables, key), nil
}

func (m *MemoryState) SetVariable(_ context.Context, key string, v int64) error {
	m.set(tableVariables, key, v)
	return nil
}

func (m *MemoryState) Timestamp(_ context.Context, key string) (int64, error) {
	return m.get(tableTimestamps, key), nil
}

func (m *MemoryState) SetTimestamp(_ context.Context, key string, unix int64) error {
	m.set(tableTimestamps, key, unix)
	return nil
}

func (m *MemoryState) Currency(_ context.Context, kind string) (int64, error) {
	return m.get(tableCurrencies, kind), nil
}

func (m *MemoryState) SetCurrency(_ context.Context, kind string, v int64) error {
	m.set(tableCurrencies, kind, v)
	return nil
}

func (m *MemoryState) Inventory(_ context.Context, item string) (int64, error) {
	return m.get(tableInventory, item), nil
}

func (m *MemoryState) SetInventory(_ context.Context, item string, v int64) error {
	m.set(tableInventory, item, v)
	return nil
}

// Snapshot copies every table, keyed by table name. Used by the CLI to dump
// dry-run state.
func (m *MemoryState) Snapshot() map[string]map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]int64, len(m.tables))
	for name, t := range m.tables {
		out[name] = maps.Clone(t)
	}
	return out
}

// WriteResults appends one resolution step. Rewriting an existing
// (battle, seq) is ignored, as in the SQL stores.
func (m *MemoryState) WriteResults(_ context.Context, battleID string, seq int64, results []engine.ActionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.steps[battleID][seq]; ok {
		return nil
	}
	if m.steps[battleID] == nil {
		m.steps[battleID] = make(map[int64]int)
	}
	m.steps[battleID][seq] = len(results)
	for i, r := range results {
		m.results = append(m.results, LoggedResult{BattleID: battleID, Seq: seq, Ordinal: i, Result: r})
	}
	return nil
}

// ReadResults returns the results of a battle ordered by seq, ordinal.
func (m *MemoryState) ReadResults(_ context.Context, battleID string) ([]LoggedResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []LoggedResult{}
	for _, r := range m.results {
		if r.BattleID == battleID {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b LoggedResult) int {
		return cmp.Or(cmp.Compare(a.Seq, b.Seq), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	return out, nil
}

// ListBattles summarizes every logged battle, ordered by battle ID.
func (m *MemoryState) ListBattles(_ context.Context) ([]BattleSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []BattleSummary{}
	for _, id := range slices.Sorted(maps.Keys(m.steps)) {
		b := BattleSummary{BattleID: id, Steps: int64(len(m.steps[id]))}
		for _, n := range m.steps[id] {
			b.Results += int64(n)
		}
		out = append(out, b)
	}
	return out, nil
}
