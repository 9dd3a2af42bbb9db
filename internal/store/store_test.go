package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/runebound/internal/engine"
)

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	pragmas := []struct{ name, want string }{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(p.name, p.want))
		})
	}
}

func TestOpen_CreatesTables(t *testing.T) {
	s := createTestStore(t)

	for _, table := range []string{"switches", "variables", "timestamps", "currencies", "inventory", "battle_results", "battle_steps", "goose_db_version"} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.SetVariable(ctx, "event:gold_found", 7))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	v, err := s2.Variable(ctx, "event:gold_found")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v, "state survives reopen and migrations are not re-run destructively")
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "save.db"))
	require.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestSQLiteStore_GameState(t *testing.T) {
	testGameStateRepo(t, createTestStore(t))
}

func TestMemoryState_GameState(t *testing.T) {
	testGameStateRepo(t, NewMemoryState())
}

func TestSQLiteStore_BattleLog(t *testing.T) {
	testBattleLog(t, createTestStore(t))
}

func TestMemoryState_BattleLog(t *testing.T) {
	testBattleLog(t, NewMemoryState())
}

// postgresDSN returns the DSN of a scratch database, or skips.
func postgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("RUNEBOUND_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RUNEBOUND_TEST_POSTGRES_DSN not set")
	}
	return dsn
}

func TestPGStore(t *testing.T) {
	dsn := postgresDSN(t)
	s, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	t.Run("GameState", func(t *testing.T) { testGameStateRepo(t, s) })
	t.Run("BattleLog", func(t *testing.T) { testBattleLog(t, s) })
}

// testGameStateRepo exercises the behavior every GameStateRepo shares.
// Keys are unique per run so shared databases can be reused.
func testGameStateRepo(t *testing.T, repo engine.GameStateRepo) {
	t.Helper()
	ctx := context.Background()
	ns := "test:" + uuid.NewString() + ":"

	t.Run("misses read as zero", func(t *testing.T) {
		on, err := repo.Switch(ctx, ns+"missing")
		require.NoError(t, err)
		assert.False(t, on)

		for _, read := range []func(context.Context, string) (int64, error){
			repo.Variable, repo.Timestamp, repo.Currency, repo.Inventory,
		} {
			v, err := read(ctx, ns+"missing")
			require.NoError(t, err)
			assert.Zero(t, v)
		}
	})

	t.Run("switch", func(t *testing.T) {
		require.NoError(t, repo.SetSwitch(ctx, ns+"door", true))
		on, err := repo.Switch(ctx, ns+"door")
		require.NoError(t, err)
		assert.True(t, on)

		require.NoError(t, repo.SetSwitch(ctx, ns+"door", false))
		on, err = repo.Switch(ctx, ns+"door")
		require.NoError(t, err)
		assert.False(t, on)
	})

	t.Run("integers overwrite", func(t *testing.T) {
		tests := []struct {
			name  string
			write func(context.Context, string, int64) error
			read  func(context.Context, string) (int64, error)
		}{
			{"variable", repo.SetVariable, repo.Variable},
			{"timestamp", repo.SetTimestamp, repo.Timestamp},
			{"currency", repo.SetCurrency, repo.Currency},
			{"inventory", repo.SetInventory, repo.Inventory},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				key := ns + tt.name
				require.NoError(t, tt.write(ctx, key, 5))
				require.NoError(t, tt.write(ctx, key, 1<<40))
				v, err := tt.read(ctx, key)
				require.NoError(t, err)
				assert.Equal(t, int64(1<<40), v)
			})
		}
	})

	t.Run("tables are separate", func(t *testing.T) {
		require.NoError(t, repo.SetVariable(ctx, ns+"shared", 3))
		v, err := repo.Currency(ctx, ns+"shared")
		require.NoError(t, err)
		assert.Zero(t, v)
	})

	t.Run("negative values", func(t *testing.T) {
		require.NoError(t, repo.SetVariable(ctx, ns+"debt", -12))
		v, err := repo.Variable(ctx, ns+"debt")
		require.NoError(t, err)
		assert.Equal(t, int64(-12), v)
	})
}

// testBattleLog exercises the behavior every BattleLog shares.
func testBattleLog(t *testing.T, log BattleLog) {
	t.Helper()
	ctx := context.Background()
	battle := uuid.NewString()
	other := uuid.NewString()
	quiet := uuid.NewString()

	step1 := []engine.ActionResult{
		{Kind: engine.ResultHPChange, Action: "bite", User: "wolf", Target: "hero", Delta: -10},
		{Kind: engine.ResultAttachEffect, Action: "bite", User: "wolf", Target: "hero", Name: "poison", Tier: 1, Turns: 2},
	}
	step2 := []engine.ActionResult{
		{Kind: engine.ResultMiss, Action: "slash", User: "hero", Target: "wolf"},
	}

	// Out of order on purpose: reads sort by seq.
	require.NoError(t, log.WriteResults(ctx, battle, 2, step2))
	require.NoError(t, log.WriteResults(ctx, battle, 1, step1))
	require.NoError(t, log.WriteResults(ctx, other, 1, step2))
	require.NoError(t, log.WriteResults(ctx, other, 2, nil))
	require.NoError(t, log.WriteResults(ctx, quiet, 1, nil))

	t.Run("ordered by seq then ordinal", func(t *testing.T) {
		rows, err := log.ReadResults(ctx, battle)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, LoggedResult{BattleID: battle, Seq: 1, Ordinal: 0, Result: step1[0]}, rows[0])
		assert.Equal(t, LoggedResult{BattleID: battle, Seq: 1, Ordinal: 1, Result: step1[1]}, rows[1])
		assert.Equal(t, LoggedResult{BattleID: battle, Seq: 2, Ordinal: 0, Result: step2[0]}, rows[2])
	})

	t.Run("rewrite is ignored", func(t *testing.T) {
		require.NoError(t, log.WriteResults(ctx, battle, 1, step2))
		require.NoError(t, log.WriteResults(ctx, battle, 1, nil))
		rows, err := log.ReadResults(ctx, battle)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, step1[0], rows[0].Result)
	})

	t.Run("unknown battle is empty", func(t *testing.T) {
		rows, err := log.ReadResults(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("list battles", func(t *testing.T) {
		battles, err := log.ListBattles(ctx)
		require.NoError(t, err)

		found := map[string]BattleSummary{}
		for _, b := range battles {
			found[b.BattleID] = b
		}
		assert.Equal(t, BattleSummary{BattleID: battle, Steps: 2, Results: 3}, found[battle])
		assert.Equal(t, BattleSummary{BattleID: other, Steps: 2, Results: 1}, found[other], "empty steps count")
		assert.Equal(t, BattleSummary{BattleID: quiet, Steps: 1, Results: 0}, found[quiet], "battle without results is listed")

		for i := 1; i < len(battles); i++ {
			assert.Less(t, battles[i-1].BattleID, battles[i].BattleID)
		}
	})
}
