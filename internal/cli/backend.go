package cli

import (
	"context"
	"fmt"

	"github.com/roach88/runebound/internal/config"
	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/store"
)

// Backend is an opened state store serving game state and the battle log.
type Backend interface {
	engine.GameStateRepo
	store.BattleLog
	Close() error
}

type pgBackend struct{ *store.PGStore }

func (b pgBackend) Close() error {
	b.PGStore.Close()
	return nil
}

type memoryBackend struct{ *store.MemoryState }

func (memoryBackend) Close() error { return nil }

// openBackend opens the store named by the state section of cfg.
// A non-empty dbPath forces the SQLite driver at that path.
func openBackend(ctx context.Context, cfg *config.Config, dbPath string) (Backend, error) {
	st := cfg.State
	if dbPath != "" {
		st.Driver = config.DriverSQLite
		st.Path = dbPath
	}

	switch st.Driver {
	case config.DriverSQLite, "":
		s, err := store.Open(st.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := store.OpenPostgres(ctx, st.DSN)
		if err != nil {
			return nil, err
		}
		return pgBackend{s}, nil
	case config.DriverMemory:
		return memoryBackend{store.NewMemoryState()}, nil
	default:
		return nil, fmt.Errorf("unknown state driver %q", st.Driver)
	}
}
