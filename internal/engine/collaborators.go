package engine

import (
	"context"

	"github.com/roach88/runebound/internal/ir"
)

// Archive serves preloaded content to Combat and Item evaluation. Lookups
// never block. A miss returns nil, false.
type Archive interface {
	Effect(name string) (*ir.EffectData, bool)
	Skill(name string) (*ir.SkillData, bool)
	Plugin(key string) (*ir.PluginData, bool)
	Item(key string) (*ir.ItemData, bool)
	Quest(key string) (*ir.QuestData, bool)
}

// AsyncArchive serves content to Event evaluation, which may suspend.
type AsyncArchive interface {
	FetchEffect(ctx context.Context, name string) (*ir.EffectData, bool, error)
	FetchItem(ctx context.Context, key string) (*ir.ItemData, bool, error)
	FetchQuest(ctx context.Context, key string) (*ir.QuestData, bool, error)
}

// GameStateRepo is the persisted game state read and written by Event
// evaluation. Keys arrive already namespaced by the caller. Misses read as
// zero values without error.
type GameStateRepo interface {
	Switch(ctx context.Context, key string) (bool, error)
	SetSwitch(ctx context.Context, key string, on bool) error

	Variable(ctx context.Context, key string) (int64, error)
	SetVariable(ctx context.Context, key string, v int64) error

	// Timestamp returns unix seconds, or 0 when never stamped.
	Timestamp(ctx context.Context, key string) (int64, error)
	SetTimestamp(ctx context.Context, key string, unix int64) error

	Currency(ctx context.Context, kind string) (int64, error)
	SetCurrency(ctx context.Context, kind string, v int64) error

	Inventory(ctx context.Context, item string) (int64, error)
	SetInventory(ctx context.Context, item string, v int64) error
}
