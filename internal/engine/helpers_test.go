package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/runebound/internal/ir"
	"github.com/roach88/runebound/internal/testutil"
)

func num(v float64) ir.Value { return ir.Constant{Value: v} }

func newTestEntity(t *testing.T, id string, archive Archive) *Entity {
	t.Helper()
	return NewEntity(id, testutil.EntityData(id, nil), 1, archive)
}

// combatPair builds a user and a target sharing an archive, plus a context
// with the user acting through a plain action.
func combatPair(t *testing.T, archive Archive, random Random) (*Entity, *Entity, *CombatContext) {
	t.Helper()
	user := newTestEntity(t, "hero", archive)
	target := newTestEntity(t, "slime", archive)
	ctx := NewCombatContext(NewAction("strike", user, 1), user, target, random)
	ctx.Archive = archive
	return user, target, ctx
}

// memState is an in-memory GameStateRepo for engine tests.
type memState struct {
	switches   map[string]bool
	variables  map[string]int64
	timestamps map[string]int64
	currency   map[string]int64
	inventory  map[string]int64
	reads      int
	failOn     string
}

var errBoom = errors.New("boom")

func newMemState() *memState {
	return &memState{
		switches:   map[string]bool{},
		variables:  map[string]int64{},
		timestamps: map[string]int64{},
		currency:   map[string]int64{},
		inventory:  map[string]int64{},
	}
}

func (m *memState) check(key string) error {
	m.reads++
	if m.failOn != "" && key == m.failOn {
		return errBoom
	}
	return nil
}

func (m *memState) Switch(_ context.Context, key string) (bool, error) {
	return m.switches[key], m.check(key)
}

func (m *memState) SetSwitch(_ context.Context, key string, on bool) error {
	if err := m.check(key); err != nil {
		return err
	}
	m.switches[key] = on
	return nil
}

func (m *memState) Variable(_ context.Context, key string) (int64, error) {
	return m.variables[key], m.check(key)
}

func (m *memState) SetVariable(_ context.Context, key string, v int64) error {
	if err := m.check(key); err != nil {
		return err
	}
	m.variables[key] = v
	return nil
}

func (m *memState) Timestamp(_ context.Context, key string) (int64, error) {
	return m.timestamps[key], m.check(key)
}

func (m *memState) SetTimestamp(_ context.Context, key string, unix int64) error {
	if err := m.check(key); err != nil {
		return err
	}
	m.timestamps[key] = unix
	return nil
}

func (m *memState) Currency(_ context.Context, kind string) (int64, error) {
	return m.currency[kind], m.check(kind)
}

func (m *memState) SetCurrency(_ context.Context, kind string, v int64) error {
	if err := m.check(kind); err != nil {
		return err
	}
	m.currency[kind] = v
	return nil
}

func (m *memState) Inventory(_ context.Context, item string) (int64, error) {
	return m.inventory[item], m.check(item)
}

func (m *memState) SetInventory(_ context.Context, item string, v int64) error {
	if err := m.check(item); err != nil {
		return err
	}
	m.inventory[item] = v
	return nil
}

// asyncArchive adapts a testutil.Archive to AsyncArchive.
type asyncArchive struct{ *testutil.Archive }

func (a asyncArchive) FetchEffect(_ context.Context, name string) (*ir.EffectData, bool, error) {
	d, ok := a.Effect(name)
	return d, ok, nil
}

func (a asyncArchive) FetchItem(_ context.Context, key string) (*ir.ItemData, bool, error) {
	d, ok := a.Item(key)
	return d, ok, nil
}

func (a asyncArchive) FetchQuest(_ context.Context, key string) (*ir.QuestData, bool, error) {
	d, ok := a.Quest(key)
	return d, ok, nil
}
