package archive

import (
	"context"

	"github.com/roach88/runebound/internal/compiler"
	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/ir"
)

var (
	_ engine.Archive      = (*Archive)(nil)
	_ engine.AsyncArchive = (*Archive)(nil)
)

// Archive serves compiled content by name. It is read-only after loading and
// safe for concurrent use.
type Archive struct {
	bundle *compiler.Bundle
	files  int
}

// New wraps an already compiled bundle.
func New(b *compiler.Bundle) *Archive {
	if b == nil {
		b = compiler.NewBundle()
	}
	return &Archive{bundle: b}
}

// Bundle returns the underlying records.
func (a *Archive) Bundle() *compiler.Bundle { return a.bundle }

// FileCount is the number of source files the archive was loaded from.
func (a *Archive) FileCount() int { return a.files }

func (a *Archive) Effect(name string) (*ir.EffectData, bool) {
	e, ok := a.bundle.Effects[name]
	return e, ok
}

func (a *Archive) Skill(name string) (*ir.SkillData, bool) {
	s, ok := a.bundle.Skills[name]
	return s, ok
}

func (a *Archive) Plugin(key string) (*ir.PluginData, bool) {
	p, ok := a.bundle.Plugins[key]
	return p, ok
}

func (a *Archive) Item(key string) (*ir.ItemData, bool) {
	it, ok := a.bundle.Items[key]
	return it, ok
}

func (a *Archive) Quest(key string) (*ir.QuestData, bool) {
	q, ok := a.bundle.Quests[key]
	return q, ok
}

// Entity returns an entity template.
func (a *Archive) Entity(key string) (*ir.EntityData, bool) {
	e, ok := a.bundle.Entities[key]
	return e, ok
}

// FetchEffect is the Event-side lookup. It fails only when ctx is done.
func (a *Archive) FetchEffect(ctx context.Context, name string) (*ir.EffectData, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	e, ok := a.Effect(name)
	return e, ok, nil
}

func (a *Archive) FetchItem(ctx context.Context, key string) (*ir.ItemData, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	it, ok := a.Item(key)
	return it, ok, nil
}

func (a *Archive) FetchQuest(ctx context.Context, key string) (*ir.QuestData, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	q, ok := a.Quest(key)
	return q, ok, nil
}
