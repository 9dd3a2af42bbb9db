package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/runebound/internal/ir"
)

// Effect is a buff or debuff attached to an entity. Its User is the entity
// that attached it.
//
// Lifecycle: an effect is Attached by AttachEffect, Ticking after its first
// ApplyOn, and Removed when TurnsLeft reaches 0 or by explicit removal.
type Effect struct {
	Action

	Abbr        string
	IsDebuff    bool
	IsStackable bool
	IsRemovable bool
	IsFreeze    bool

	// Modifiers are stat deltas fixed at attach time.
	Modifiers map[ir.Stat]float64
	Extra     ir.Extra

	TurnsLeft int

	started bool
}

// NewEffect instantiates an effect template owned by owner. Modifiers are
// left empty; AttachEffect evaluates them against the attach context.
func NewEffect(data *ir.EffectData, owner *Entity, tier, turns int) *Effect {
	return &Effect{
		Action: Action{
			Name:     data.Name,
			Category: data.Category,
			User:     owner,
			Tier:     max(tier, 1),
		},
		Abbr:        data.Abbr,
		IsDebuff:    data.IsDebuff,
		IsStackable: data.IsStackable,
		IsRemovable: data.IsRemovable,
		IsFreeze:    data.IsFreeze,
		Extra:       data.Extra,
		TurnsLeft:   turns,
	}
}

// CompareEffects orders two effects of the same name by tier, then by turns
// left. Effects with different names have no order.
func CompareEffects(a, b *Effect) (int, error) {
	if a.Name != b.Name {
		return 0, NewNameMismatchError(a.Name, b.Name)
	}
	if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
		return c, nil
	}
	return cmp.Compare(a.TurnsLeft, b.TurnsLeft), nil
}

// MustCompareEffects is CompareEffects that panics on a name mismatch.
// Ordering unrelated effects is a content or engine bug.
func MustCompareEffects(a, b *Effect) int {
	c, err := CompareEffects(a, b)
	if err != nil {
		panic(err)
	}
	return c
}

// Less reports whether e orders before other. Panics on a name mismatch.
func (e *Effect) Less(other *Effect) bool {
	return MustCompareEffects(e, other) < 0
}

// SortEffects sorts same-named effects ascending. Panics on mixed names.
func SortEffects(effs []*Effect) {
	slices.SortStableFunc(effs, MustCompareEffects)
}

// Started reports whether the effect has left the Attached state.
func (e *Effect) Started() bool {
	return e.started
}

// ApplyOn ticks the effect on target.
//
// The first tick of a self-attached effect does nothing. Every other tick
// executes the extra, counts a use and decrements TurnsLeft; at zero the
// effect detaches itself and a RemoveEffect result is recorded.
func (e *Effect) ApplyOn(target *Entity, random Random, opts ...ApplyOption) []ActionResult {
	first := !e.started
	e.started = true
	if first && e.User == target {
		return nil
	}

	cfg := newApplyConfig(e.User, target, opts)
	c := NewCombatContext(e, e.User, target, random)
	c.Clock = cfg.clock
	c.Archive = cfg.archive

	attached := slices.Contains(target.Effects, e)
	if e.Extra != nil {
		ExecuteExtra(e.Extra, c)
	}
	e.TimesUsed++
	e.TurnsLeft--

	// An extra that detached the effect has already recorded the removal.
	detachedByExtra := attached && !slices.Contains(target.Effects, e)
	if e.TurnsLeft <= 0 && !detachedByExtra {
		target.removeEffect(e)
		c.frame().record(ActionResult{
			Kind:   ResultRemoveEffect,
			Target: target.ID,
			Name:   e.Name,
			Tier:   e.Tier,
		})
	}
	return c.Results()
}

// ApplyOption configures ApplyOn and InvokeOn.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	clock   WallClock
	archive Archive
}

// WithWallClock sets the clock read by Time leaves.
func WithWallClock(c WallClock) ApplyOption {
	return func(cfg *applyConfig) {
		cfg.clock = c
	}
}

// WithArchive overrides the archive consulted by AttachEffect.
func WithArchive(a Archive) ApplyOption {
	return func(cfg *applyConfig) {
		cfg.archive = a
	}
}

func newApplyConfig(user, target *Entity, opts []ApplyOption) applyConfig {
	var cfg applyConfig
	switch {
	case user != nil && user.archive != nil:
		cfg.archive = user.archive
	case target != nil:
		cfg.archive = target.archive
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
