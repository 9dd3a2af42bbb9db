package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/runebound/internal/ir"
	"github.com/roach88/runebound/internal/testutil"
)

func TestEvaluateCondition_Chance(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		cond ir.Chance
		want bool
	}{
		{"draw below rate", 0.2, ir.Chance{SuccessRate: num(0.5)}, true},
		{"draw above rate", 0.8, ir.Chance{SuccessRate: num(0.5)}, false},
		{"draw equal to rate fails", 0.5, ir.Chance{SuccessRate: num(0.5)}, false},
		{"base offsets rate", 0.6, ir.Chance{SuccessRate: num(0.5), Base: num(0.2)}, true},
		{"negative base", 0.4, ir.Chance{SuccessRate: num(0.5), Base: num(-0.2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testutil.NewFixedRandom(tt.draw)
			_, _, ctx := combatPair(t, nil, r)
			assert.Equal(t, tt.want, EvaluateCondition(tt.cond, ctx))
			assert.False(t, r.Remaining(), "exactly one draw")
		})
	}
}

func TestEvaluateCondition_AndOr(t *testing.T) {
	_, _, ctx := combatPair(t, nil, nil)

	assert.True(t, EvaluateCondition(ir.And{}, ctx), "empty And is true")
	assert.False(t, EvaluateCondition(ir.Or{}, ctx), "empty Or is false")
	assert.True(t, EvaluateCondition(ir.And{Conditions: []ir.Condition{ir.True{}, ir.True{}}}, ctx))
	assert.False(t, EvaluateCondition(ir.And{Conditions: []ir.Condition{ir.True{}, ir.False{}}}, ctx))
	assert.True(t, EvaluateCondition(ir.Or{Conditions: []ir.Condition{ir.False{}, ir.True{}}}, ctx))
	assert.True(t, EvaluateCondition(ir.Not{Condition: ir.False{}}, ctx))
}

func TestEvaluateCondition_ShortCircuitSkipsDraws(t *testing.T) {
	r := testutil.NewFixedRandom(0.1)
	_, _, ctx := combatPair(t, nil, r)

	and := ir.And{Conditions: []ir.Condition{ir.False{}, ir.Chance{SuccessRate: num(1)}}}
	or := ir.Or{Conditions: []ir.Condition{ir.True{}, ir.Chance{SuccessRate: num(1)}}}
	assert.False(t, EvaluateCondition(and, ctx))
	assert.True(t, EvaluateCondition(or, ctx))
	assert.True(t, r.Remaining(), "short-circuited Chance must not draw")

	and = ir.And{Conditions: []ir.Condition{ir.True{}, ir.Chance{SuccessRate: num(0.5)}}}
	assert.True(t, EvaluateCondition(and, ctx))
	assert.False(t, r.Remaining())
}

func TestEvaluateCondition_Compare(t *testing.T) {
	_, _, ctx := combatPair(t, nil, nil)

	assert.True(t, EvaluateCondition(ir.Compare{V1: num(2), V2: num(1)}, ctx))
	assert.False(t, EvaluateCondition(ir.Compare{V1: num(1), V2: num(1)}, ctx))
	assert.True(t, EvaluateCondition(ir.Compare{V1: num(1), V2: num(1), Inclusive: true}, ctx))

	tests := []struct {
		cmp  ir.Comparator
		a, b float64
		want bool
	}{
		{ir.GT, 2, 1, true},
		{ir.GTEQ, 1, 1, true},
		{ir.LT, 1, 2, true},
		{ir.LTEQ, 3, 2, false},
		{ir.EQ, 2, 2, true},
		{ir.NEQ, 2, 2, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.cmp), func(t *testing.T) {
			cond := ir.CompareValues{V1: num(tt.a), V2: num(tt.b), Comparator: tt.cmp}
			assert.Equal(t, tt.want, EvaluateCondition(cond, ctx))
		})
	}
}

func TestEvaluateCondition_CombatLeaves(t *testing.T) {
	user, _, ctx := combatPair(t, nil, nil)

	assert.False(t, EvaluateCondition(ir.Critical{}, ctx))
	assert.False(t, EvaluateCondition(ir.TargetingSelf{}, ctx))
	assert.True(t, EvaluateCondition(ir.TargetingSelf{}, ctx.ForUser()))

	ctx.Attack.Critical = true
	ctx.Attack.Missed = true
	assert.True(t, EvaluateCondition(ir.Critical{}, ctx))
	assert.True(t, EvaluateCondition(ir.Missed{}, ctx))

	self := NewCombatContext(NewAction("focus", user, 1), user, user, nil)
	assert.True(t, EvaluateCondition(ir.TargetingSelf{}, self))
}

func TestEvaluateCondition_EntityLeaves(t *testing.T) {
	archive := testutil.NewArchive(
		&ir.EffectData{Name: "haste", IsRemovable: true},
		&ir.EffectData{Name: "stun", IsDebuff: true, IsFreeze: true, IsRemovable: true},
	)
	_, target, ctx := combatPair(t, archive, nil)
	target.Path = "warrior"
	target.Category = "beast"
	target.Category2 = "slime"

	assert.True(t, EvaluateCondition(ir.HasCategory{Category: "beast"}, ctx))
	assert.True(t, EvaluateCondition(ir.HasCategory{Category: "slime"}, ctx))
	assert.False(t, EvaluateCondition(ir.HasCategory{Category: "undead"}, ctx))
	assert.True(t, EvaluateCondition(ir.PathIs{Path: "warrior"}, ctx))
	assert.True(t, EvaluateCondition(ir.IsAlive{}, ctx))
	assert.False(t, EvaluateCondition(ir.HasBuff{}, ctx))
	assert.False(t, EvaluateCondition(ir.IsFrozen{}, ctx))

	ExecuteExtra(ir.Grouped{Extras: []ir.Extra{
		ir.AttachEffect{Name: "haste", Turns: num(2)},
		ir.AttachEffect{Name: "stun", Turns: num(1)},
		ir.AttachShield{Key: "ward", Value: num(5)},
	}}, ctx)

	assert.True(t, EvaluateCondition(ir.HasEffect{Effect: "haste"}, ctx))
	assert.True(t, EvaluateCondition(ir.HasBuff{}, ctx))
	assert.True(t, EvaluateCondition(ir.HasDebuff{}, ctx))
	assert.True(t, EvaluateCondition(ir.IsFrozen{}, ctx))
	assert.True(t, EvaluateCondition(ir.HasShield{Key: "ward"}, ctx))
	assert.False(t, EvaluateCondition(ir.HasShield{Key: "aegis"}, ctx))

	target.HP = 20
	target.SP = 90
	assert.True(t, EvaluateCondition(ir.HPLessThan{Rate: 0.5}, ctx))
	assert.False(t, EvaluateCondition(ir.SPLessThan{Rate: 0.5}, ctx))

	target.HP = 0
	assert.False(t, EvaluateCondition(ir.IsAlive{}, ctx))
}

func TestEvaluateCondition_ItemLeaves(t *testing.T) {
	user := newTestEntity(t, "hero", nil)
	item := &ir.ItemData{Key: "elixir", Name: "Elixir", Tier: 1, Extra: ir.Empty{}}
	ctx := &ItemContext{Item: item, Quantity: 3, User: user, Target: user}

	assert.True(t, EvaluateCondition(ir.ItemNamed{Name: "elixir"}, ctx))
	assert.True(t, EvaluateCondition(ir.ItemNamed{Name: "Elixir"}, ctx))
	assert.False(t, EvaluateCondition(ir.ItemNamed{Name: "potion"}, ctx))
	assert.True(t, EvaluateCondition(ir.ItemQuantityAtLeast{Quantity: 3}, ctx))
	assert.False(t, EvaluateCondition(ir.ItemQuantityAtLeast{Quantity: 4}, ctx))
}
