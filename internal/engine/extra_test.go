package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/runebound/internal/ir"
	"github.com/roach88/runebound/internal/testutil"
)

func TestExecuteExtra_HPAndSPAreClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		extra  ir.Extra
		wantHP int
		wantSP int
		delta  int
	}{
		{"heal past max", 90, ir.HPChange{Value: num(50)}, 100, 100, 10},
		{"damage past zero", 30, ir.HPChange{Value: num(-80)}, 0, 100, -30},
		{"fractional damage truncates", 50, ir.HPChange{Value: num(-10.9)}, 40, 100, -10},
		{"sp drain past zero", 100, ir.SPChange{Value: num(-150)}, 100, 0, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, target, ctx := combatPair(t, nil, nil)
			target.HP = tt.start

			ExecuteExtra(tt.extra, ctx)

			assert.Equal(t, tt.wantHP, target.HP)
			assert.Equal(t, tt.wantSP, target.SP)
			require.Len(t, ctx.Results(), 1)
			assert.Equal(t, tt.delta, ctx.Results()[0].Delta)
			assert.GreaterOrEqual(t, target.HP, 0)
			assert.LessOrEqual(t, target.HP, target.MaxHP())
		})
	}
}

func TestExecuteExtra_APIsNotClamped(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)
	require.Equal(t, 10, target.AP)

	ExecuteExtra(ir.APChange{Value: num(25)}, ctx)
	assert.Equal(t, 35, target.AP, "AP may exceed MaxAP")

	ExecuteExtra(ir.APChange{Value: num(-50)}, ctx)
	assert.Equal(t, -15, target.AP, "AP may go negative")

	results := ctx.Results()
	require.Len(t, results, 2)
	assert.Equal(t, ResultAPChange, results[0].Kind)
	assert.Equal(t, 25, results[0].Delta)
	assert.Equal(t, -50, results[1].Delta)
}

func TestExecuteExtra_ZeroChangeIsRecorded(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)

	ExecuteExtra(ir.HPChange{Value: num(10)}, ctx)

	require.Len(t, ctx.Results(), 1)
	assert.Equal(t, ActionResult{Kind: ResultHPChange, Action: "strike", User: "hero", Target: target.ID}, ctx.Results()[0])
}

func TestExecuteExtra_GroupedRunsInOrder(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)

	// The second change reads the HP left by the first.
	ExecuteExtra(ir.Grouped{Extras: []ir.Extra{
		ir.HPChange{Value: num(-40)},
		ir.SaveValue{Key: "hp", Value: ir.StatOf{Stat: ir.StatHP}},
		ir.HPChange{Value: ir.Negate{Value: ir.TimesByConstant{Value: ir.LoadValue{Key: "hp"}, Constant: 0.5}}},
	}}, ctx)

	assert.Equal(t, 30, target.HP)
	results := ctx.Results()
	require.Len(t, results, 2)
	assert.Equal(t, -40, results[0].Delta)
	assert.Equal(t, -30, results[1].Delta)
}

func TestExecuteExtra_ConditionedRunsOneBranch(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)

	ExecuteExtra(ir.ConditionedExtra{
		Condition: ir.IsAlive{},
		IfTrue:    ir.HPChange{Value: num(-5)},
		IfFalse:   ir.HPChange{Value: num(-50)},
	}, ctx)
	assert.Equal(t, 95, target.HP)

	ExecuteExtra(ir.ConditionedExtra{Condition: ir.False{}, IfTrue: ir.HPChange{Value: num(-5)}}, ctx)
	assert.Equal(t, 95, target.HP, "missing branch is a no-op")
}

func TestExecuteExtra_ForUserSharesResults(t *testing.T) {
	user, target, ctx := combatPair(t, nil, nil)

	ExecuteExtra(ir.Grouped{Extras: []ir.Extra{
		ir.HPChange{Value: num(-10)},
		ir.ForUserExtra{Extra: ir.HPChange{Value: num(-3)}},
		ir.SwappedExtra{Extra: ir.SPChange{Value: num(-7)}},
	}}, ctx)

	assert.Equal(t, 90, target.HP)
	assert.Equal(t, 97, user.HP)
	assert.Equal(t, 93, user.SP)
	results := ctx.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "slime", results[0].Target)
	assert.Equal(t, "hero", results[1].Target)
	assert.Equal(t, "hero", results[2].Target)
	assert.Equal(t, "slime", results[2].User, "swapped context acts as the target")
}

func TestExecuteExtra_ShieldsAbsorbInKeyOrder(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)

	ExecuteExtra(ir.Grouped{Extras: []ir.Extra{
		ir.AttachShield{Key: "b-ward", Value: num(10), Turns: num(2)},
		ir.AttachShield{Key: "a-ward", Value: num(5)},
		ir.HPChange{Value: num(-12)},
	}}, ctx)

	assert.False(t, target.HasShield("a-ward"), "a-ward absorbs first and breaks")
	require.True(t, target.HasShield("b-ward"))
	assert.Equal(t, 3, target.Shields["b-ward"].Value)
	assert.Equal(t, 100, target.HP)
	assert.Equal(t, 0, ctx.Attack.Damage)
	assert.Equal(t, 12, ctx.Attack.Absorbed)

	results := ctx.Results()
	require.Len(t, results, 4)
	assert.Equal(t, ResultAttachShield, results[0].Kind)
	assert.Equal(t, 2, results[0].Turns)
	assert.Equal(t, ResultHPChange, results[2].Kind)
	assert.Equal(t, 12, results[2].Absorbed)
	assert.Equal(t, ActionResult{Kind: ResultRemoveShield, Action: "strike", User: "hero", Target: "slime", Name: "a-ward"}, results[3])

	ExecuteExtra(ir.HPChange{Value: num(-10)}, ctx)
	assert.Equal(t, 93, target.HP)
	assert.Equal(t, 7, ctx.Attack.Damage)
	assert.Equal(t, 3, ctx.Attack.Absorbed)
	assert.Empty(t, target.Shields)
}

func TestExecuteExtra_PierceShieldSkipsShields(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)

	ExecuteExtra(ir.AttachShield{Key: "ward", Value: num(50)}, ctx)
	ExecuteExtra(ir.HPChange{Value: num(-20), PierceShield: true}, ctx)

	assert.Equal(t, 80, target.HP)
	assert.Equal(t, 50, target.Shields["ward"].Value)
}

func TestExecuteExtra_ShieldRemoval(t *testing.T) {
	_, target, ctx := combatPair(t, nil, nil)

	ExecuteExtra(ir.Grouped{Extras: []ir.Extra{
		ir.AttachShield{Key: "a", Value: num(1)},
		ir.AttachShield{Key: "b", Value: num(1)},
		ir.AttachShield{Key: "c", Value: num(1)},
		ir.RemoveShield{Key: "b"},
		ir.RemoveShield{Key: "missing"},
	}}, ctx)
	assert.Equal(t, []string{"a", "c"}, target.ShieldKeys())

	ExecuteExtra(ir.RemoveAllShields{}, ctx)
	assert.Empty(t, target.Shields)

	var removed []string
	for _, r := range ctx.Results() {
		if r.Kind == ResultRemoveShield {
			removed = append(removed, r.Name)
		}
	}
	assert.Equal(t, []string{"b", "a", "c"}, removed)
}

func TestExecuteExtra_AttachEffect(t *testing.T) {
	archive := testutil.NewArchive(&ir.EffectData{
		Name:        "might",
		IsRemovable: true,
		Modifiers: map[ir.Stat]ir.Value{
			ir.StatATK: ir.TimesByConstant{Value: ir.ActionTier{}, Constant: 5},
		},
	})
	user, target, ctx := combatPair(t, archive, nil)

	ExecuteExtra(ir.AttachEffect{Name: "might", Tier: num(3), Turns: num(4)}, ctx)

	require.Len(t, target.Effects, 1)
	eff := target.Effects[0]
	assert.Same(t, user, eff.User, "owned by the context user")
	assert.Equal(t, 3, eff.Tier)
	assert.Equal(t, 4, eff.TurnsLeft)
	assert.Equal(t, 15.0, eff.Modifiers[ir.StatATK], "modifiers read the effect's own tier")
	assert.Equal(t, 35.0, target.Stat(ir.StatATK))

	results := ctx.Results()
	require.Len(t, results, 1)
	assert.Equal(t, ActionResult{Kind: ResultAttachEffect, Action: "strike", User: "hero", Target: "slime", Name: "might", Tier: 3, Turns: 4}, results[0])
}

func TestExecuteExtra_AttachUnknownEffectIsNoop(t *testing.T) {
	_, target, ctx := combatPair(t, testutil.NewArchive(), nil)

	ExecuteExtra(ir.AttachEffect{Name: "ghost", Turns: num(2)}, ctx)

	assert.Empty(t, target.Effects)
	assert.Empty(t, ctx.Results())

	// No archive at all behaves the same.
	ctx.Archive = nil
	ExecuteExtra(ir.AttachEffect{Name: "ghost", Turns: num(2)}, ctx)
	assert.Empty(t, target.Effects)
}

func TestExecuteExtra_NonStackableKeepsGreater(t *testing.T) {
	archive := testutil.NewArchive(&ir.EffectData{Name: "burn", IsDebuff: true, IsRemovable: true})
	_, target, ctx := combatPair(t, archive, nil)

	ExecuteExtra(ir.AttachEffect{Name: "burn", Tier: num(2), Turns: num(3)}, ctx)
	ExecuteExtra(ir.AttachEffect{Name: "burn", Tier: num(1), Turns: num(9)}, ctx)
	require.Len(t, target.Effects, 1)
	assert.Equal(t, 2, target.Effects[0].Tier, "lower tier does not replace")

	ExecuteExtra(ir.AttachEffect{Name: "burn", Tier: num(2), Turns: num(5)}, ctx)
	require.Len(t, target.Effects, 1)
	assert.Equal(t, 5, target.Effects[0].TurnsLeft, "same tier with more turns replaces")

	assert.Len(t, ctx.Results(), 2, "dropped attach records nothing")
}

func TestExecuteExtra_StackableAppends(t *testing.T) {
	archive := testutil.NewArchive(&ir.EffectData{
		Name:        "rage",
		IsStackable: true,
		IsRemovable: true,
		Modifiers:   map[ir.Stat]ir.Value{ir.StatATK: num(2)},
	})
	_, target, ctx := combatPair(t, archive, nil)

	for i := 0; i < 3; i++ {
		ExecuteExtra(ir.AttachEffect{Name: "rage", Turns: num(2)}, ctx)
	}
	assert.Len(t, target.Effects, 3)
	assert.Equal(t, 26.0, target.Stat(ir.StatATK))
}

func TestExecuteExtra_RemoveEffects(t *testing.T) {
	archive := testutil.NewArchive(
		&ir.EffectData{Name: "rage", IsStackable: true, IsRemovable: true},
		&ir.EffectData{Name: "poison", IsDebuff: true, IsRemovable: true},
		&ir.EffectData{Name: "curse", IsDebuff: true, IsRemovable: false},
		&ir.EffectData{Name: "blessing", IsRemovable: false},
	)
	_, target, ctx := combatPair(t, archive, nil)
	attachAll := ir.Grouped{Extras: []ir.Extra{
		ir.AttachEffect{Name: "rage", Turns: num(2)},
		ir.AttachEffect{Name: "rage", Turns: num(2)},
		ir.AttachEffect{Name: "poison", Turns: num(2)},
		ir.AttachEffect{Name: "curse", Turns: num(2)},
		ir.AttachEffect{Name: "blessing", Turns: num(2)},
	}}
	names := func() []string {
		var out []string
		for _, e := range target.Effects {
			out = append(out, e.Name)
		}
		return out
	}

	ExecuteExtra(attachAll, ctx)
	ExecuteExtra(ir.RemoveEffect{Name: "rage"}, ctx)
	assert.Equal(t, []string{"poison", "curse", "blessing"}, names(), "all matching effects removed")

	ExecuteExtra(ir.RemoveEffect{Name: "curse"}, ctx)
	assert.Equal(t, []string{"poison", "blessing"}, names(), "explicit removal ignores removability")

	target.Effects = nil
	ExecuteExtra(attachAll, ctx)
	ExecuteExtra(ir.RemoveAllEffect{}, ctx)
	assert.Len(t, target.Effects, 5, "neither flag removes nothing")

	ExecuteExtra(ir.RemoveAllEffect{Debuff: true}, ctx)
	assert.Equal(t, []string{"rage", "rage", "curse", "blessing"}, names())

	ExecuteExtra(ir.RemoveAllEffect{Buff: true, Debuff: true}, ctx)
	assert.Equal(t, []string{"curse", "blessing"}, names(), "non-removable effects survive")
}

func TestExecuteExtra_ItemContextRecordsNothing(t *testing.T) {
	user := newTestEntity(t, "hero", nil)
	user.HP = 40
	ctx := &ItemContext{User: user, Target: user, Quantity: 2}

	ExecuteExtra(ir.Grouped{Extras: []ir.Extra{
		ir.HPChange{Value: ir.TimesByConstant{Value: ir.ItemQuantity{}, Constant: 10}},
		ir.NoEffect{},
	}}, ctx)

	assert.Equal(t, 60, user.HP)
}

func TestEntity_UseItem(t *testing.T) {
	user := newTestEntity(t, "hero", nil)
	ally := newTestEntity(t, "squire", nil)
	ally.HP = 10

	potion := &ir.ItemData{
		Key:    "potion",
		Name:   "Potion",
		Tier:   2,
		Usable: ir.HPLessThan{Rate: 0.5},
		Extra:  ir.HPChange{Value: ir.TimesByConstant{Value: ir.ItemTier{}, Constant: 25}},
	}

	assert.True(t, user.UseItem(potion, 1, ally, nil))
	assert.Equal(t, 60, ally.HP)

	assert.False(t, user.UseItem(potion, 1, ally, nil), "not usable above half HP")
	assert.Equal(t, 60, ally.HP)

	assert.False(t, user.UseItem(potion, 1, nil, nil), "nil target means self, which is at full HP")
}
