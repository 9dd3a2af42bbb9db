package engine

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/runebound/internal/ir"
)

func execExtra(f *frame, x ir.Extra) error {
	if x == nil || !x.Domain().AllowedIn(f.domain) {
		return nil
	}

	switch n := x.(type) {
	case ir.Empty:
		return nil

	case ir.ConditionedExtra:
		ok, err := evalCondition(f, n.Condition)
		if err != nil {
			return err
		}
		if ok {
			return execExtra(f, n.IfTrue)
		}
		return execExtra(f, n.IfFalse)

	case ir.Grouped:
		for _, child := range n.Extras {
			if err := execExtra(f, child); err != nil {
				return err
			}
		}
		return nil

	case ir.SaveValue:
		a := f.actionBase()
		if a == nil {
			return nil
		}
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		a.SetValue(n.Key, v)
		return nil

	case ir.ForUserExtra:
		return execExtra(f.forUser(), n.Extra)

	case ir.SwappedExtra:
		return execExtra(f.swapped(), n.Extra)

	case ir.NoEffect:
		if f.target != nil {
			f.record(ActionResult{Kind: ResultNoEffect, Target: f.target.ID})
		}
		return nil

	case ir.SetSwitch, ir.SetVariable, ir.AddVariable, ir.StampTime, ir.ChangeCurrency, ir.ChangeInventory:
		return execEventExtra(f, x)

	default:
		if f.target == nil {
			return nil
		}
		return execEntityExtra(f, x)
	}
}

// execEntityExtra mutates the frame's target.
func execEntityExtra(f *frame, x ir.Extra) error {
	target := f.target

	switch n := x.(type) {
	case ir.HPChange:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		ch := target.changeHP(int(v), n.PierceShield)
		if v < 0 && f.attack != nil {
			f.attack.Damage = -ch.applied
			f.attack.Absorbed = ch.absorbed
		}
		f.record(ActionResult{Kind: ResultHPChange, Target: target.ID, Delta: ch.applied, Absorbed: ch.absorbed})
		for _, k := range ch.broken {
			f.record(ActionResult{Kind: ResultRemoveShield, Target: target.ID, Name: k})
		}

	case ir.SPChange:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		f.record(ActionResult{Kind: ResultSPChange, Target: target.ID, Delta: target.changeSP(int(v))})

	case ir.APChange:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		f.record(ActionResult{Kind: ResultAPChange, Target: target.ID, Delta: target.changeAP(int(v))})

	case ir.AttachEffect:
		return attachEffect(f, n)

	case ir.RemoveEffect:
		for _, eff := range target.removeEffectsNamed(n.Name) {
			f.record(ActionResult{Kind: ResultRemoveEffect, Target: target.ID, Name: eff.Name, Tier: eff.Tier})
		}

	case ir.RemoveAllEffect:
		for _, eff := range target.removeAllEffects(n.Buff, n.Debuff) {
			f.record(ActionResult{Kind: ResultRemoveEffect, Target: target.ID, Name: eff.Name, Tier: eff.Tier})
		}

	case ir.AttachShield:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		s := &Shield{Key: n.Key, Value: max(int(v), 0)}
		turns := 0
		if n.Turns != nil {
			t, err := evalValue(f, n.Turns)
			if err != nil {
				return err
			}
			turns = int(t)
			s.TurnsLeft = turnsPtr(turns)
		}
		target.attachShield(s)
		f.record(ActionResult{Kind: ResultAttachShield, Target: target.ID, Name: n.Key, Delta: s.Value, Turns: turns})

	case ir.RemoveShield:
		if target.removeShield(n.Key) {
			f.record(ActionResult{Kind: ResultRemoveShield, Target: target.ID, Name: n.Key})
		}

	case ir.RemoveAllShields:
		for _, k := range target.ShieldKeys() {
			target.removeShield(k)
			f.record(ActionResult{Kind: ResultRemoveShield, Target: target.ID, Name: k})
		}
	}
	return nil
}

// attachEffect instantiates the named template owned by the frame's user and
// attaches it to the target. An unknown name is a no-op.
func attachEffect(f *frame, n ir.AttachEffect) error {
	data, err := f.lookupEffect(n.Name)
	if err != nil {
		return err
	}
	if data == nil {
		slog.Debug("effect not in archive, skipping attach", "effect", n.Name)
		return nil
	}

	tier := 1
	if n.Tier != nil {
		t, err := evalValue(f, n.Tier)
		if err != nil {
			return err
		}
		tier = int(t)
	}
	turns, err := evalValue(f, n.Turns)
	if err != nil {
		return err
	}

	eff := NewEffect(data, f.user, tier, int(turns))
	if len(data.Modifiers) > 0 {
		eff.Modifiers = make(map[ir.Stat]float64, len(data.Modifiers))
		mf := &frame{
			ctx:     f.ctx,
			domain:  ir.ContextCombat,
			action:  eff,
			user:    f.user,
			target:  f.target,
			attack:  &AttackResult{},
			random:  f.random,
			clock:   f.clock,
			targets: 1,
			archive: f.archive,
		}
		for _, stat := range slices.Sorted(maps.Keys(data.Modifiers)) {
			x, _ := evalValue(mf, data.Modifiers[stat])
			eff.Modifiers[stat] = x
		}
	}

	if f.target.attachEffect(eff) {
		f.record(ActionResult{Kind: ResultAttachEffect, Target: f.target.ID, Name: eff.Name, Tier: eff.Tier, Turns: eff.TurnsLeft})
	}
	return nil
}

// lookupEffect resolves an effect template through the async archive in
// Event frames and the sync archive otherwise. A miss returns nil.
func (f *frame) lookupEffect(name string) (*ir.EffectData, error) {
	if f.async != nil {
		data, ok, err := f.async.FetchEffect(f.ctx, name)
		if err != nil || !ok {
			return nil, err
		}
		return data, nil
	}
	if f.archive == nil {
		return nil, nil
	}
	data, ok := f.archive.Effect(name)
	if !ok {
		return nil, nil
	}
	return data, nil
}
