package engine

import (
	"github.com/roach88/runebound/internal/ir"
)

func evalCondition(f *frame, c ir.Condition) (bool, error) {
	if c == nil || !c.Domain().AllowedIn(f.domain) {
		return false, nil
	}

	switch n := c.(type) {
	case ir.And:
		for _, child := range n.Conditions {
			ok, err := evalCondition(f, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case ir.Or:
		for _, child := range n.Conditions {
			ok, err := evalCondition(f, child)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case ir.Not:
		ok, err := evalCondition(f, n.Condition)
		return !ok && err == nil, err

	case ir.Compare:
		a, b, err := evalPair(f, n.V1, n.V2)
		if err != nil {
			return false, err
		}
		if n.Inclusive {
			return a >= b, nil
		}
		return a > b, nil

	case ir.CompareValues:
		a, b, err := evalPair(f, n.V1, n.V2)
		if err != nil {
			return false, err
		}
		return n.Comparator.Apply(a, b), nil

	case ir.Chance:
		threshold, base, err := evalPair(f, n.SuccessRate, n.Base)
		if err != nil {
			return false, err
		}
		if f.random == nil {
			return false, nil
		}
		return f.random.Float64() < threshold+base, nil

	case ir.True:
		return true, nil

	case ir.False:
		return false, nil

	case ir.Critical:
		return f.attack != nil && f.attack.Critical, nil

	case ir.Missed:
		return f.attack != nil && f.attack.Missed, nil

	case ir.TargetingSelf:
		return f.user != nil && f.user == f.target, nil

	case ir.ItemNamed:
		return f.item != nil && (f.item.Key == n.Name || f.item.Name == n.Name), nil

	case ir.ItemQuantityAtLeast:
		return f.item != nil && f.quantity >= n.Quantity, nil

	case ir.Switch, ir.QuestCompleted, ir.TitleUnlocked, ir.TimeElapsed:
		return evalEventCondition(f, c)

	default:
		return evalEntityCondition(f.target, c), nil
	}
}

// evalEntityCondition reads an Entity predicate from target. A nil target
// reads false.
func evalEntityCondition(target *Entity, c ir.Condition) bool {
	if target == nil {
		return false
	}
	switch n := c.(type) {
	case ir.HasCategory:
		return target.HasCategory(n.Category)
	case ir.HasEffect:
		return target.HasEffect(n.Effect)
	case ir.HasShield:
		return target.HasShield(n.Key)
	case ir.HasBuff:
		return target.CountEffects(true, false) > 0
	case ir.HasDebuff:
		return target.CountEffects(false, true) > 0
	case ir.IsFrozen:
		return target.IsFrozen()
	case ir.IsAlive:
		return target.IsAlive()
	case ir.HPLessThan:
		return target.HPRate() < n.Rate
	case ir.SPLessThan:
		return target.SPRate() < n.Rate
	case ir.PathIs:
		return target.Path == n.Path
	}
	return false
}
