package engine

import (
	"math"

	"github.com/roach88/runebound/internal/ir"
)

// SyncContext is implemented by *CombatContext and *ItemContext, the
// contexts whose evaluation never blocks.
type SyncContext interface {
	frame() *frame
}

// EvaluateValue evaluates v against a Combat or Item context. Nodes whose
// domain is not allowed in the context read as 0.
func EvaluateValue(v ir.Value, c SyncContext) float64 {
	// Combat and Item frames have no state collaborator, so no error is possible.
	x, _ := evalValue(c.frame(), v)
	return x
}

// EvaluateCondition evaluates cond against a Combat or Item context. Nodes
// whose domain is not allowed in the context read as false.
func EvaluateCondition(cond ir.Condition, c SyncContext) bool {
	ok, _ := evalCondition(c.frame(), cond)
	return ok
}

// ExecuteExtra executes x against a Combat or Item context. Nodes whose
// domain is not allowed in the context are no-ops.
func ExecuteExtra(x ir.Extra, c SyncContext) {
	_ = execExtra(c.frame(), x)
}

func evalValue(f *frame, v ir.Value) (float64, error) {
	if v == nil || !v.Domain().AllowedIn(f.domain) {
		return 0, nil
	}

	switch n := v.(type) {
	case ir.Constant:
		return n.Value, nil

	case ir.Sum:
		total := 0.0
		for _, child := range n.Values {
			x, err := evalValue(f, child)
			if err != nil {
				return 0, err
			}
			total += x
		}
		return total, nil

	case ir.Times:
		product := 1.0
		for _, child := range n.Values {
			x, err := evalValue(f, child)
			if err != nil {
				return 0, err
			}
			product *= x
		}
		return product, nil

	case ir.TimesByConstant:
		x, err := evalValue(f, n.Value)
		return x * n.Constant, err

	case ir.Div:
		a, b, err := evalPair(f, n.Dividend, n.Divisor)
		if err != nil {
			return 0, err
		}
		if f.domain == ir.ContextEvent {
			return math.Trunc(a / b), nil
		}
		return a / b, nil

	case ir.Negate:
		x, err := evalValue(f, n.Value)
		return -x, err

	case ir.Shift:
		a, b, err := evalPair(f, n.Value, n.Amount)
		if err != nil {
			return 0, err
		}
		if f.domain == ir.ContextEvent {
			return shift64(a, b), nil
		}
		return shift32(a, b), nil

	case ir.AbsoluteValue:
		x, err := evalValue(f, n.Value)
		return math.Abs(x), err

	case ir.CoercedBetween:
		x, err := evalValue(f, n.Value)
		if err != nil {
			return 0, err
		}
		if n.Min != nil {
			lo, err := evalValue(f, n.Min)
			if err != nil {
				return 0, err
			}
			x = math.Max(x, lo)
		}
		if n.Max != nil {
			hi, err := evalValue(f, n.Max)
			if err != nil {
				return 0, err
			}
			x = math.Min(x, hi)
		}
		return x, nil

	case ir.MinOf:
		return evalFold(f, n.Values, math.Min)

	case ir.MaxOf:
		return evalFold(f, n.Values, math.Max)

	case ir.RandomInt:
		if f.random == nil {
			return float64(n.Range.Min), nil
		}
		return float64(f.random.IntN(n.Range.Min, n.Range.Max)), nil

	case ir.RandomFloat:
		if f.random == nil {
			return n.Range.Min, nil
		}
		return n.Range.Min + (n.Range.Max-n.Range.Min)*f.random.Float64(), nil

	case ir.ConditionedValue:
		ok, err := evalCondition(f, n.Condition)
		if err != nil {
			return 0, err
		}
		branch := n.IfFalse
		if ok {
			branch = n.IfTrue
		}
		if branch == nil {
			branch = n.Default
		}
		return evalValue(f, branch)

	case ir.ForUserValue:
		return evalValue(f.forUser(), n.Value)

	case ir.SwappedValue:
		return evalValue(f.swapped(), n.Value)

	case ir.LoadValue:
		if a := f.actionBase(); a != nil {
			if x, ok := a.Value(n.Key); ok {
				return x, nil
			}
		}
		return evalValue(f, n.Default)

	case ir.Damage:
		if f.attack == nil {
			return 0, nil
		}
		return float64(f.attack.Damage), nil

	case ir.Absorbed:
		if f.attack == nil {
			return 0, nil
		}
		return float64(f.attack.Absorbed), nil

	case ir.AttackRate:
		if f.user == nil {
			return 1, nil
		}
		x, err := evalValue(f, f.user.AttackRateOffset())
		return 1 + x, err

	case ir.DefendRate:
		if f.target == nil {
			return 1, nil
		}
		x, err := evalValue(f, f.target.DefendRateOffset())
		return 1 + x, err

	case ir.TargetCount:
		return float64(f.targets), nil

	case ir.ItemQuantity:
		return float64(f.quantity), nil

	case ir.ItemTier:
		if f.item == nil {
			return 0, nil
		}
		return float64(f.item.Tier), nil

	case ir.SavedVariable, ir.SavedTimestamp, ir.Currency, ir.InventoryCount:
		return evalEventValue(f, v)

	case ir.ActionTier, ir.TimesUsed, ir.TimesRepeated, ir.SkillPower, ir.EffectTurnsLeft:
		return evalActionValue(f, v), nil

	case ir.Now, ir.HourOfDay, ir.DayOfWeek:
		return evalTimeValue(f, v), nil

	default:
		return evalEntityValue(f.target, v), nil
	}
}

func evalPair(f *frame, a, b ir.Value) (float64, float64, error) {
	x, err := evalValue(f, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := evalValue(f, b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// evalFold reduces values with pick. An empty list is 0.
func evalFold(f *frame, values []ir.Value, pick func(a, b float64) float64) (float64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	acc, err := evalValue(f, values[0])
	if err != nil {
		return 0, err
	}
	for _, child := range values[1:] {
		x, err := evalValue(f, child)
		if err != nil {
			return 0, err
		}
		acc = pick(acc, x)
	}
	return acc, nil
}

// shift32 truncates both operands to 32-bit integers and shifts left by a
// non-negative amount or right by a negative one. The distance is masked to
// its low 5 bits, so shifting by 33 shifts by 1.
func shift32(v, amount float64) float64 {
	a := int32(int64(v))
	b := int64(amount)
	if b >= 0 {
		return float64(a << (uint32(b) & 31))
	}
	return float64(a >> (uint32(-b) & 31))
}

// shift64 is shift32 on 64-bit integers, masking the distance to 6 bits.
func shift64(v, amount float64) float64 {
	a := int64(v)
	b := int64(amount)
	if b >= 0 {
		return float64(a << (uint64(b) & 63))
	}
	return float64(a >> (uint64(-b) & 63))
}

func evalActionValue(f *frame, v ir.Value) float64 {
	a := f.actionBase()
	if a == nil {
		return 0
	}
	switch v.(type) {
	case ir.ActionTier:
		return float64(a.Tier)
	case ir.TimesUsed:
		return float64(a.TimesUsed)
	case ir.TimesRepeated:
		return float64(a.TimesRepeated)
	case ir.SkillPower:
		if s, ok := f.action.(*Skill); ok {
			return float64(s.Power)
		}
	case ir.EffectTurnsLeft:
		if e, ok := f.action.(*Effect); ok {
			return float64(e.TurnsLeft)
		}
	}
	return 0
}

func (f *frame) now() WallClock {
	if f.clock == nil {
		return SystemClock{}
	}
	return f.clock
}

func evalTimeValue(f *frame, v ir.Value) float64 {
	now := f.now().Now().UTC()
	switch v.(type) {
	case ir.Now:
		return float64(now.Unix())
	case ir.HourOfDay:
		return float64(now.Hour())
	case ir.DayOfWeek:
		return float64(now.Weekday())
	}
	return 0
}

// evalEntityValue reads an Entity leaf from target. A nil target reads 0.
func evalEntityValue(target *Entity, v ir.Value) float64 {
	if target == nil {
		return 0
	}
	switch n := v.(type) {
	case ir.StatOf:
		return target.Stat(n.Stat)
	case ir.HPRate:
		return target.HPRate()
	case ir.SPRate:
		return target.SPRate()
	case ir.APRate:
		return target.APRate()
	case ir.TurnsLeftOf:
		if eff := target.EffectNamed(n.Effect); eff != nil {
			return float64(eff.TurnsLeft)
		}
	case ir.TierOf:
		if eff := target.EffectNamed(n.Effect); eff != nil {
			return float64(eff.Tier)
		}
	case ir.ShieldValueOf:
		if s, ok := target.Shields[n.Key]; ok {
			return float64(s.Value)
		}
	case ir.ShieldTotal:
		return float64(target.ShieldTotal())
	case ir.EffectCount:
		return float64(target.CountEffects(n.Buff, n.Debuff))
	}
	return 0
}
