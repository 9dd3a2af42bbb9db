package ir

// Value is a sealed interface for numeric expression nodes.
type Value interface {
	Node
	value() // Sealed
}

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// FloatRange is a half-open float range [Min, Max).
type FloatRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Common value nodes.

type Constant struct{ Value float64 }

type Sum struct{ Values []Value }

type Times struct{ Values []Value }

type TimesByConstant struct {
	Value    Value
	Constant float64
}

type Div struct{ Dividend, Divisor Value }

type Negate struct{ Value Value }

// Shift shifts Value left by Amount bits, or right when Amount is negative.
type Shift struct{ Value, Amount Value }

type AbsoluteValue struct{ Value Value }

// CoercedBetween clamps Value into [Min, Max]; nil bounds are ignored.
type CoercedBetween struct{ Value, Min, Max Value }

type MinOf struct{ Values []Value }

type MaxOf struct{ Values []Value }

type RandomInt struct{ Range IntRange }

type RandomFloat struct{ Range FloatRange }

// ConditionedValue evaluates exactly one of IfTrue or IfFalse. A nil branch
// falls back to Default, and a nil Default reads as 0.
type ConditionedValue struct {
	Condition                Condition
	IfTrue, IfFalse, Default Value
}

// ForUserValue evaluates Value with the context target rebound to the user.
type ForUserValue struct{ Value Value }

// SwappedValue evaluates Value with user and target exchanged.
type SwappedValue struct{ Value Value }

// LoadValue reads a scratch value saved on the acting Action.
type LoadValue struct {
	Key     string
	Default Value
}

// Combat value leaves.

// Damage is the HP loss of the last attack after shields.
type Damage struct{}

// Absorbed is the shield absorption of the last attack.
type Absorbed struct{}

// AttackRate is 1 plus the user's path-gated plugin attack offset.
type AttackRate struct{}

// DefendRate is 1 plus the target's path-gated plugin defend offset.
type DefendRate struct{}

// TargetCount is the number of targets of the current skill invocation.
type TargetCount struct{}

// Item value leaves.

type ItemQuantity struct{}

type ItemTier struct{}

// Event value leaves.

type SavedVariable struct{ Key string }

type SavedTimestamp struct{ Key string }

type Currency struct{ Kind string }

type InventoryCount struct{ Item string }

// Action value leaves.

type ActionTier struct{}

type TimesUsed struct{}

type TimesRepeated struct{}

type SkillPower struct{}

type EffectTurnsLeft struct{}

// Entity value leaves. All read the context's current target.

type StatOf struct{ Stat Stat }

type HPRate struct{}

type SPRate struct{}

type APRate struct{}

type TurnsLeftOf struct{ Effect string }

type TierOf struct{ Effect string }

type ShieldValueOf struct{ Key string }

type ShieldTotal struct{}

// EffectCount counts attached buffs and/or debuffs.
type EffectCount struct{ Buff, Debuff bool }

// Time value leaves.

type Now struct{}

type HourOfDay struct{}

type DayOfWeek struct{}

func (Constant) value()         {}
func (Sum) value()              {}
func (Times) value()            {}
func (TimesByConstant) value()  {}
func (Div) value()              {}
func (Negate) value()           {}
func (Shift) value()            {}
func (AbsoluteValue) value()    {}
func (CoercedBetween) value()   {}
func (MinOf) value()            {}
func (MaxOf) value()            {}
func (RandomInt) value()        {}
func (RandomFloat) value()      {}
func (ConditionedValue) value() {}
func (ForUserValue) value()     {}
func (SwappedValue) value()     {}
func (LoadValue) value()        {}
func (Damage) value()           {}
func (Absorbed) value()         {}
func (AttackRate) value()       {}
func (DefendRate) value()       {}
func (TargetCount) value()      {}
func (ItemQuantity) value()     {}
func (ItemTier) value()         {}
func (SavedVariable) value()    {}
func (SavedTimestamp) value()   {}
func (Currency) value()         {}
func (InventoryCount) value()   {}
func (ActionTier) value()       {}
func (TimesUsed) value()        {}
func (TimesRepeated) value()    {}
func (SkillPower) value()       {}
func (EffectTurnsLeft) value()  {}
func (StatOf) value()           {}
func (HPRate) value()           {}
func (SPRate) value()           {}
func (APRate) value()           {}
func (TurnsLeftOf) value()      {}
func (TierOf) value()           {}
func (ShieldValueOf) value()    {}
func (ShieldTotal) value()      {}
func (EffectCount) value()      {}
func (Now) value()              {}
func (HourOfDay) value()        {}
func (DayOfWeek) value()        {}

func (Constant) Domain() Domain         { return DomainCommon }
func (Sum) Domain() Domain              { return DomainCommon }
func (Times) Domain() Domain            { return DomainCommon }
func (TimesByConstant) Domain() Domain  { return DomainCommon }
func (Div) Domain() Domain              { return DomainCommon }
func (Negate) Domain() Domain           { return DomainCommon }
func (Shift) Domain() Domain            { return DomainCommon }
func (AbsoluteValue) Domain() Domain    { return DomainCommon }
func (CoercedBetween) Domain() Domain   { return DomainCommon }
func (MinOf) Domain() Domain            { return DomainCommon }
func (MaxOf) Domain() Domain            { return DomainCommon }
func (RandomInt) Domain() Domain        { return DomainCommon }
func (RandomFloat) Domain() Domain      { return DomainCommon }
func (ConditionedValue) Domain() Domain { return DomainCommon }
func (ForUserValue) Domain() Domain     { return DomainCommon }
func (SwappedValue) Domain() Domain     { return DomainCommon }
func (LoadValue) Domain() Domain        { return DomainCommon }
func (Damage) Domain() Domain           { return DomainCombat }
func (Absorbed) Domain() Domain         { return DomainCombat }
func (AttackRate) Domain() Domain       { return DomainCombat }
func (DefendRate) Domain() Domain       { return DomainCombat }
func (TargetCount) Domain() Domain      { return DomainCombat }
func (ItemQuantity) Domain() Domain     { return DomainItem }
func (ItemTier) Domain() Domain         { return DomainItem }
func (SavedVariable) Domain() Domain    { return DomainEvent }
func (SavedTimestamp) Domain() Domain   { return DomainEvent }
func (Currency) Domain() Domain         { return DomainEvent }
func (InventoryCount) Domain() Domain   { return DomainEvent }
func (ActionTier) Domain() Domain       { return DomainAction }
func (TimesUsed) Domain() Domain        { return DomainAction }
func (TimesRepeated) Domain() Domain    { return DomainAction }
func (SkillPower) Domain() Domain       { return DomainAction }
func (EffectTurnsLeft) Domain() Domain  { return DomainAction }
func (StatOf) Domain() Domain           { return DomainEntity }
func (HPRate) Domain() Domain           { return DomainEntity }
func (SPRate) Domain() Domain           { return DomainEntity }
func (APRate) Domain() Domain           { return DomainEntity }
func (TurnsLeftOf) Domain() Domain      { return DomainEntity }
func (TierOf) Domain() Domain           { return DomainEntity }
func (ShieldValueOf) Domain() Domain    { return DomainEntity }
func (ShieldTotal) Domain() Domain      { return DomainEntity }
func (EffectCount) Domain() Domain      { return DomainEntity }
func (Now) Domain() Domain              { return DomainTime }
func (HourOfDay) Domain() Domain        { return DomainTime }
func (DayOfWeek) Domain() Domain        { return DomainTime }

func (Constant) Kind() string         { return "Value.Constant" }
func (Sum) Kind() string              { return "Value.Sum" }
func (Times) Kind() string            { return "Value.Times" }
func (TimesByConstant) Kind() string  { return "Value.TimesByConstant" }
func (Div) Kind() string              { return "Value.Div" }
func (Negate) Kind() string           { return "Value.Negate" }
func (Shift) Kind() string            { return "Value.Shift" }
func (AbsoluteValue) Kind() string    { return "Value.AbsoluteValue" }
func (CoercedBetween) Kind() string   { return "Value.CoercedBetween" }
func (MinOf) Kind() string            { return "Value.MinOf" }
func (MaxOf) Kind() string            { return "Value.MaxOf" }
func (RandomInt) Kind() string        { return "Value.RandomInt" }
func (RandomFloat) Kind() string      { return "Value.RandomFloat" }
func (ConditionedValue) Kind() string { return "Value.Conditioned" }
func (ForUserValue) Kind() string     { return "Value.ForUser" }
func (SwappedValue) Kind() string     { return "Value.Swapped" }
func (LoadValue) Kind() string        { return "Value.LoadValue" }
func (Damage) Kind() string           { return "Combat.Damage" }
func (Absorbed) Kind() string         { return "Combat.Absorbed" }
func (AttackRate) Kind() string       { return "Combat.AttackRate" }
func (DefendRate) Kind() string       { return "Combat.DefendRate" }
func (TargetCount) Kind() string      { return "Combat.TargetCount" }
func (ItemQuantity) Kind() string     { return "Item.Quantity" }
func (ItemTier) Kind() string         { return "Item.Tier" }
func (SavedVariable) Kind() string    { return "Event.Variable" }
func (SavedTimestamp) Kind() string   { return "Event.Timestamp" }
func (Currency) Kind() string         { return "Event.Currency" }
func (InventoryCount) Kind() string   { return "Event.InventoryCount" }
func (ActionTier) Kind() string       { return "Action.Tier" }
func (TimesUsed) Kind() string        { return "Action.TimesUsed" }
func (TimesRepeated) Kind() string    { return "Action.TimesRepeated" }
func (SkillPower) Kind() string       { return "Action.Power" }
func (EffectTurnsLeft) Kind() string  { return "Action.TurnsLeft" }
func (StatOf) Kind() string           { return "Entity.Stat" }
func (HPRate) Kind() string           { return "Entity.HPRate" }
func (SPRate) Kind() string           { return "Entity.SPRate" }
func (APRate) Kind() string           { return "Entity.APRate" }
func (TurnsLeftOf) Kind() string      { return "Entity.TurnsLeftOf" }
func (TierOf) Kind() string           { return "Entity.TierOf" }
func (ShieldValueOf) Kind() string    { return "Entity.ShieldValueOf" }
func (ShieldTotal) Kind() string      { return "Entity.ShieldTotal" }
func (EffectCount) Kind() string      { return "Entity.EffectCount" }
func (Now) Kind() string              { return "Time.Now" }
func (HourOfDay) Kind() string        { return "Time.HourOfDay" }
func (DayOfWeek) Kind() string        { return "Time.DayOfWeek" }
