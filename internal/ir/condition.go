package ir

import "fmt"

// Condition is a sealed interface for boolean expression nodes.
type Condition interface {
	Node
	condition() // Sealed
}

// Comparator selects the relation used by CompareValues.
type Comparator string

const (
	GT   Comparator = "GT"
	GTEQ Comparator = "GTEQ"
	LT   Comparator = "LT"
	LTEQ Comparator = "LTEQ"
	EQ   Comparator = "EQ"
	NEQ  Comparator = "NEQ"
)

// Apply compares a and b.
func (c Comparator) Apply(a, b float64) bool {
	switch c {
	case GT:
		return a > b
	case GTEQ:
		return a >= b
	case LT:
		return a < b
	case LTEQ:
		return a <= b
	case EQ:
		return a == b
	case NEQ:
		return a != b
	default:
		return false
	}
}

// ParseComparator validates a comparator name.
func ParseComparator(s string) (Comparator, error) {
	switch c := Comparator(s); c {
	case GT, GTEQ, LT, LTEQ, EQ, NEQ:
		return c, nil
	default:
		return "", fmt.Errorf("unknown comparator %q", s)
	}
}

// Common condition nodes.

// And is true when every condition holds. An empty And is true.
type And struct{ Conditions []Condition }

// Or is true when any condition holds. An empty Or is false.
type Or struct{ Conditions []Condition }

type Not struct{ Condition Condition }

// Compare is V1 > V2, or V1 >= V2 when Inclusive.
type Compare struct {
	V1, V2    Value
	Inclusive bool
}

type CompareValues struct {
	V1, V2     Value
	Comparator Comparator
}

// Chance draws one float in [0,1) and holds when the draw is below
// SuccessRate plus the optional Base offset.
type Chance struct{ SuccessRate, Base Value }

type True struct{}

type False struct{}

// Combat condition leaves.

type Critical struct{}

type TargetingSelf struct{}

type Missed struct{}

// Item condition leaves.

type ItemNamed struct{ Name string }

type ItemQuantityAtLeast struct{ Quantity int }

// Event condition leaves.

type Switch struct{ Key string }

type QuestCompleted struct{ Quest string }

type TitleUnlocked struct{ Title string }

// TimeElapsed holds when at least Seconds passed since the saved timestamp Key.
// A missing timestamp never elapses.
type TimeElapsed struct {
	Key     string
	Seconds int64
}

// Entity condition leaves. All read the context's current target.

type HasCategory struct{ Category string }

type HasEffect struct{ Effect string }

type HasShield struct{ Key string }

type HasBuff struct{}

type HasDebuff struct{}

type IsFrozen struct{}

type IsAlive struct{}

type HPLessThan struct{ Rate float64 }

type SPLessThan struct{ Rate float64 }

type PathIs struct{ Path string }

func (And) condition()                 {}
func (Or) condition()                  {}
func (Not) condition()                 {}
func (Compare) condition()             {}
func (CompareValues) condition()       {}
func (Chance) condition()              {}
func (True) condition()                {}
func (False) condition()               {}
func (Critical) condition()            {}
func (TargetingSelf) condition()       {}
func (Missed) condition()              {}
func (ItemNamed) condition()           {}
func (ItemQuantityAtLeast) condition() {}
func (Switch) condition()              {}
func (QuestCompleted) condition()      {}
func (TitleUnlocked) condition()       {}
func (TimeElapsed) condition()         {}
func (HasCategory) condition()         {}
func (HasEffect) condition()           {}
func (HasShield) condition()           {}
func (HasBuff) condition()             {}
func (HasDebuff) condition()           {}
func (IsFrozen) condition()            {}
func (IsAlive) condition()             {}
func (HPLessThan) condition()          {}
func (SPLessThan) condition()          {}
func (PathIs) condition()              {}

func (And) Domain() Domain                 { return DomainCommon }
func (Or) Domain() Domain                  { return DomainCommon }
func (Not) Domain() Domain                 { return DomainCommon }
func (Compare) Domain() Domain             { return DomainCommon }
func (CompareValues) Domain() Domain       { return DomainCommon }
func (Chance) Domain() Domain              { return DomainCommon }
func (True) Domain() Domain                { return DomainCommon }
func (False) Domain() Domain               { return DomainCommon }
func (Critical) Domain() Domain            { return DomainCombat }
func (TargetingSelf) Domain() Domain       { return DomainCombat }
func (Missed) Domain() Domain              { return DomainCombat }
func (ItemNamed) Domain() Domain           { return DomainItem }
func (ItemQuantityAtLeast) Domain() Domain { return DomainItem }
func (Switch) Domain() Domain              { return DomainEvent }
func (QuestCompleted) Domain() Domain      { return DomainEvent }
func (TitleUnlocked) Domain() Domain       { return DomainEvent }
func (TimeElapsed) Domain() Domain         { return DomainEvent }
func (HasCategory) Domain() Domain         { return DomainEntity }
func (HasEffect) Domain() Domain           { return DomainEntity }
func (HasShield) Domain() Domain           { return DomainEntity }
func (HasBuff) Domain() Domain             { return DomainEntity }
func (HasDebuff) Domain() Domain           { return DomainEntity }
func (IsFrozen) Domain() Domain            { return DomainEntity }
func (IsAlive) Domain() Domain             { return DomainEntity }
func (HPLessThan) Domain() Domain          { return DomainEntity }
func (SPLessThan) Domain() Domain          { return DomainEntity }
func (PathIs) Domain() Domain              { return DomainEntity }

func (And) Kind() string                 { return "Condition.And" }
func (Or) Kind() string                  { return "Condition.Or" }
func (Not) Kind() string                 { return "Condition.Not" }
func (Compare) Kind() string             { return "Condition.Compare" }
func (CompareValues) Kind() string       { return "Condition.CompareValues" }
func (Chance) Kind() string              { return "Condition.Chance" }
func (True) Kind() string                { return "Condition.True" }
func (False) Kind() string               { return "Condition.False" }
func (Critical) Kind() string            { return "Combat.Critical" }
func (TargetingSelf) Kind() string       { return "Combat.TargetingSelf" }
func (Missed) Kind() string              { return "Combat.Missed" }
func (ItemNamed) Kind() string           { return "Item.Named" }
func (ItemQuantityAtLeast) Kind() string { return "Item.QuantityAtLeast" }
func (Switch) Kind() string              { return "Event.Switch" }
func (QuestCompleted) Kind() string      { return "Event.QuestCompleted" }
func (TitleUnlocked) Kind() string       { return "Event.TitleUnlocked" }
func (TimeElapsed) Kind() string         { return "Event.TimeElapsed" }
func (HasCategory) Kind() string         { return "Entity.HasCategory" }
func (HasEffect) Kind() string           { return "Entity.HasEffect" }
func (HasShield) Kind() string           { return "Entity.HasShield" }
func (HasBuff) Kind() string             { return "Entity.HasBuff" }
func (HasDebuff) Kind() string           { return "Entity.HasDebuff" }
func (IsFrozen) Kind() string            { return "Entity.IsFrozen" }
func (IsAlive) Kind() string             { return "Entity.IsAlive" }
func (HPLessThan) Kind() string          { return "Entity.HPLessThan" }
func (SPLessThan) Kind() string          { return "Entity.SPLessThan" }
func (PathIs) Kind() string              { return "Entity.PathIs" }
