package engine

import "maps"

// Action is the base of everything executable: skills and effects. It owns
// the scratch values written by SaveValue and read by LoadValue.
type Action struct {
	Name     string
	Category string
	// User is the owning entity. It is a back-reference for lookups only.
	User *Entity
	// Tier is at least 1 and scales the action's magnitude.
	Tier int

	TimesUsed     int
	TimesRepeated int

	values map[string]float64
}

// Actor is implemented by *Action and by every type embedding Action.
type Actor interface {
	base() *Action
}

func (a *Action) base() *Action { return a }

// NewAction creates an action with tier clamped to at least 1.
func NewAction(name string, user *Entity, tier int) *Action {
	return &Action{Name: name, User: user, Tier: max(tier, 1)}
}

// Value returns a saved scratch value.
func (a *Action) Value(key string) (float64, bool) {
	v, ok := a.values[key]
	return v, ok
}

// SetValue saves a scratch value for the action's lifetime.
func (a *Action) SetValue(key string, v float64) {
	if a.values == nil {
		a.values = make(map[string]float64)
	}
	a.values[key] = v
}

// Values returns a copy of the scratch values.
func (a *Action) Values() map[string]float64 {
	return maps.Clone(a.values)
}

// Reset clears scratch values and use counters. Name, user and tier survive.
func (a *Action) Reset() {
	a.values = nil
	a.TimesUsed = 0
	a.TimesRepeated = 0
}
