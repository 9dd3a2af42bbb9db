package ir

// Extra is a sealed interface for effectful nodes. Extras are the only nodes
// allowed to mutate entities or persisted state.
type Extra interface {
	Node
	extra() // Sealed
}

// Common extra nodes.

type Empty struct{}

// ConditionedExtra executes at most one branch.
type ConditionedExtra struct {
	Condition       Condition
	IfTrue, IfFalse Extra
}

// Grouped executes Extras strictly in order.
type Grouped struct{ Extras []Extra }

// SaveValue writes a scratch value on the acting Action.
type SaveValue struct {
	Key   string
	Value Value
}

type ForUserExtra struct{ Extra Extra }

type SwappedExtra struct{ Extra Extra }

// Entity extra nodes. They act on the context's current target.

// HPChange adds Value to the target's HP, clamped into [0, MaxHP]. Losses are
// absorbed by shields first unless PierceShield is set.
type HPChange struct {
	Value        Value
	PierceShield bool
}

// SPChange adds Value to the target's SP, clamped into [0, MaxSP].
type SPChange struct{ Value Value }

// APChange adds Value to the target's AP without clamping.
type APChange struct{ Value Value }

// AttachEffect attaches the named effect, owned by the context user.
type AttachEffect struct {
	Name  string
	Tier  Value
	Turns Value
}

// RemoveEffect removes every effect with the given name.
type RemoveEffect struct{ Name string }

// RemoveAllEffect removes removable buffs and/or debuffs.
type RemoveAllEffect struct{ Buff, Debuff bool }

// AttachShield attaches or replaces the shield Key. A nil Turns is permanent.
type AttachShield struct {
	Key   string
	Value Value
	Turns Value
}

type RemoveShield struct{ Key string }

type RemoveAllShields struct{}

// Combat extra nodes.

// NoEffect records that the action had no effect on the target.
type NoEffect struct{}

// Event extra nodes.

type SetSwitch struct {
	Key string
	On  bool
}

type SetVariable struct {
	Key   string
	Value Value
}

type AddVariable struct {
	Key   string
	Value Value
}

// StampTime saves the context clock's current unix time under Key.
type StampTime struct{ Key string }

type ChangeCurrency struct {
	Kind  string
	Value Value
}

type ChangeInventory struct {
	Item  string
	Value Value
}

func (Empty) extra()            {}
func (ConditionedExtra) extra() {}
func (Grouped) extra()          {}
func (SaveValue) extra()        {}
func (ForUserExtra) extra()     {}
func (SwappedExtra) extra()     {}
func (HPChange) extra()         {}
func (SPChange) extra()         {}
func (APChange) extra()         {}
func (AttachEffect) extra()     {}
func (RemoveEffect) extra()     {}
func (RemoveAllEffect) extra()  {}
func (AttachShield) extra()     {}
func (RemoveShield) extra()     {}
func (RemoveAllShields) extra() {}
func (NoEffect) extra()         {}
func (SetSwitch) extra()        {}
func (SetVariable) extra()      {}
func (AddVariable) extra()      {}
func (StampTime) extra()        {}
func (ChangeCurrency) extra()   {}
func (ChangeInventory) extra()  {}

func (Empty) Domain() Domain            { return DomainCommon }
func (ConditionedExtra) Domain() Domain { return DomainCommon }
func (Grouped) Domain() Domain          { return DomainCommon }
func (SaveValue) Domain() Domain        { return DomainCommon }
func (ForUserExtra) Domain() Domain     { return DomainCommon }
func (SwappedExtra) Domain() Domain     { return DomainCommon }
func (HPChange) Domain() Domain         { return DomainEntity }
func (SPChange) Domain() Domain         { return DomainEntity }
func (APChange) Domain() Domain         { return DomainEntity }
func (AttachEffect) Domain() Domain     { return DomainEntity }
func (RemoveEffect) Domain() Domain     { return DomainEntity }
func (RemoveAllEffect) Domain() Domain  { return DomainEntity }
func (AttachShield) Domain() Domain     { return DomainEntity }
func (RemoveShield) Domain() Domain     { return DomainEntity }
func (RemoveAllShields) Domain() Domain { return DomainEntity }
func (NoEffect) Domain() Domain         { return DomainCombat }
func (SetSwitch) Domain() Domain        { return DomainEvent }
func (SetVariable) Domain() Domain      { return DomainEvent }
func (AddVariable) Domain() Domain      { return DomainEvent }
func (StampTime) Domain() Domain        { return DomainEvent }
func (ChangeCurrency) Domain() Domain   { return DomainEvent }
func (ChangeInventory) Domain() Domain  { return DomainEvent }

func (Empty) Kind() string            { return "Extra.Empty" }
func (ConditionedExtra) Kind() string { return "Extra.Conditioned" }
func (Grouped) Kind() string          { return "Extra.Grouped" }
func (SaveValue) Kind() string        { return "Extra.SaveValue" }
func (ForUserExtra) Kind() string     { return "Extra.ForUser" }
func (SwappedExtra) Kind() string     { return "Extra.Swapped" }
func (HPChange) Kind() string         { return "Entity.HPChange" }
func (SPChange) Kind() string         { return "Entity.SPChange" }
func (APChange) Kind() string         { return "Entity.APChange" }
func (AttachEffect) Kind() string     { return "Entity.AttachEffect" }
func (RemoveEffect) Kind() string     { return "Entity.RemoveEffect" }
func (RemoveAllEffect) Kind() string  { return "Entity.RemoveAllEffect" }
func (AttachShield) Kind() string     { return "Entity.AttachShield" }
func (RemoveShield) Kind() string     { return "Entity.RemoveShield" }
func (RemoveAllShields) Kind() string { return "Entity.RemoveAllShields" }
func (NoEffect) Kind() string         { return "Combat.NoEffect" }
func (SetSwitch) Kind() string        { return "Event.SetSwitch" }
func (SetVariable) Kind() string      { return "Event.SetVariable" }
func (AddVariable) Kind() string      { return "Event.AddVariable" }
func (StampTime) Kind() string        { return "Event.StampTime" }
func (ChangeCurrency) Kind() string   { return "Event.ChangeCurrency" }
func (ChangeInventory) Kind() string  { return "Event.ChangeInventory" }
