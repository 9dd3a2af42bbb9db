package ir

import "fmt"

// Domain tags a node with the contexts it may be evaluated in.
type Domain uint8

const (
	DomainCommon Domain = iota
	DomainCombat
	DomainItem
	DomainEvent
	DomainEntity // cross-cutting: reads or mutates the context target
	DomainAction // cross-cutting: reads the acting Action
	DomainTime   // cross-cutting: reads the context wall clock
)

var domainNames = [...]string{
	DomainCommon: "Common",
	DomainCombat: "Combat",
	DomainItem:   "Item",
	DomainEvent:  "Event",
	DomainEntity: "Entity",
	DomainAction: "Action",
	DomainTime:   "Time",
}

func (d Domain) String() string {
	if int(d) < len(domainNames) {
		return domainNames[d]
	}
	return fmt.Sprintf("Domain(%d)", d)
}

// ContextDomain is the kind of context an expression is evaluated against.
type ContextDomain uint8

const (
	ContextCombat ContextDomain = iota
	ContextItem
	ContextEvent
)

func (c ContextDomain) String() string {
	switch c {
	case ContextCombat:
		return "Combat"
	case ContextItem:
		return "Item"
	case ContextEvent:
		return "Event"
	default:
		return fmt.Sprintf("ContextDomain(%d)", c)
	}
}

// AllowedIn reports whether nodes tagged d may be evaluated in context c.
func (d Domain) AllowedIn(c ContextDomain) bool {
	switch d {
	case DomainCommon, DomainEntity:
		return true
	case DomainCombat:
		return c == ContextCombat
	case DomainItem:
		return c == ContextItem
	case DomainEvent:
		return c == ContextEvent
	case DomainAction, DomainTime:
		return c == ContextCombat || c == ContextEvent
	default:
		return false
	}
}

// Node is implemented by every Value, Condition and Extra.
type Node interface {
	// Domain returns the node's domain tag.
	Domain() Domain
	// Kind returns the serialized type name, e.g. "Value.Sum".
	Kind() string
}
