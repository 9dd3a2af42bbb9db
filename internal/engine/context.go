package engine

import (
	"context"

	"github.com/roach88/runebound/internal/ir"
)

// AttackResult describes the attack currently being resolved. Combat.Damage,
// Combat.Absorbed, Combat.Critical and Combat.Missed read it.
type AttackResult struct {
	// Damage is the HP lost by the last HPChange loss after shields.
	Damage int
	// Absorbed is the part of the last loss taken by shields.
	Absorbed int
	Critical bool
	Missed   bool
}

// CombatContext is the capsule for Combat evaluation. Results of executed
// extras are appended to a sink shared by every context derived from it.
type CombatContext struct {
	Action  Actor
	User    *Entity
	Target  *Entity
	Attack  *AttackResult
	Random  Random
	Clock   WallClock
	Targets int
	Archive Archive

	sink *resultSink
}

// NewCombatContext creates a combat context with an empty result sink.
func NewCombatContext(action Actor, user, target *Entity, random Random) *CombatContext {
	return &CombatContext{
		Action:  action,
		User:    user,
		Target:  target,
		Attack:  &AttackResult{},
		Random:  random,
		Targets: 1,
		sink:    &resultSink{},
	}
}

// Results returns the records appended so far.
func (c *CombatContext) Results() []ActionResult {
	return c.sink.all()
}

// ForUser returns a copy whose target is the user. The result sink is shared.
func (c *CombatContext) ForUser() *CombatContext {
	cp := *c
	cp.Target = c.User
	return &cp
}

// Swapped returns a copy with user and target exchanged. The result sink is shared.
func (c *CombatContext) Swapped() *CombatContext {
	cp := *c
	cp.User, cp.Target = c.Target, c.User
	return &cp
}

func (c *CombatContext) frame() *frame {
	if c.sink == nil {
		c.sink = &resultSink{}
	}
	if c.Attack == nil {
		c.Attack = &AttackResult{}
	}
	return &frame{
		ctx:     context.Background(),
		domain:  ir.ContextCombat,
		action:  c.Action,
		user:    c.User,
		target:  c.Target,
		attack:  c.Attack,
		random:  c.Random,
		clock:   c.Clock,
		targets: c.Targets,
		archive: c.Archive,
		sink:    c.sink,
	}
}

// ItemContext is the capsule for Item evaluation. Item extras mutate the
// target directly and record no results.
type ItemContext struct {
	Item     *ir.ItemData
	Quantity int
	User     *Entity
	Target   *Entity
	Random   Random
	Archive  Archive
}

// ForUser returns a copy whose target is the user.
func (c *ItemContext) ForUser() *ItemContext {
	cp := *c
	cp.Target = c.User
	return &cp
}

// Swapped returns a copy with user and target exchanged.
func (c *ItemContext) Swapped() *ItemContext {
	cp := *c
	cp.User, cp.Target = c.Target, c.User
	return &cp
}

func (c *ItemContext) frame() *frame {
	return &frame{
		ctx:      context.Background(),
		domain:   ir.ContextItem,
		user:     c.User,
		target:   c.Target,
		random:   c.Random,
		archive:  c.Archive,
		item:     c.Item,
		quantity: c.Quantity,
	}
}

// DefaultNamespace prefixes switch, variable and timestamp keys written by
// Event extras.
const DefaultNamespace = "event:"

// EventContext is the capsule for Event evaluation. Entities are optional;
// Entity leaves without a target read as neutral values.
type EventContext struct {
	Action    Actor
	User      *Entity
	Target    *Entity
	Random    Random
	Clock     WallClock
	State     GameStateRepo
	Archive   AsyncArchive
	Namespace string
}

// ForUser returns a copy whose target is the user.
func (c *EventContext) ForUser() *EventContext {
	cp := *c
	cp.Target = c.User
	return &cp
}

// Swapped returns a copy with user and target exchanged.
func (c *EventContext) Swapped() *EventContext {
	cp := *c
	cp.User, cp.Target = c.Target, c.User
	return &cp
}

func (c *EventContext) frame(ctx context.Context) *frame {
	ns := c.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return &frame{
		ctx:       ctx,
		domain:    ir.ContextEvent,
		action:    c.Action,
		user:      c.User,
		target:    c.Target,
		random:    c.Random,
		clock:     c.Clock,
		state:     c.State,
		async:     c.Archive,
		namespace: ns,
	}
}

// frame is the evaluator's view of any context. All three public contexts
// lower into it; domain decides which leaves resolve.
type frame struct {
	ctx    context.Context
	domain ir.ContextDomain

	action       Actor
	user, target *Entity
	attack       *AttackResult
	random       Random
	clock        WallClock
	targets      int
	archive      Archive
	sink         *resultSink

	item     *ir.ItemData
	quantity int

	state     GameStateRepo
	async     AsyncArchive
	namespace string
}

func (f *frame) forUser() *frame {
	cp := *f
	cp.target = f.user
	return &cp
}

func (f *frame) swapped() *frame {
	cp := *f
	cp.user, cp.target = f.target, f.user
	return &cp
}

func (f *frame) actionBase() *Action {
	if f.action == nil {
		return nil
	}
	return f.action.base()
}

func (f *frame) record(r ActionResult) {
	if f.domain != ir.ContextCombat {
		return
	}
	if r.Action == "" {
		if a := f.actionBase(); a != nil {
			r.Action = a.Name
		}
	}
	if r.User == "" && f.user != nil {
		r.User = f.user.ID
	}
	f.sink.add(r)
}

func (f *frame) key(k string) string {
	return f.namespace + k
}
