package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// ResultWriter persists the results of one resolved command.
// Implemented by store.BattleLog.
type ResultWriter interface {
	WriteResults(ctx context.Context, battleID string, seq int64, results []ActionResult) error
}

// Battle is the turn-resolution loop above the rule engine. It owns the
// entities of one battle and resolves commands one at a time, which is what
// makes unlocked entity mutation safe.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Resolve(): must not run concurrently with Run or another Resolve
type Battle struct {
	id       string
	random   Random
	clock    *Clock
	wall     WallClock
	log      ResultWriter
	queue    *commandQueue
	entities map[string]*Entity
	order    []string
}

// BattleOption configures a Battle.
type BattleOption func(*Battle)

// WithResultWriter persists every resolved command's results.
func WithResultWriter(w ResultWriter) BattleOption {
	return func(b *Battle) {
		b.log = w
	}
}

// WithBattleWallClock sets the clock read by Time leaves.
func WithBattleWallClock(c WallClock) BattleOption {
	return func(b *Battle) {
		b.wall = c
	}
}

// WithSequence resumes stamping from an existing clock.
func WithSequence(c *Clock) BattleOption {
	return func(b *Battle) {
		b.clock = c
	}
}

// NewBattle creates a battle with an ID from ids and the given random source.
func NewBattle(ids BattleIDGenerator, random Random, opts ...BattleOption) *Battle {
	b := &Battle{
		id:       ids.Generate(),
		random:   random,
		clock:    NewClock(),
		queue:    newCommandQueue(),
		entities: make(map[string]*Entity),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID returns the battle ID.
func (b *Battle) ID() string {
	return b.id
}

// Add registers an entity. Entities keep their insertion order.
func (b *Battle) Add(e *Entity) error {
	if _, ok := b.entities[e.ID]; ok {
		return fmt.Errorf("entity %q already in battle", e.ID)
	}
	b.entities[e.ID] = e
	b.order = append(b.order, e.ID)
	return nil
}

// Entity returns a registered entity, or nil.
func (b *Battle) Entity(id string) *Entity {
	return b.entities[id]
}

// Entities returns the registered entities in insertion order.
func (b *Battle) Entities() []*Entity {
	out := make([]*Entity, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.entities[id])
	}
	return out
}

// Seq returns the seq of the last resolved command.
func (b *Battle) Seq() int64 {
	return b.clock.Current()
}

// Enqueue submits a command to the Run loop.
// Returns false if the battle has been stopped.
func (b *Battle) Enqueue(c Command) bool {
	return b.queue.Enqueue(c)
}

// Stop closes the command queue; Run returns once it drains.
func (b *Battle) Stop() {
	b.queue.Close()
}

// Run resolves queued commands until the context is cancelled or Stop is
// called and the queue is empty.
//
// A failed command is logged and skipped; the loop keeps going so a bad
// command cannot stall the battle.
func (b *Battle) Run(ctx context.Context) error {
	slog.Info("battle starting", "battle", b.id, "entities", len(b.order))

	for {
		cmd, ok := b.queue.TryDequeue()
		if ok {
			if _, err := b.Resolve(ctx, cmd); err != nil {
				slog.Error("command failed",
					"battle", b.id,
					"command", cmd.Type.String(),
					"user", cmd.User,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("battle stopping: context cancelled", "battle", b.id)
			b.queue.Close()
			return ctx.Err()

		case _, open := <-b.queue.Wait():
			if !open && b.queue.Len() == 0 {
				slog.Info("battle stopping: queue closed", "battle", b.id)
				return nil
			}
		}
	}
}

// Resolve executes one command, stamps it with the next seq and writes its
// results to the result writer.
func (b *Battle) Resolve(ctx context.Context, cmd Command) ([]ActionResult, error) {
	var (
		results []ActionResult
		err     error
	)
	switch cmd.Type {
	case CommandCast:
		results, err = b.cast(cmd)
	case CommandTick:
		results, err = b.tick(cmd)
	case CommandItem:
		err = b.useItem(cmd)
	default:
		err = fmt.Errorf("unknown command type: %d", cmd.Type)
	}
	if err != nil {
		return nil, err
	}

	seq := b.clock.Next()
	slog.Debug("command resolved",
		"battle", b.id,
		"seq", seq,
		"command", cmd.Type.String(),
		"results", len(results),
	)
	if b.log != nil {
		if err := b.log.WriteResults(ctx, b.id, seq, results); err != nil {
			return results, fmt.Errorf("write results seq=%d: %w", seq, err)
		}
	}
	return results, nil
}

func (b *Battle) lookup(id string) (*Entity, error) {
	e, ok := b.entities[id]
	if !ok {
		return nil, NewUnknownContentError("entity", id)
	}
	return e, nil
}

// cast invokes a skill. A frozen caster loses the action.
func (b *Battle) cast(cmd Command) ([]ActionResult, error) {
	user, err := b.lookup(cmd.User)
	if err != nil {
		return nil, err
	}
	skill := user.Skill(cmd.Skill)
	if skill == nil {
		return nil, NewUnknownContentError("skill", cmd.Skill)
	}
	targets := make([]*Entity, 0, len(cmd.Targets))
	for _, id := range cmd.Targets {
		t, err := b.lookup(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if user.IsFrozen() {
		slog.Debug("caster frozen, action skipped", "battle", b.id, "user", user.ID)
		return nil, nil
	}
	return skill.InvokeOn(targets, b.random, b.applyOptions()...), nil
}

// tick applies the entity's effects, then ages its shields.
func (b *Battle) tick(cmd Command) ([]ActionResult, error) {
	e, err := b.lookup(cmd.Entity)
	if err != nil {
		return nil, err
	}
	results := e.TickEffects(b.random, b.applyOptions()...)
	return append(results, e.TickShields()...), nil
}

func (b *Battle) useItem(cmd Command) error {
	user, err := b.lookup(cmd.User)
	if err != nil {
		return err
	}
	target := user
	if cmd.Target != "" {
		if target, err = b.lookup(cmd.Target); err != nil {
			return err
		}
	}
	if user.Archive() == nil {
		return NewUnknownContentError("item", cmd.Item)
	}
	item, ok := user.Archive().Item(cmd.Item)
	if !ok {
		return NewUnknownContentError("item", cmd.Item)
	}
	qty := max(cmd.Quantity, 1)
	if !user.UseItem(item, qty, target, b.random) {
		slog.Debug("item not usable", "battle", b.id, "item", cmd.Item, "user", user.ID)
	}
	return nil
}

func (b *Battle) applyOptions() []ApplyOption {
	if b.wall == nil {
		return nil
	}
	return []ApplyOption{WithWallClock(b.wall)}
}
