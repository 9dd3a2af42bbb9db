package harness

import (
	"context"
	"fmt"
	"maps"

	"github.com/roach88/runebound/internal/archive"
	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/ir"
	"github.com/roach88/runebound/internal/store"
	"github.com/roach88/runebound/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs one battle with a deterministic random source, a stopped wall
// clock and a fixed battle ID.
type Harness struct {
	archive *archive.Archive
	battle  *engine.Battle
	log     *store.MemoryState
	random  engine.Random
}

// Commands returns the scenario's steps as battle commands.
func Commands(scenario *Scenario) []engine.Command {
	cmds := make([]engine.Command, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cmds[i] = stepCommand(step)
	}
	return cmds
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory battle log for isolation.
//
// Execution flow:
// 1. Load the content directory into an archive (New)
// 2. Build the battle and its entities (New)
// 3. Resolve every step in order, recording the trace
// 4. Evaluate assertions against the trace, the log and the entities
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := New(ctx, scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.BattleID = h.battle.ID()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, e := range h.battle.Entities() {
		result.Entities = append(result.Entities, snapshotEntity(e))
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Battle:   h.battle,
		Log:      h.log,
		BattleID: h.battle.ID(),
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// Option overrides how New builds the battle.
type Option func(*setup)

type setup struct {
	ids    engine.BattleIDGenerator
	writer engine.ResultWriter
	wall   engine.WallClock
}

// WithBattleIDs replaces the fixed scenario-<name> battle ID.
func WithBattleIDs(ids engine.BattleIDGenerator) Option {
	return func(s *setup) { s.ids = ids }
}

// WithResultWriter sends the battle's results to w instead of the
// in-memory log.
func WithResultWriter(w engine.ResultWriter) Option {
	return func(s *setup) { s.writer = w }
}

// WithWallClock replaces the stopped clock at the scenario's now.
func WithWallClock(c engine.WallClock) Option {
	return func(s *setup) { s.wall = c }
}

// New loads the scenario's content and builds its battle and entities
// without resolving any step.
func New(ctx context.Context, scenario *Scenario, opts ...Option) (*Harness, error) {
	arc := archive.New(nil)
	if scenario.Content != "" {
		loaded, err := archive.Load(ctx, scenario.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		arc = loaded
	}

	var random engine.Random
	if scenario.Random != nil {
		random = testutil.NewFixedRandom(scenario.Random.Floats...).WithInts(scenario.Random.Ints...)
	} else {
		random = engine.NewRandom(scenario.Seed)
	}

	log := store.NewMemoryState()
	cfg := setup{
		ids:    engine.NewFixedGenerator("scenario-" + scenario.Name),
		writer: log,
		wall:   testutil.NewFixedWallClockUnix(scenario.Now),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	battle := engine.NewBattle(
		cfg.ids,
		random,
		engine.WithResultWriter(cfg.writer),
		engine.WithBattleWallClock(cfg.wall),
	)

	h := &Harness{archive: arc, battle: battle, log: log, random: random}
	for _, spec := range scenario.Entities {
		e, err := h.buildEntity(spec)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", spec.ID, err)
		}
		if err := battle.Add(e); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Battle returns the scenario's battle.
func (h *Harness) Battle() *engine.Battle { return h.battle }

// Archive returns the loaded content.
func (h *Harness) Archive() *archive.Archive { return h.archive }

// Random returns the battle's random source.
func (h *Harness) Random() engine.Random { return h.random }

// Log returns the in-memory battle log. It stays empty when WithResultWriter
// redirected the results.
func (h *Harness) Log() *store.MemoryState { return h.log }

// buildEntity merges spec over its template and instantiates it.
func (h *Harness) buildEntity(spec EntitySpec) (*engine.Entity, error) {
	data := &ir.EntityData{Key: spec.ID, Name: spec.ID}
	if spec.Template != "" {
		tmpl, ok := h.archive.Entity(spec.Template)
		if !ok {
			return nil, engine.NewUnknownContentError("entity", spec.Template)
		}
		cp := *tmpl
		cp.Stats = maps.Clone(tmpl.Stats)
		cp.StatsPerLevel = maps.Clone(tmpl.StatsPerLevel)
		cp.Skills = append([]string(nil), tmpl.Skills...)
		data = &cp
	}
	if spec.Path != "" {
		data.Path = spec.Path
	}
	if spec.Category != "" {
		data.Category = spec.Category
	}
	if len(spec.Stats) > 0 && data.Stats == nil {
		data.Stats = make(map[ir.Stat]float64, len(spec.Stats))
	}
	for name, v := range spec.Stats {
		data.Stats[ir.Stat(name)] = v
	}
	data.Skills = append(data.Skills, spec.Skills...)

	e := engine.NewEntity(spec.ID, data, spec.Level, h.archive)
	for _, name := range data.Skills {
		if e.Skill(name) == nil {
			return nil, engine.NewUnknownContentError("skill", name)
		}
	}

	if spec.Plugin != nil {
		pd, ok := h.archive.Plugin(spec.Plugin.Key)
		if !ok {
			return nil, engine.NewUnknownContentError("plugin", spec.Plugin.Key)
		}
		tier := max(spec.Plugin.Tier, 1)
		if spec.Plugin.Consts != nil {
			consts := make(map[ir.Stat]int, len(spec.Plugin.Consts))
			for name, v := range spec.Plugin.Consts {
				consts[ir.Stat(name)] = v
			}
			e.Plug(engine.NewPlugin(pd, tier, consts))
		} else {
			e.Plug(engine.RollPlugin(pd, tier, h.random))
		}
		// Const bonuses can raise the maxima.
		e.Refill()
	}
	return e, nil
}

// executeSteps resolves every step in order.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		cmd := stepCommand(step)
		results, err := h.battle.Resolve(ctx, cmd)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, cmd.Type, err)
		}
		result.AddStep(cmd, h.battle.Seq(), results)
	}
	return nil
}

func stepCommand(step Step) engine.Command {
	switch {
	case step.Cast != nil:
		return engine.Command{
			Type:    engine.CommandCast,
			User:    step.Cast.User,
			Skill:   step.Cast.Skill,
			Targets: step.Cast.Targets,
		}
	case step.Tick != nil:
		return engine.Command{Type: engine.CommandTick, Entity: step.Tick.Entity}
	default:
		return engine.Command{
			Type:     engine.CommandItem,
			User:     step.Item.User,
			Item:     step.Item.Item,
			Target:   step.Item.Target,
			Quantity: step.Item.Quantity,
		}
	}
}
