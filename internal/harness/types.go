package harness

import "github.com/roach88/runebound/internal/engine"

// TraceEvent records one resolved battle command and its results.
type TraceEvent struct {
	Seq     int64                 `json:"seq"`
	Command string                `json:"command"`
	User    string                `json:"user,omitempty"`
	Skill   string                `json:"skill,omitempty"`
	Item    string                `json:"item,omitempty"`
	Targets []string              `json:"targets,omitempty"`
	Results []engine.ActionResult `json:"results"`
}

// EffectSnapshot is an attached effect at the end of a scenario.
type EffectSnapshot struct {
	Name  string `json:"name"`
	Tier  int    `json:"tier"`
	Turns int    `json:"turns"`
}

// EntitySnapshot is an entity's pools and attachments at the end of a scenario.
type EntitySnapshot struct {
	ID      string           `json:"id"`
	HP      int              `json:"hp"`
	SP      int              `json:"sp"`
	AP      int              `json:"ap"`
	Effects []EffectSnapshot `json:"effects"`
	Shields map[string]int   `json:"shields"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// BattleID is the ID results were logged under.
	BattleID string `json:"battle_id"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Entities snapshots every entity after the last step, in battle order.
	Entities []EntitySnapshot `json:"entities"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a resolved command to the trace.
func (r *Result) AddStep(cmd engine.Command, seq int64, results []engine.ActionResult) {
	ev := TraceEvent{
		Seq:     seq,
		Command: cmd.Type.String(),
		User:    cmd.User,
		Skill:   cmd.Skill,
		Item:    cmd.Item,
		Targets: cmd.Targets,
		Results: results,
	}
	switch cmd.Type {
	case engine.CommandTick:
		ev.User = cmd.Entity
	case engine.CommandItem:
		if cmd.Target != "" {
			ev.Targets = []string{cmd.Target}
		}
	}
	if ev.Results == nil {
		ev.Results = []engine.ActionResult{}
	}
	r.Trace = append(r.Trace, ev)
}

// snapshotEntity captures e's end state.
func snapshotEntity(e *engine.Entity) EntitySnapshot {
	s := EntitySnapshot{
		ID:      e.ID,
		HP:      e.HP,
		SP:      e.SP,
		AP:      e.AP,
		Effects: make([]EffectSnapshot, 0, len(e.Effects)),
		Shields: make(map[string]int, len(e.Shields)),
	}
	for _, eff := range e.Effects {
		s.Effects = append(s.Effects, EffectSnapshot{Name: eff.Name, Tier: eff.Tier, Turns: eff.TurnsLeft})
	}
	for k, sh := range e.Shields {
		s.Shields[k] = sh.Value
	}
	return s
}
