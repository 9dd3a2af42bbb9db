package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/store"
	"github.com/roach88/runebound/internal/testutil"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }

func TestRun_ContentScenarios(t *testing.T) {
	tests := []struct {
		name  string
		steps int
	}{
		{"wolf_bites_hero", 4},
		{"ward_absorbs_bite", 2},
		{"fanged_wolf", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := loadTestScenario(t, tt.name)

			result, err := Run(scenario)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Trace, tt.steps)
			assert.Equal(t, "scenario-"+tt.name, result.BattleID)
		})
	}
}

func TestRun_WardAbsorbsBite(t *testing.T) {
	result, err := Run(loadTestScenario(t, "ward_absorbs_bite"))
	require.NoError(t, err)

	bite := result.Trace[1]
	require.Len(t, bite.Results, 3)
	assert.Equal(t, engine.ActionResult{
		Kind: engine.ResultHPChange, Action: "bite", User: "wolf", Target: "hero", Delta: -2, Absorbed: 10,
	}, bite.Results[0])
	assert.Equal(t, engine.ActionResult{
		Kind: engine.ResultRemoveShield, Action: "bite", User: "wolf", Target: "hero", Name: "ward",
	}, bite.Results[1])
	assert.Equal(t, engine.ResultAttachEffect, bite.Results[2].Kind)

	require.Len(t, result.Entities, 2)
	hero := result.Entities[0]
	assert.Equal(t, "hero", hero.ID)
	assert.Empty(t, hero.Shields)
	assert.Equal(t, []EffectSnapshot{{Name: "poison", Tier: 1, Turns: 2}}, hero.Effects)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "wolf_bites_hero")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := NewTraceSnapshot(scenario.Name, first).MarshalCanonical()
	require.NoError(t, err)
	b, err := NewTraceSnapshot(scenario.Name, second).MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_WithoutContent(t *testing.T) {
	scenario := &Scenario{
		Name:        "bare",
		Description: "Entities built from inline stats only",
		Entities: []EntitySpec{
			{ID: "a", Stats: map[string]float64{"MaxHP": 30}},
		},
		Steps:      []Step{{Tick: &TickStep{Entity: "a"}}},
		Assertions: []Assertion{{Type: AssertStat, Entity: "a", Stat: "HP", Equals: ptr(30.0)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "tick", result.Trace[0].Command)
	assert.Empty(t, result.Trace[0].Results)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
}

func TestRun_FailingAssertionsAreReported(t *testing.T) {
	scenario := loadTestScenario(t, "wolf_bites_hero")
	scenario.Assertions = []Assertion{
		{Type: AssertStat, Entity: "hero", Stat: "HP", Equals: ptr(1.0)},
		{Type: AssertResultCount, Kind: "Miss", Count: 1},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "hero.HP = 1")
	assert.Contains(t, result.Errors[0], "hero.HP = 100")
	assert.Contains(t, result.Errors[1], "1 results of Miss")
}

func TestRun_UnknownSkillFails(t *testing.T) {
	scenario := loadTestScenario(t, "wolf_bites_hero")
	scenario.Entities[1].Skills = []string{"howl"}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.True(t, engine.IsUnknownContent(err))
	assert.Contains(t, err.Error(), `entity "wolf"`)
}

func TestRun_UnknownTemplateFails(t *testing.T) {
	scenario := loadTestScenario(t, "wolf_bites_hero")
	scenario.Entities[0].Template = "dragon"

	_, err := Run(scenario)
	require.Error(t, err)
	assert.True(t, engine.IsUnknownContent(err))
}

func TestRun_StepFailureStopsRun(t *testing.T) {
	scenario := loadTestScenario(t, "wolf_bites_hero")
	scenario.Steps = []Step{{Cast: &CastStep{User: "hero", Skill: "bite", Targets: []string{"wolf"}}}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0 (cast)")
}

func TestRun_ExhaustedFixedRandomPanics(t *testing.T) {
	scenario := loadTestScenario(t, "fanged_wolf")
	scenario.Random = &RandomSpec{}

	assert.Panics(t, func() {
		_, _ = Run(scenario)
	})
}

func TestRun_InlinePluginConsts(t *testing.T) {
	scenario := loadTestScenario(t, "fanged_wolf")
	scenario.Random = nil
	scenario.Entities[1].Plugin.Consts = map[string]int{"ATK": 50}
	scenario.Assertions = []Assertion{
		{Type: AssertStat, Entity: "wolf", Stat: "ATK", Equals: ptr(18.0)},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestNew_BuildsBattleWithoutSteps(t *testing.T) {
	h, err := New(context.Background(), loadTestScenario(t, "wolf_bites_hero"))
	require.NoError(t, err)

	assert.Equal(t, "scenario-wolf_bites_hero", h.Battle().ID())
	assert.Equal(t, int64(0), h.Battle().Seq())
	require.NotNil(t, h.Battle().Entity("hero"))
	assert.Equal(t, 100, h.Battle().Entity("hero").HP)

	_, ok := h.Archive().Skill("bite")
	assert.True(t, ok)
}

func TestNew_Options(t *testing.T) {
	ctx := context.Background()
	scenario := loadTestScenario(t, "wolf_bites_hero")
	log := store.NewMemoryState()

	h, err := New(ctx, scenario,
		WithBattleIDs(engine.NewFixedGenerator("custom")),
		WithResultWriter(log),
		WithWallClock(testutil.NewFixedWallClockUnix(42)),
	)
	require.NoError(t, err)
	assert.Equal(t, "custom", h.Battle().ID())

	for _, cmd := range Commands(scenario) {
		_, err := h.Battle().Resolve(ctx, cmd)
		require.NoError(t, err)
	}

	logged, err := log.ReadResults(ctx, "custom")
	require.NoError(t, err)
	assert.Len(t, logged, 5)

	internal, err := h.Log().ReadResults(ctx, "custom")
	require.NoError(t, err)
	assert.Empty(t, internal)
}

func TestCommands(t *testing.T) {
	cmds := Commands(loadTestScenario(t, "wolf_bites_hero"))
	require.Len(t, cmds, 4)
	assert.Equal(t, engine.Command{Type: engine.CommandCast, User: "wolf", Skill: "bite", Targets: []string{"hero"}}, cmds[0])
	assert.Equal(t, engine.Command{Type: engine.CommandTick, Entity: "hero"}, cmds[1])
	assert.Equal(t, engine.Command{Type: engine.CommandItem, User: "hero", Item: "potion"}, cmds[3])
}
