package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/runebound/internal/engine"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_WolfBitesHero(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "wolf_bites_hero"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_MarshalCanonical(t *testing.T) {
	result := NewResult()
	result.BattleID = "b-1"
	result.AddStep(engine.Command{Type: engine.CommandTick, Entity: "hero"}, 1, nil)
	result.Entities = []EntitySnapshot{{ID: "hero", HP: 5, Effects: []EffectSnapshot{}, Shields: map[string]int{"ward": 2}}}

	data, err := NewTraceSnapshot("tiny", result).MarshalCanonical()
	require.NoError(t, err)

	want := `{"battle_id":"b-1","entities":[{"ap":0,"effects":[],"hp":5,"id":"hero","shields":{"ward":2},"sp":0}],` +
		`"scenario_name":"tiny","trace":[{"command":"tick","results":[],"seq":1,"user":"hero"}]}`
	assert.Equal(t, want, string(data))
}
