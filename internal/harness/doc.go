// Package harness runs battle scenarios against the rule engine.
//
// A scenario loads a content directory, builds a battle from entity
// descriptions, resolves a fixed list of commands through engine.Battle and
// asserts on the results it logged and the entities' final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: wolf_bites_hero
//	description: "Poison from a bite ticks twice and expires"
//	content: ../content
//	seed: 7
//	entities:
//	  - id: hero
//	    stats: { MaxHP: 100, MaxSP: 20 }
//	  - id: wolf
//	    template: wolf
//	steps:
//	  - cast: { user: wolf, skill: bite, targets: [hero] }
//	  - tick: { entity: hero }
//	  - item: { user: hero, item: potion }
//	assertions:
//	  - type: stat
//	    entity: hero
//	    stat: HP
//	    equals: 82
//	  - type: has_effect
//	    entity: hero
//	    effect: poison
//	    present: false
//	  - type: result_count
//	    kind: HPChange
//	    target: hero
//	    count: 3
//
// A random block with floats and ints replaces the seeded source with fixed
// draws; running out of draws fails the run.
//
// # Assertion Types
//
//   - stat: an entity's final stat (pools read current values)
//   - has_effect: an effect is attached, optionally at a tier, or absent
//   - result_count: the battle log holds exactly N results of a kind
//
// # Deterministic Testing
//
// Every run uses a fixed battle ID ("scenario-" + name), a wall clock
// stopped at the scenario's now, and either a seeded or a fixed random
// source, so traces are reproducible and can be compared against golden
// files with RunWithGolden.
package harness
