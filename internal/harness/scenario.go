package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a battle scenario.
// Scenarios build a battle from content, resolve a fixed list of commands
// and assert on the resulting trace and final entity state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Content is the content directory loaded into the archive.
	// Relative paths are resolved against the scenario file location.
	// Empty means the battle runs without an archive.
	Content string `yaml:"content,omitempty"`

	// Seed seeds the battle's random source. Ignored when Random is set.
	Seed uint64 `yaml:"seed,omitempty"`

	// Random replaces the seeded source with fixed draws.
	Random *RandomSpec `yaml:"random,omitempty"`

	// Now is the unix second the wall clock is stopped at.
	Now int64 `yaml:"now,omitempty"`

	// Entities are added to the battle in order.
	Entities []EntitySpec `yaml:"entities"`

	// Steps are resolved in order, one battle command each.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and entity state.
	// Supported types: stat, has_effect, result_count
	Assertions []Assertion `yaml:"assertions"`
}

// RandomSpec lists the draws a fixed random source replays.
type RandomSpec struct {
	Floats []float64 `yaml:"floats,omitempty"`
	Ints   []int     `yaml:"ints,omitempty"`
}

// EntitySpec describes one combatant.
// Fields left empty fall back to the named template, if any.
type EntitySpec struct {
	ID       string `yaml:"id"`
	Template string `yaml:"template,omitempty"`
	Level    int    `yaml:"level,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Category string `yaml:"category,omitempty"`

	// Stats override the template's level-1 stats by name (e.g. MaxHP, ATK).
	Stats map[string]float64 `yaml:"stats,omitempty"`

	// Skills are added to the template's skills.
	Skills []string `yaml:"skills,omitempty"`

	Plugin *PluginSpec `yaml:"plugin,omitempty"`
}

// PluginSpec plugs an archived plugin into an entity.
// Without Consts the plugin's ranges are rolled from the battle random.
type PluginSpec struct {
	Key    string         `yaml:"key"`
	Tier   int            `yaml:"tier,omitempty"`
	Consts map[string]int `yaml:"consts,omitempty"`
}

// Step is one battle command. Exactly one field must be set.
type Step struct {
	Cast *CastStep `yaml:"cast,omitempty"`
	Tick *TickStep `yaml:"tick,omitempty"`
	Item *ItemStep `yaml:"item,omitempty"`
}

// CastStep casts User's skill on Targets.
type CastStep struct {
	User    string   `yaml:"user"`
	Skill   string   `yaml:"skill"`
	Targets []string `yaml:"targets"`
}

// TickStep ticks the effects and shields of Entity.
type TickStep struct {
	Entity string `yaml:"entity"`
}

// ItemStep uses Item from User on Target. An empty Target means User.
type ItemStep struct {
	User     string `yaml:"user"`
	Item     string `yaml:"item"`
	Target   string `yaml:"target,omitempty"`
	Quantity int    `yaml:"quantity,omitempty"`
}

// Assertion validates the trace or final entity state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "stat": Entity's Stat equals Equals
	// - "has_effect": Entity carries (or, with present: false, lacks) Effect
	// - "result_count": the battle log holds Count results of Kind
	Type string `yaml:"type"`

	// Entity is the entity ID (used by stat, has_effect).
	Entity string `yaml:"entity,omitempty"`

	// Stat is a stat name such as HP or ATK (used by stat).
	Stat string `yaml:"stat,omitempty"`

	// Equals is the expected stat value (used by stat).
	Equals *float64 `yaml:"equals,omitempty"`

	// Effect is the effect name (used by has_effect).
	Effect string `yaml:"effect,omitempty"`

	// Present defaults to true (used by has_effect).
	Present *bool `yaml:"present,omitempty"`

	// Tier, when non-zero, must match the attached effect's tier (used by has_effect).
	Tier int `yaml:"tier,omitempty"`

	// Kind is the result kind, e.g. HPChange (used by result_count).
	Kind string `yaml:"kind,omitempty"`

	// Target and Name narrow the counted results (used by result_count).
	Target string `yaml:"target,omitempty"`
	Name   string `yaml:"name,omitempty"`

	// Count is the expected number of matching results (used by result_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStat        = "stat"
	AssertHasEffect   = "has_effect"
	AssertResultCount = "result_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative content directory is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Content != "" && !filepath.IsAbs(scenario.Content) {
		scenario.Content = filepath.Join(filepath.Dir(path), scenario.Content)
	}
	if scenario.Content != "" {
		if _, err := os.Stat(scenario.Content); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: content directory not found: %s", scenario.Content)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Entities) == 0 {
		return fmt.Errorf("entities list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	ids := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		if e.ID == "" {
			return fmt.Errorf("entities[%d]: id is required", i)
		}
		if ids[e.ID] {
			return fmt.Errorf("entities[%d]: duplicate id %q", i, e.ID)
		}
		ids[e.ID] = true
		if e.Plugin != nil && e.Plugin.Key == "" {
			return fmt.Errorf("entities[%d].plugin: key is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step, ids); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one command is set and that it names
// known entities.
func validateStep(index int, step Step, ids map[string]bool) error {
	set := 0
	var refs []string
	if step.Cast != nil {
		set++
		if step.Cast.Skill == "" {
			return fmt.Errorf("steps[%d].cast: skill is required", index)
		}
		if len(step.Cast.Targets) == 0 {
			return fmt.Errorf("steps[%d].cast: targets is required", index)
		}
		refs = append(refs, step.Cast.User)
		refs = append(refs, step.Cast.Targets...)
	}
	if step.Tick != nil {
		set++
		refs = append(refs, step.Tick.Entity)
	}
	if step.Item != nil {
		set++
		if step.Item.Item == "" {
			return fmt.Errorf("steps[%d].item: item is required", index)
		}
		refs = append(refs, step.Item.User)
		if step.Item.Target != "" {
			refs = append(refs, step.Item.Target)
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of cast, tick, item is required", index)
	}
	for _, id := range refs {
		if !ids[id] {
			return fmt.Errorf("steps[%d]: unknown entity %q", index, id)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStat:
		if a.Entity == "" {
			return fmt.Errorf("assertions[%d]: stat requires 'entity' field", index)
		}
		if a.Stat == "" {
			return fmt.Errorf("assertions[%d]: stat requires 'stat' field", index)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: stat requires 'equals' field", index)
		}

	case AssertHasEffect:
		if a.Entity == "" {
			return fmt.Errorf("assertions[%d]: has_effect requires 'entity' field", index)
		}
		if a.Effect == "" {
			return fmt.Errorf("assertions[%d]: has_effect requires 'effect' field", index)
		}

	case AssertResultCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: result_count requires 'kind' field", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: result_count requires non-negative 'count' field", index)
		}

	default:
		return fmt.Errorf("assertions[%d]: unknown type %q (valid: stat, has_effect, result_count)", index, a.Type)
	}

	return nil
}
