package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// FunctionTarget describes who a skill may be aimed at.
type FunctionTarget string

const (
	TargetSelf       FunctionTarget = "self"
	TargetEnemy      FunctionTarget = "enemy"
	TargetAllEnemies FunctionTarget = "all_enemies"
	TargetAlly       FunctionTarget = "ally"
	TargetAllAllies  FunctionTarget = "all_allies"
)

// ValidTargets defines allowed skill targets.
var ValidTargets = map[FunctionTarget]bool{
	TargetSelf:       true,
	TargetEnemy:      true,
	TargetAllEnemies: true,
	TargetAlly:       true,
	TargetAllAllies:  true,
}

// EffectData is the static template an AttachEffect instantiates.
type EffectData struct {
	Name        string
	Abbr        string
	Category    string
	IsDebuff    bool
	IsStackable bool
	IsRemovable bool
	IsFreeze    bool
	// Modifiers are stat deltas, evaluated once when the effect is attached.
	Modifiers map[Stat]Value
	// Extra runs on every tick; nil means no per-turn action.
	Extra Extra
}

// SkillData is the static description a Skill is generated from.
type SkillData struct {
	Name         string
	Category     string
	Target       FunctionTarget
	Bullseye     bool
	BasePower    int
	PowerGrowth  int
	BaseSPCost   int
	SPCostGrowth int
	// Growth holds the level thresholds; tier = 1 + count(threshold <= level).
	Growth      []int
	AttackTimes Value
	Extra       Extra
}

// MaxTier is the highest tier the growth table declares.
func (s SkillData) MaxTier() int {
	return len(s.Growth) + 1
}

// TierFor returns the tier reached at level.
func (s SkillData) TierFor(level int) int {
	return TierFor(level, s.Growth)
}

// TierFor returns 1 plus the number of thresholds at or below level.
func TierFor(level int, growth []int) int {
	tier := 1
	for _, threshold := range growth {
		if threshold <= level {
			tier++
		}
	}
	return tier
}

// PluginData is the static description of an entity plugin.
type PluginData struct {
	Key   string
	Path  string
	Tiers int
	// Consts maps a stat to the inclusive percentage range rolled per tier.
	// The rolled value is multiplied by the plugin tier.
	Consts           map[Stat]IntRange
	OnAttack         Extra
	OnDefend         Extra
	AttackRateOffset Value
	DefendRateOffset Value
}

// ItemData describes a usable item.
type ItemData struct {
	Key        string
	Name       string
	Tier       int
	Consumable bool
	Usable     Condition
	Extra      Extra
}

// QuestData describes a quest for Event-domain predicates.
type QuestData struct {
	Key              string
	Title            string
	CompletionSwitch string
}

// EntityData is the static template entities are generated from.
type EntityData struct {
	Key       string
	Name      string
	Path      string
	Category  string
	Category2 string
	// Stats are level-1 base values; StatsPerLevel is added per level above 1.
	Stats         map[Stat]float64
	StatsPerLevel map[Stat]float64
	Skills        []string
}

// =============================================================================
// Decoding
// =============================================================================

// rawRecord reads the fields of one content record and tracks unknown keys,
// mirroring the expression decoder.
type rawRecord struct {
	path string
	raw  map[string]json.RawMessage
	used map[string]bool
	errs []ValidationError
}

func newRawRecord(path string, data []byte) (*rawRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ValidationError{Field: path, Message: err.Error()}
	}
	return &rawRecord{path: path, raw: raw, used: make(map[string]bool)}, nil
}

func (r *rawRecord) addErr(key string, msg string) {
	r.errs = append(r.errs, ValidationError{Field: join(r.path, key), Message: msg})
}

func (r *rawRecord) addDecodeErr(err error) {
	var ve ValidationError
	if e, ok := err.(ValidationError); ok {
		ve = e
	} else {
		ve = ValidationError{Field: r.path, Message: err.Error()}
	}
	r.errs = append(r.errs, ve)
}

func (r *rawRecord) get(key string) (json.RawMessage, bool) {
	r.used[key] = true
	raw, ok := r.raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func (r *rawRecord) scalar(key string, dst any) {
	raw, ok := r.get(key)
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.addErr(key, fmt.Sprintf("invalid %s: %v", key, err))
	}
}

func (r *rawRecord) value(key string) Value {
	raw, ok := r.get(key)
	if !ok {
		return nil
	}
	v, err := decodeValue(join(r.path, key), raw)
	if err != nil {
		r.addDecodeErr(err)
	}
	return v
}

func (r *rawRecord) condition(key string) Condition {
	raw, ok := r.get(key)
	if !ok {
		return nil
	}
	c, err := decodeCondition(join(r.path, key), raw)
	if err != nil {
		r.addDecodeErr(err)
	}
	return c
}

func (r *rawRecord) extra(key string) Extra {
	raw, ok := r.get(key)
	if !ok {
		return nil
	}
	x, err := decodeExtra(join(r.path, key), raw)
	if err != nil {
		r.addDecodeErr(err)
	}
	return x
}

func (r *rawRecord) statValues(key string) map[Stat]Value {
	raw, ok := r.get(key)
	if !ok {
		return nil
	}
	var items map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		r.addErr(key, "must be an object")
		return nil
	}
	out := make(map[Stat]Value, len(items))
	for _, name := range sortedRawKeys(items) {
		v, err := decodeValue(join(join(r.path, key), name), items[name])
		if err != nil {
			r.addDecodeErr(err)
			continue
		}
		out[Stat(name)] = v
	}
	return out
}

// finish reports unknown fields and returns all collected errors.
func (r *rawRecord) finish() error {
	for _, k := range sortedRawKeys(r.raw) {
		if !r.used[k] {
			r.addErr(k, "unknown field")
		}
	}
	if len(r.errs) == 0 {
		return nil
	}
	return ValidationErrors(r.errs)
}

func sortedRawKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidationErrors aggregates construction-time errors.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	switch len(es) {
	case 0:
		return "no errors"
	case 1:
		return es[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", es[0].Error(), len(es)-1)
	}
}

// DecodeEffect decodes an effect record keyed by name.
func DecodeEffect(name string, data []byte) (*EffectData, error) {
	r, err := newRawRecord("effect."+name, data)
	if err != nil {
		return nil, err
	}
	e := &EffectData{Name: name, IsRemovable: true}
	r.scalar("abbr", &e.Abbr)
	r.scalar("category", &e.Category)
	r.scalar("is_debuff", &e.IsDebuff)
	r.scalar("is_stackable", &e.IsStackable)
	r.scalar("is_removable", &e.IsRemovable)
	r.scalar("is_freeze", &e.IsFreeze)
	e.Modifiers = r.statValues("modifiers")
	e.Extra = r.extra("extra")
	if err := r.finish(); err != nil {
		return nil, err
	}
	if errs := e.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return e, nil
}

// DecodeSkill decodes a skill record keyed by name.
func DecodeSkill(name string, data []byte) (*SkillData, error) {
	r, err := newRawRecord("skill."+name, data)
	if err != nil {
		return nil, err
	}
	s := &SkillData{Name: name, Target: TargetEnemy}
	var target string
	r.scalar("category", &s.Category)
	r.scalar("target", &target)
	r.scalar("bullseye", &s.Bullseye)
	r.scalar("base_power", &s.BasePower)
	r.scalar("power_growth", &s.PowerGrowth)
	r.scalar("base_sp_cost", &s.BaseSPCost)
	r.scalar("sp_cost_growth", &s.SPCostGrowth)
	r.scalar("growth", &s.Growth)
	s.AttackTimes = r.value("attack_times")
	s.Extra = r.extra("extra")
	if target != "" {
		s.Target = FunctionTarget(target)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	if errs := s.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return s, nil
}

// DecodePlugin decodes a plugin record keyed by key.
func DecodePlugin(key string, data []byte) (*PluginData, error) {
	r, err := newRawRecord("plugin."+key, data)
	if err != nil {
		return nil, err
	}
	p := &PluginData{Key: key, Tiers: 1}
	var consts map[string]IntRange
	r.scalar("path", &p.Path)
	r.scalar("tiers", &p.Tiers)
	r.scalar("consts", &consts)
	p.OnAttack = r.extra("on_attack")
	p.OnDefend = r.extra("on_defend")
	p.AttackRateOffset = r.value("attack_rate_offset")
	p.DefendRateOffset = r.value("defend_rate_offset")
	if len(consts) > 0 {
		p.Consts = make(map[Stat]IntRange, len(consts))
		for stat, rng := range consts {
			p.Consts[Stat(stat)] = rng
		}
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	if errs := p.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return p, nil
}

// DecodeItem decodes an item record keyed by key.
func DecodeItem(key string, data []byte) (*ItemData, error) {
	r, err := newRawRecord("item."+key, data)
	if err != nil {
		return nil, err
	}
	it := &ItemData{Key: key, Name: key, Tier: 1}
	r.scalar("name", &it.Name)
	r.scalar("tier", &it.Tier)
	r.scalar("consumable", &it.Consumable)
	it.Usable = r.condition("usable")
	it.Extra = r.extra("extra")
	if err := r.finish(); err != nil {
		return nil, err
	}
	if errs := it.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return it, nil
}

// DecodeQuest decodes a quest record keyed by key.
func DecodeQuest(key string, data []byte) (*QuestData, error) {
	r, err := newRawRecord("quest."+key, data)
	if err != nil {
		return nil, err
	}
	q := &QuestData{Key: key}
	r.scalar("title", &q.Title)
	r.scalar("completion_switch", &q.CompletionSwitch)
	if err := r.finish(); err != nil {
		return nil, err
	}
	if errs := q.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return q, nil
}

// DecodeEntity decodes an entity template keyed by key.
func DecodeEntity(key string, data []byte) (*EntityData, error) {
	r, err := newRawRecord("entity."+key, data)
	if err != nil {
		return nil, err
	}
	e := &EntityData{Key: key, Name: key}
	var stats, perLevel map[string]float64
	r.scalar("name", &e.Name)
	r.scalar("path", &e.Path)
	r.scalar("category", &e.Category)
	r.scalar("category2", &e.Category2)
	r.scalar("stats", &stats)
	r.scalar("stats_per_level", &perLevel)
	r.scalar("skills", &e.Skills)
	e.Stats = toStatMap(stats)
	e.StatsPerLevel = toStatMap(perLevel)
	if err := r.finish(); err != nil {
		return nil, err
	}
	if errs := e.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return e, nil
}

func toStatMap(m map[string]float64) map[Stat]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[Stat]float64, len(m))
	for k, v := range m {
		out[Stat(k)] = v
	}
	return out
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks EffectData against schema rules.
// Returns all errors (not fail-fast).
func (e *EffectData) Validate() []ValidationError {
	var errs []ValidationError
	if e.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required"})
	}
	for stat := range e.Modifiers {
		if !stat.IsModifiable() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("effect.%s.modifiers.%s", e.Name, stat),
				Message: "stat cannot be modified by effects",
			})
		}
	}
	return errs
}

// Validate checks SkillData against schema rules.
func (s *SkillData) Validate() []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("skill.%s.%s", s.Name, name) }

	if s.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required"})
	}
	if !ValidTargets[s.Target] {
		errs = append(errs, ValidationError{Field: field("target"), Message: fmt.Sprintf("invalid target %q", s.Target)})
	}
	if s.Extra == nil {
		errs = append(errs, ValidationError{Field: field("extra"), Message: "is required"})
	}
	if s.BaseSPCost < 0 {
		errs = append(errs, ValidationError{Field: field("base_sp_cost"), Message: "must not be negative"})
	}
	prev := 0
	for i, threshold := range s.Growth {
		if threshold < 1 {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s[%d]", field("growth"), i), Message: "threshold must be at least 1"})
		}
		if threshold <= prev {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s[%d]", field("growth"), i), Message: "thresholds must be strictly ascending"})
		}
		prev = threshold
	}
	return errs
}

// Validate checks PluginData against schema rules.
func (p *PluginData) Validate() []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("plugin.%s.%s", p.Key, name) }

	if p.Key == "" {
		errs = append(errs, ValidationError{Field: "key", Message: "is required"})
	}
	if p.Path == "" {
		errs = append(errs, ValidationError{Field: field("path"), Message: "is required"})
	}
	if p.Tiers < 1 {
		errs = append(errs, ValidationError{Field: field("tiers"), Message: "must be at least 1"})
	}
	for stat, rng := range p.Consts {
		if !stat.IsModifiable() {
			errs = append(errs, ValidationError{Field: field("consts." + string(stat)), Message: "stat cannot be modified by plugins"})
		}
		if rng.Max < rng.Min {
			errs = append(errs, ValidationError{Field: field("consts." + string(stat)), Message: "max must not be below min"})
		}
	}
	return errs
}

// Validate checks ItemData against schema rules.
func (it *ItemData) Validate() []ValidationError {
	var errs []ValidationError
	if it.Key == "" {
		errs = append(errs, ValidationError{Field: "key", Message: "is required"})
	}
	if it.Tier < 1 {
		errs = append(errs, ValidationError{Field: fmt.Sprintf("item.%s.tier", it.Key), Message: "must be at least 1"})
	}
	if it.Extra == nil {
		errs = append(errs, ValidationError{Field: fmt.Sprintf("item.%s.extra", it.Key), Message: "is required"})
	}
	return errs
}

// Validate checks QuestData against schema rules.
func (q *QuestData) Validate() []ValidationError {
	var errs []ValidationError
	if q.Key == "" {
		errs = append(errs, ValidationError{Field: "key", Message: "is required"})
	}
	if q.CompletionSwitch == "" {
		errs = append(errs, ValidationError{Field: fmt.Sprintf("quest.%s.completion_switch", q.Key), Message: "is required"})
	}
	return errs
}

// Validate checks EntityData against schema rules.
func (e *EntityData) Validate() []ValidationError {
	var errs []ValidationError
	if e.Key == "" {
		errs = append(errs, ValidationError{Field: "key", Message: "is required"})
	}
	for _, m := range []map[Stat]float64{e.Stats, e.StatsPerLevel} {
		for stat := range m {
			if !ValidStats[stat] || stat == StatLevel {
				errs = append(errs, ValidationError{Field: fmt.Sprintf("entity.%s.stats.%s", e.Key, stat), Message: "unknown stat"})
			}
		}
	}
	return errs
}
