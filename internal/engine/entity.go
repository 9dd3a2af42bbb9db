package engine

import (
	"log/slog"
	"math"
	"slices"

	"github.com/roach88/runebound/internal/ir"
)

// Entity is a combatant. Pools (HP, SP, AP) are mutated in place by extras;
// derived stats come from the stat pipeline:
//
//	unplugged = base + per-level growth + Σ effect modifiers
//	final     = plugin overlay applied to unplugged
//
// The engine assumes at most one evaluation touches an entity at a time.
type Entity struct {
	ID        string
	Name      string
	Path      string
	Category  string
	Category2 string
	Level     int

	HP int
	SP int
	AP int

	Effects []*Effect
	Shields map[string]*Shield
	Skills  []*Skill

	base    map[ir.Stat]float64
	plugin  *Plugin
	archive Archive
}

// NewEntity builds an entity from its template at level. Skills named by
// the template are resolved through archive; unknown skills are skipped.
// Pools start full.
func NewEntity(id string, data *ir.EntityData, level int, archive Archive) *Entity {
	level = max(level, 1)
	e := &Entity{
		ID:        id,
		Name:      data.Name,
		Path:      data.Path,
		Category:  data.Category,
		Category2: data.Category2,
		Level:     level,
		Shields:   make(map[string]*Shield),
		base:      make(map[ir.Stat]float64),
		archive:   archive,
	}
	for stat, v := range data.Stats {
		e.base[stat] = v + data.StatsPerLevel[stat]*float64(level-1)
	}
	for stat, v := range data.StatsPerLevel {
		if _, ok := data.Stats[stat]; !ok {
			e.base[stat] = v * float64(level-1)
		}
	}
	if archive != nil {
		for _, name := range data.Skills {
			sd, ok := archive.Skill(name)
			if !ok {
				slog.Debug("skill not in archive, skipping", "entity", id, "skill", name)
				continue
			}
			e.Skills = append(e.Skills, NewSkill(sd, e))
		}
	}
	e.Refill()
	return e
}

// Refill sets HP, SP and AP to their maxima.
func (e *Entity) Refill() {
	e.HP = e.MaxHP()
	e.SP = e.MaxSP()
	e.AP = e.MaxAP()
}

// Archive returns the content archive the entity was built with.
func (e *Entity) Archive() Archive {
	return e.archive
}

// SetBase overrides a base stat. Pools are not refilled.
func (e *Entity) SetBase(stat ir.Stat, v float64) {
	if e.base == nil {
		e.base = make(map[ir.Stat]float64)
	}
	e.base[stat] = v
}

// Skill returns the entity's skill with the given name.
func (e *Entity) Skill(name string) *Skill {
	for _, s := range e.Skills {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Stat returns the final value of a stat, plugin overlay included.
func (e *Entity) Stat(s ir.Stat) float64 {
	switch s {
	case ir.StatHP:
		return float64(e.HP)
	case ir.StatSP:
		return float64(e.SP)
	case ir.StatAP:
		return float64(e.AP)
	case ir.StatLevel:
		return float64(e.Level)
	}
	v := e.Unplugged(s)
	if e.plugin == nil {
		return v
	}
	pct, ok := e.plugin.Consts[s]
	if !ok {
		return v
	}
	if s.IsRate() {
		return v + float64(pct)/100
	}
	return math.Floor(v * (1 + float64(pct)/100))
}

// Unplugged returns base plus effect modifiers, ignoring the plugin.
func (e *Entity) Unplugged(s ir.Stat) float64 {
	v := e.base[s]
	for _, eff := range e.Effects {
		v += eff.Modifiers[s]
	}
	return v
}

func (e *Entity) MaxHP() int { return int(e.Stat(ir.StatMaxHP)) }
func (e *Entity) MaxSP() int { return int(e.Stat(ir.StatMaxSP)) }
func (e *Entity) MaxAP() int { return int(e.Stat(ir.StatMaxAP)) }

func (e *Entity) IsAlive() bool { return e.HP > 0 }

// IsFrozen reports whether any attached effect freezes the entity.
func (e *Entity) IsFrozen() bool {
	return slices.ContainsFunc(e.Effects, func(eff *Effect) bool { return eff.IsFreeze })
}

func (e *Entity) HasCategory(c string) bool {
	return c != "" && (e.Category == c || e.Category2 == c)
}

func (e *Entity) HasEffect(name string) bool {
	return slices.ContainsFunc(e.Effects, func(eff *Effect) bool { return eff.Name == name })
}

func (e *Entity) HasShield(key string) bool {
	_, ok := e.Shields[key]
	return ok
}

// EffectNamed returns the greatest attached effect with the given name.
func (e *Entity) EffectNamed(name string) *Effect {
	var best *Effect
	for _, eff := range e.Effects {
		if eff.Name != name {
			continue
		}
		if best == nil || MustCompareEffects(eff, best) > 0 {
			best = eff
		}
	}
	return best
}

// CountEffects counts attached buffs and/or debuffs.
func (e *Entity) CountEffects(buff, debuff bool) int {
	n := 0
	for _, eff := range e.Effects {
		if (eff.IsDebuff && debuff) || (!eff.IsDebuff && buff) {
			n++
		}
	}
	return n
}

// ShieldTotal sums the value of every shield.
func (e *Entity) ShieldTotal() int {
	total := 0
	for _, s := range e.Shields {
		total += s.Value
	}
	return total
}

// ShieldKeys returns shield keys in absorption order.
func (e *Entity) ShieldKeys() []string {
	keys := make([]string, 0, len(e.Shields))
	for k := range e.Shields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func rate(cur, maxVal int) float64 {
	if maxVal <= 0 {
		return 0
	}
	return float64(cur) / float64(maxVal)
}

func (e *Entity) HPRate() float64 { return rate(e.HP, e.MaxHP()) }
func (e *Entity) SPRate() float64 { return rate(e.SP, e.MaxSP()) }
func (e *Entity) APRate() float64 { return rate(e.AP, e.MaxAP()) }

// hpChange is the outcome of one HP change.
type hpChange struct {
	applied  int
	absorbed int
	broken   []string
}

// changeHP applies delta. Losses drain shields in key order first unless
// pierce is set; shields drained to zero are removed. HP is clamped into
// [0, MaxHP].
func (e *Entity) changeHP(delta int, pierce bool) hpChange {
	var out hpChange
	if delta < 0 && !pierce {
		loss := -delta
		for _, k := range e.ShieldKeys() {
			if loss == 0 {
				break
			}
			s := e.Shields[k]
			took := s.absorb(loss)
			out.absorbed += took
			loss -= took
			if s.Value <= 0 {
				delete(e.Shields, k)
				out.broken = append(out.broken, k)
			}
		}
		delta = -loss
	}
	before := e.HP
	e.HP = clampInt(e.HP+delta, 0, e.MaxHP())
	out.applied = e.HP - before
	return out
}

// changeSP applies delta clamped into [0, MaxSP].
func (e *Entity) changeSP(delta int) int {
	before := e.SP
	e.SP = clampInt(e.SP+delta, 0, e.MaxSP())
	return e.SP - before
}

// changeAP applies delta without clamping.
func (e *Entity) changeAP(delta int) int {
	e.AP += delta
	return delta
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}

// attachEffect installs eff. A stackable effect is appended. A non-stackable
// effect replaces an attached one of the same name only when it orders
// greater; otherwise it is dropped. Reports whether eff was installed.
func (e *Entity) attachEffect(eff *Effect) bool {
	if !eff.IsStackable {
		for i, cur := range e.Effects {
			if cur.Name != eff.Name {
				continue
			}
			if MustCompareEffects(eff, cur) <= 0 {
				return false
			}
			e.Effects[i] = eff
			return true
		}
	}
	e.Effects = append(e.Effects, eff)
	return true
}

// removeEffect detaches exactly eff.
func (e *Entity) removeEffect(eff *Effect) bool {
	i := slices.Index(e.Effects, eff)
	if i < 0 {
		return false
	}
	e.Effects = slices.Delete(e.Effects, i, i+1)
	return true
}

// removeEffectsNamed detaches every effect with name, removable or not.
func (e *Entity) removeEffectsNamed(name string) []*Effect {
	var removed []*Effect
	e.Effects = slices.DeleteFunc(e.Effects, func(eff *Effect) bool {
		if eff.Name == name {
			removed = append(removed, eff)
			return true
		}
		return false
	})
	return removed
}

// removeAllEffects detaches removable buffs and/or debuffs.
func (e *Entity) removeAllEffects(buff, debuff bool) []*Effect {
	var removed []*Effect
	e.Effects = slices.DeleteFunc(e.Effects, func(eff *Effect) bool {
		if !eff.IsRemovable {
			return false
		}
		if (eff.IsDebuff && debuff) || (!eff.IsDebuff && buff) {
			removed = append(removed, eff)
			return true
		}
		return false
	})
	return removed
}

// attachShield installs or replaces the shield key.
func (e *Entity) attachShield(s *Shield) {
	if e.Shields == nil {
		e.Shields = make(map[string]*Shield)
	}
	e.Shields[s.Key] = s
}

func (e *Entity) removeShield(key string) bool {
	if _, ok := e.Shields[key]; !ok {
		return false
	}
	delete(e.Shields, key)
	return true
}

// TickEffects applies every attached effect once, in attachment order.
// Effects removed while ticking are skipped.
func (e *Entity) TickEffects(random Random, opts ...ApplyOption) []ActionResult {
	var results []ActionResult
	for _, eff := range slices.Clone(e.Effects) {
		if !slices.Contains(e.Effects, eff) {
			continue
		}
		results = append(results, eff.ApplyOn(e, random, opts...)...)
	}
	return results
}

// TickShields decrements finite shields and removes exhausted ones.
func (e *Entity) TickShields() []ActionResult {
	var results []ActionResult
	for _, k := range e.ShieldKeys() {
		s := e.Shields[k]
		if s.Permanent() {
			continue
		}
		*s.TurnsLeft--
		if *s.TurnsLeft <= 0 {
			delete(e.Shields, k)
			results = append(results, ActionResult{Kind: ResultRemoveShield, Target: e.ID, Name: k})
		}
	}
	return results
}

// Plug installs p as the single active plugin, replacing any previous one.
func (e *Entity) Plug(p *Plugin) {
	e.plugin = p
}

// Unplug removes the active plugin.
func (e *Entity) Unplug() {
	e.plugin = nil
}

// Plugin returns the active plugin, or nil.
func (e *Entity) Plugin() *Plugin {
	return e.plugin
}

// pathActive reports whether the plugin's behavioral hooks apply.
func (e *Entity) pathActive() bool {
	return e.plugin != nil && e.plugin.Data != nil && e.plugin.Data.Path == e.Path
}

// OnAttack returns the plugin's attack hook when the plugin path matches.
func (e *Entity) OnAttack() ir.Extra {
	if !e.pathActive() {
		return nil
	}
	return e.plugin.Data.OnAttack
}

// OnDefend returns the plugin's defend hook when the plugin path matches.
func (e *Entity) OnDefend() ir.Extra {
	if !e.pathActive() {
		return nil
	}
	return e.plugin.Data.OnDefend
}

// AttackRateOffset returns the plugin's attack offset when the path matches.
func (e *Entity) AttackRateOffset() ir.Value {
	if !e.pathActive() {
		return nil
	}
	return e.plugin.Data.AttackRateOffset
}

// DefendRateOffset returns the plugin's defend offset when the path matches.
func (e *Entity) DefendRateOffset() ir.Value {
	if !e.pathActive() {
		return nil
	}
	return e.plugin.Data.DefendRateOffset
}

// UseItem executes item's extra against target in an Item context when its
// usable condition holds. Reports whether the item was used.
func (e *Entity) UseItem(item *ir.ItemData, quantity int, target *Entity, random Random) bool {
	if item == nil {
		return false
	}
	if target == nil {
		target = e
	}
	c := &ItemContext{
		Item:     item,
		Quantity: quantity,
		User:     e,
		Target:   target,
		Random:   random,
		Archive:  e.archive,
	}
	if item.Usable != nil && !EvaluateCondition(item.Usable, c) {
		return false
	}
	ExecuteExtra(item.Extra, c)
	return true
}
