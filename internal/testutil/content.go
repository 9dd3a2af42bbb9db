package testutil

import "github.com/roach88/runebound/internal/ir"

// EntityData builds a minimal entity template. Stats default to a sturdy
// level-1 fighter; overrides replace individual stats.
func EntityData(key string, overrides map[ir.Stat]float64) *ir.EntityData {
	stats := map[ir.Stat]float64{
		ir.StatMaxHP: 100,
		ir.StatMaxSP: 100,
		ir.StatMaxAP: 10,
		ir.StatATK:   20,
		ir.StatDEF:   10,
		ir.StatSPD:   10,
	}
	for s, v := range overrides {
		stats[s] = v
	}
	return &ir.EntityData{Key: key, Name: key, Stats: stats}
}

// Archive is an in-memory content archive keyed by name. It satisfies
// engine.Archive.
type Archive struct {
	Effects map[string]*ir.EffectData
	Skills  map[string]*ir.SkillData
	Plugins map[string]*ir.PluginData
	Items   map[string]*ir.ItemData
	Quests  map[string]*ir.QuestData
}

// NewArchive creates an archive holding the given effects.
func NewArchive(effects ...*ir.EffectData) *Archive {
	a := &Archive{
		Effects: make(map[string]*ir.EffectData),
		Skills:  make(map[string]*ir.SkillData),
		Plugins: make(map[string]*ir.PluginData),
		Items:   make(map[string]*ir.ItemData),
		Quests:  make(map[string]*ir.QuestData),
	}
	for _, e := range effects {
		a.Effects[e.Name] = e
	}
	return a
}

func (a *Archive) Effect(name string) (*ir.EffectData, bool) {
	d, ok := a.Effects[name]
	return d, ok
}

func (a *Archive) Skill(name string) (*ir.SkillData, bool) {
	d, ok := a.Skills[name]
	return d, ok
}

func (a *Archive) Plugin(key string) (*ir.PluginData, bool) {
	d, ok := a.Plugins[key]
	return d, ok
}

func (a *Archive) Item(key string) (*ir.ItemData, bool) {
	d, ok := a.Items[key]
	return d, ok
}

func (a *Archive) Quest(key string) (*ir.QuestData, bool) {
	d, ok := a.Quests[key]
	return d, ok
}
