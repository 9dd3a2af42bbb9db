package engine

import (
	"slices"

	"github.com/roach88/runebound/internal/ir"
)

// Plugin is an instantiated plugin: static data plus a chosen tier and the
// stat percentages rolled for it. Const bonuses always apply; the hooks and
// rate offsets apply only on an entity whose path matches Data.Path.
type Plugin struct {
	Data   *ir.PluginData
	Tier   int
	Consts map[ir.Stat]int
}

// NewPlugin creates a plugin with assigned percentages.
func NewPlugin(data *ir.PluginData, tier int, consts map[ir.Stat]int) *Plugin {
	return &Plugin{Data: data, Tier: clampInt(tier, 1, max(data.Tiers, 1)), Consts: consts}
}

// RollPlugin rolls each const range once, in stat name order, and scales
// the roll by tier.
func RollPlugin(data *ir.PluginData, tier int, random Random) *Plugin {
	p := NewPlugin(data, tier, make(map[ir.Stat]int, len(data.Consts)))
	stats := make([]ir.Stat, 0, len(data.Consts))
	for s := range data.Consts {
		stats = append(stats, s)
	}
	slices.Sort(stats)
	for _, s := range stats {
		r := data.Consts[s]
		p.Consts[s] = random.IntN(r.Min, r.Max) * p.Tier
	}
	return p
}

// Key returns the plugin data key.
func (p *Plugin) Key() string {
	if p.Data == nil {
		return ""
	}
	return p.Data.Key
}
