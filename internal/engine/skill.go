package engine

import (
	"math"

	"github.com/roach88/runebound/internal/ir"
)

// Skill is an action an entity casts on targets.
type Skill struct {
	Action

	Target   ir.FunctionTarget
	Bullseye bool

	BasePower  int
	Power      int
	BaseSPCost int
	SPCost     int

	// AttackTimes is the repeat count expression; nil means 1.
	AttackTimes ir.Value
	Extra       ir.Extra

	data *ir.SkillData
}

// NewSkill builds a skill for user at the tier user's level reaches.
func NewSkill(data *ir.SkillData, user *Entity) *Skill {
	level := 1
	if user != nil {
		level = user.Level
	}
	s := &Skill{
		Action: Action{
			Name:     data.Name,
			Category: data.Category,
			User:     user,
		},
		Target:      data.Target,
		Bullseye:    data.Bullseye,
		BasePower:   data.BasePower,
		BaseSPCost:  data.BaseSPCost,
		AttackTimes: data.AttackTimes,
		Extra:       data.Extra,
		data:        data,
	}
	s.SetTier(data.TierFor(level))
	return s
}

// SetTier sets the tier and recomputes power and SP cost.
func (s *Skill) SetTier(tier int) {
	s.Tier = max(tier, 1)
	growth := 0
	spGrowth := 0
	if s.data != nil {
		growth = s.data.PowerGrowth
		spGrowth = s.data.SPCostGrowth
	}
	s.Power = s.BasePower + growth*(s.Tier-1)
	s.SPCost = s.BaseSPCost + spGrowth*(s.Tier-1)
}

// Data returns the template the skill was built from.
func (s *Skill) Data() *ir.SkillData {
	return s.data
}

// InvokeOn casts the skill on targets in order and returns every result.
//
// SP is deducted and TimesUsed incremented once per call. For each target a
// fresh context is built and, unless the skill is a bullseye or aimed at its
// own user, one evasion roll is drawn when the target's HideRate is
// positive; an evaded target records Miss and skips the extra. Otherwise a
// critical roll is drawn when the user's CritRate is positive, the repeat
// count is evaluated and the extra runs that many times. Plugin hooks run
// last and only on a hit: the user's OnAttack, then the target's OnDefend
// with the target as the acting user.
func (s *Skill) InvokeOn(targets []*Entity, random Random, opts ...ApplyOption) []ActionResult {
	user := s.User
	cfg := newApplyConfig(user, nil, opts)

	if user != nil {
		user.SP = max(user.SP-s.SPCost, 0)
	}
	s.TimesUsed++

	var results []ActionResult
	for _, target := range targets {
		c := NewCombatContext(s, user, target, random)
		c.Clock = cfg.clock
		c.Archive = cfg.archive
		c.Targets = len(targets)
		s.TimesRepeated = 0

		if !s.Bullseye && target != user && random != nil {
			if hide := target.Stat(ir.StatHideRate); hide > 0 && random.Float64() < hide {
				c.Attack.Missed = true
				c.frame().record(ActionResult{Kind: ResultMiss, Target: target.ID})
			}
		}

		if !c.Attack.Missed {
			if user != nil && random != nil {
				if crit := user.Stat(ir.StatCritRate); crit > 0 {
					c.Attack.Critical = random.Float64() < crit
				}
			}
			times := 1
			if s.AttackTimes != nil {
				times = int(math.Round(EvaluateValue(s.AttackTimes, c)))
			}
			for i := 0; i < times; i++ {
				ExecuteExtra(s.Extra, c)
				s.TimesRepeated++
			}

			if user != nil {
				if hook := user.OnAttack(); hook != nil {
					ExecuteExtra(hook, c)
				}
			}
			if hook := target.OnDefend(); hook != nil {
				ExecuteExtra(hook, c.Swapped())
			}
		}
		results = append(results, c.Results()...)
	}
	return results
}
