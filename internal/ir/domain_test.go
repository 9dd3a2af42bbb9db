package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainAllowedIn(t *testing.T) {
	tests := []struct {
		domain              Domain
		combat, item, event bool
	}{
		{DomainCommon, true, true, true},
		{DomainEntity, true, true, true},
		{DomainCombat, true, false, false},
		{DomainItem, false, true, false},
		{DomainEvent, false, false, true},
		{DomainAction, true, false, true},
		{DomainTime, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.domain.String(), func(t *testing.T) {
			assert.Equal(t, tt.combat, tt.domain.AllowedIn(ContextCombat))
			assert.Equal(t, tt.item, tt.domain.AllowedIn(ContextItem))
			assert.Equal(t, tt.event, tt.domain.AllowedIn(ContextEvent))
		})
	}
	assert.False(t, Domain(99).AllowedIn(ContextCombat))
}

func TestDomainStrings(t *testing.T) {
	assert.Equal(t, "Action", DomainAction.String())
	assert.Equal(t, "Domain(42)", Domain(42).String())
	assert.Equal(t, "Event", ContextEvent.String())
	assert.Equal(t, "ContextDomain(9)", ContextDomain(9).String())
}

func TestNodeDomainsMatchKindPrefix(t *testing.T) {
	prefix := map[Domain][]string{
		DomainCommon: {"Value", "Condition", "Extra"},
		DomainCombat: {"Combat"},
		DomainItem:   {"Item"},
		DomainEvent:  {"Event"},
		DomainEntity: {"Entity"},
		DomainAction: {"Action"},
		DomainTime:   {"Time"},
	}
	nodes := []Node{
		Constant{}, Sum{}, LoadValue{}, Damage{}, TargetCount{}, ItemQuantity{}, SavedVariable{},
		Currency{}, ActionTier{}, SkillPower{}, EffectTurnsLeft{}, StatOf{}, ShieldTotal{}, Now{}, DayOfWeek{},
		And{}, Chance{}, Critical{}, Missed{}, ItemNamed{}, Switch{}, TimeElapsed{}, HasEffect{}, PathIs{},
		Empty{}, Grouped{}, SaveValue{}, HPChange{}, AttachShield{}, NoEffect{}, SetSwitch{}, ChangeInventory{},
	}
	for _, n := range nodes {
		want := prefix[n.Domain()]
		matched := false
		for _, p := range want {
			if len(n.Kind()) > len(p) && n.Kind()[:len(p)+1] == p+"." {
				matched = true
			}
		}
		assert.True(t, matched, "%s has domain %s", n.Kind(), n.Domain())
	}
}

func TestStatPredicates(t *testing.T) {
	assert.True(t, StatCritRate.IsRate())
	assert.True(t, StatHideRate.IsRate())
	assert.False(t, StatATK.IsRate())

	assert.True(t, StatATK.IsModifiable())
	assert.True(t, StatMaxHP.IsModifiable())
	assert.False(t, StatHP.IsModifiable())
	assert.False(t, StatLevel.IsModifiable())
	assert.False(t, Stat("Luck").IsModifiable())
}
