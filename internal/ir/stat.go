package ir

// Stat names an entity statistic readable by Stat leaves and adjustable by
// effect modifiers and plugin constants.
type Stat string

const (
	StatHP         Stat = "HP"
	StatSP         Stat = "SP"
	StatAP         Stat = "AP"
	StatMaxHP      Stat = "MaxHP"
	StatMaxSP      Stat = "MaxSP"
	StatMaxAP      Stat = "MaxAP"
	StatATK        Stat = "ATK"
	StatDEF        Stat = "DEF"
	StatSPD        Stat = "SPD"
	StatCritRate   Stat = "CritRate"
	StatCritDmg    Stat = "CritDmg"
	StatTargetRate Stat = "TargetRate"
	StatHideRate   Stat = "HideRate"
	StatLevel      Stat = "Level"
)

// ValidStats lists every readable stat.
var ValidStats = map[Stat]bool{
	StatHP: true, StatSP: true, StatAP: true,
	StatMaxHP: true, StatMaxSP: true, StatMaxAP: true,
	StatATK: true, StatDEF: true, StatSPD: true,
	StatCritRate: true, StatCritDmg: true, StatTargetRate: true, StatHideRate: true,
	StatLevel: true,
}

// IsRate reports whether the stat is a fractional rate. Plugin percentages
// are added to rates instead of multiplying them.
func (s Stat) IsRate() bool {
	switch s {
	case StatCritRate, StatCritDmg, StatTargetRate, StatHideRate:
		return true
	}
	return false
}

// IsModifiable reports whether effects and plugins may adjust the stat.
// Current pools (HP, SP, AP) and Level are state, not derived stats.
func (s Stat) IsModifiable() bool {
	switch s {
	case StatHP, StatSP, StatAP, StatLevel:
		return false
	}
	return ValidStats[s]
}
