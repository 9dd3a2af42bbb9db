package compiler

import (
	"fmt"

	"github.com/roach88/runebound/internal/ir"
)

// Reference validation error codes (E200-E299)
const (
	ErrUnknownEffect = "E201" // effect name not defined in the bundle
	ErrUnknownSkill  = "E202" // entity lists an undefined skill
	ErrUnknownQuest  = "E203" // QuestCompleted names an undefined quest
	ErrUnknownItem   = "E204" // inventory node names an undefined item
	ErrUnknownPath   = "E205" // plugin path no entity walks
)

// ValidationError represents a dangling reference between records.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the references between the records of a bundle.
// Returns all errors found (does not fail-fast), ordered by kind then key.
//
// Records are individually valid once compiled; what remains is whether the
// names they mention exist: attached, removed and inspected effects, entity
// skills, completed quests, inventory items and plugin paths.
func Validate(b *Bundle) []ValidationError {
	var errs []ValidationError

	for _, name := range b.Keys(KindEffect) {
		eff := b.Effects[name]
		field := "effect." + name
		for _, stat := range sortedStats(eff.Modifiers) {
			errs = append(errs, checkRefs(b, field+".modifiers."+string(stat), eff.Modifiers[stat])...)
		}
		errs = append(errs, checkRefs(b, field+".extra", eff.Extra)...)
	}

	for _, name := range b.Keys(KindSkill) {
		s := b.Skills[name]
		field := "skill." + name
		errs = append(errs, checkRefs(b, field+".attack_times", s.AttackTimes)...)
		errs = append(errs, checkRefs(b, field+".extra", s.Extra)...)
	}

	for _, key := range b.Keys(KindPlugin) {
		p := b.Plugins[key]
		field := "plugin." + key
		errs = append(errs, checkRefs(b, field+".on_attack", p.OnAttack)...)
		errs = append(errs, checkRefs(b, field+".on_defend", p.OnDefend)...)
		errs = append(errs, checkRefs(b, field+".attack_rate_offset", p.AttackRateOffset)...)
		errs = append(errs, checkRefs(b, field+".defend_rate_offset", p.DefendRateOffset)...)
		if p.Path != "" && len(b.Entities) > 0 && !entityPathExists(b, p.Path) {
			errs = append(errs, ValidationError{
				Field:   field + ".path",
				Message: fmt.Sprintf("no entity follows path %q", p.Path),
				Code:    ErrUnknownPath,
			})
		}
	}

	for _, key := range b.Keys(KindItem) {
		it := b.Items[key]
		field := "item." + key
		errs = append(errs, checkRefs(b, field+".usable", it.Usable)...)
		errs = append(errs, checkRefs(b, field+".extra", it.Extra)...)
	}

	for _, key := range b.Keys(KindEntity) {
		e := b.Entities[key]
		for i, skill := range e.Skills {
			if _, ok := b.Skills[skill]; !ok {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("entity.%s.skills[%d]", key, i),
					Message: fmt.Sprintf("unknown skill %q", skill),
					Code:    ErrUnknownSkill,
				})
			}
		}
	}

	return errs
}

// checkRefs walks one expression tree and reports every dangling name.
func checkRefs(b *Bundle, field string, root ir.Node) []ValidationError {
	if root == nil {
		return nil
	}

	var errs []ValidationError
	effect := func(name string) {
		if _, ok := b.Effects[name]; !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown effect %q", name),
				Code:    ErrUnknownEffect,
			})
		}
	}
	item := func(key string) {
		if _, ok := b.Items[key]; !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown item %q", key),
				Code:    ErrUnknownItem,
			})
		}
	}

	ir.Walk(root, func(n ir.Node) bool {
		switch v := n.(type) {
		case ir.AttachEffect:
			effect(v.Name)
		case ir.RemoveEffect:
			effect(v.Name)
		case ir.HasEffect:
			effect(v.Effect)
		case ir.TurnsLeftOf:
			effect(v.Effect)
		case ir.TierOf:
			effect(v.Effect)
		case ir.QuestCompleted:
			if _, ok := b.Quests[v.Quest]; !ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("unknown quest %q", v.Quest),
					Code:    ErrUnknownQuest,
				})
			}
		case ir.ChangeInventory:
			item(v.Item)
		case ir.InventoryCount:
			item(v.Item)
		}
		return true
	})
	return errs
}

func entityPathExists(b *Bundle, path string) bool {
	for _, e := range b.Entities {
		if e.Path == path {
			return true
		}
	}
	return false
}
