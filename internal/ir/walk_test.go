package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalk(t *testing.T) {
	tree := Grouped{Extras: []Extra{
		ConditionedExtra{
			Condition: HasEffect{Effect: "wet"},
			IfTrue:    AttachEffect{Name: "frozen", Turns: Constant{Value: 1}},
		},
		HPChange{Value: Negate{Value: SkillPower{}}},
	}}

	var kinds []string
	Walk(tree, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []string{
		"Extra.Grouped",
		"Extra.Conditioned",
		"Entity.HasEffect",
		"Entity.AttachEffect",
		"Value.Constant",
		"Entity.HPChange",
		"Value.Negate",
		"Action.Power",
	}, kinds)
}

func TestWalk_SkipChildren(t *testing.T) {
	tree := Sum{Values: []Value{Negate{Value: Damage{}}, Constant{Value: 1}}}

	var kinds []string
	Walk(tree, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != "Value.Negate"
	})
	assert.Equal(t, []string{"Value.Sum", "Value.Negate", "Value.Constant"}, kinds)

	Walk(nil, func(Node) bool {
		t.Fatal("nil tree visited")
		return false
	})
}
