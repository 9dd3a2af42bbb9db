package ir

// Walk visits n and its descendants depth-first in field order. If fn
// returns false the node's children are skipped. Nil children are not
// visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range children(n) {
		Walk(child, fn)
	}
}

func children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, c := range ns {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch v := n.(type) {
	case Sum:
		for _, c := range v.Values {
			add(c)
		}
	case Times:
		for _, c := range v.Values {
			add(c)
		}
	case MinOf:
		for _, c := range v.Values {
			add(c)
		}
	case MaxOf:
		for _, c := range v.Values {
			add(c)
		}
	case TimesByConstant:
		add(v.Value)
	case Div:
		add(v.Dividend, v.Divisor)
	case Negate:
		add(v.Value)
	case Shift:
		add(v.Value, v.Amount)
	case AbsoluteValue:
		add(v.Value)
	case CoercedBetween:
		add(v.Value, v.Min, v.Max)
	case ConditionedValue:
		add(v.Condition, v.IfTrue, v.IfFalse, v.Default)
	case ForUserValue:
		add(v.Value)
	case SwappedValue:
		add(v.Value)
	case LoadValue:
		add(v.Default)

	case And:
		for _, c := range v.Conditions {
			add(c)
		}
	case Or:
		for _, c := range v.Conditions {
			add(c)
		}
	case Not:
		add(v.Condition)
	case Compare:
		add(v.V1, v.V2)
	case CompareValues:
		add(v.V1, v.V2)
	case Chance:
		add(v.SuccessRate, v.Base)

	case ConditionedExtra:
		add(v.Condition, v.IfTrue, v.IfFalse)
	case Grouped:
		for _, c := range v.Extras {
			add(c)
		}
	case SaveValue:
		add(v.Value)
	case ForUserExtra:
		add(v.Extra)
	case SwappedExtra:
		add(v.Extra)
	case HPChange:
		add(v.Value)
	case SPChange:
		add(v.Value)
	case APChange:
		add(v.Value)
	case AttachEffect:
		add(v.Tier, v.Turns)
	case AttachShield:
		add(v.Value, v.Turns)
	case SetVariable:
		add(v.Value)
	case AddVariable:
		add(v.Value)
	case ChangeCurrency:
		add(v.Value)
	case ChangeInventory:
		add(v.Value)
	}
	return out
}
