package engine

// Shield is a temporary absorption pool keyed on an entity.
type Shield struct {
	Key   string
	Value int
	// TurnsLeft is nil for a permanent shield.
	TurnsLeft *int
}

// Permanent reports whether the shield never expires by ticking.
func (s *Shield) Permanent() bool {
	return s.TurnsLeft == nil
}

// absorb takes up to amount from the shield and returns what it took.
func (s *Shield) absorb(amount int) int {
	took := min(s.Value, amount)
	if took < 0 {
		took = 0
	}
	s.Value -= took
	return took
}

func turnsPtr(n int) *int {
	return &n
}
