package engine

// ResultKind identifies an audit record produced by combat execution.
type ResultKind string

const (
	ResultHPChange     ResultKind = "HPChange"
	ResultSPChange     ResultKind = "SPChange"
	ResultAPChange     ResultKind = "APChange"
	ResultAttachEffect ResultKind = "AttachEffect"
	ResultRemoveEffect ResultKind = "RemoveEffect"
	ResultAttachShield ResultKind = "AttachShield"
	ResultRemoveShield ResultKind = "RemoveShield"
	ResultNoEffect     ResultKind = "NoEffect"
	ResultMiss         ResultKind = "Miss"
)

// ActionResult is one audit record of a combat action. Which fields are
// meaningful depends on Kind.
type ActionResult struct {
	Kind   ResultKind `json:"kind"`
	Action string     `json:"action,omitempty"`
	User   string     `json:"user,omitempty"`
	Target string     `json:"target"`

	// Name is the effect name or shield key.
	Name string `json:"name,omitempty"`

	// Delta is the applied stat change after clamping.
	Delta int `json:"delta,omitempty"`

	// Absorbed is the HP loss taken by shields.
	Absorbed int `json:"absorbed,omitempty"`

	Tier  int `json:"tier,omitempty"`
	Turns int `json:"turns,omitempty"`
}

// Valid reports whether the record may be appended to a result list.
// Zero-magnitude stat changes are valid; records without a subject are not.
func (r ActionResult) Valid() bool {
	if r.Target == "" {
		return false
	}
	switch r.Kind {
	case ResultHPChange, ResultSPChange, ResultAPChange, ResultNoEffect, ResultMiss:
		return true
	case ResultAttachEffect:
		return r.Name != "" && r.Tier >= 1
	case ResultRemoveEffect, ResultRemoveShield:
		return r.Name != ""
	case ResultAttachShield:
		return r.Name != "" && r.Delta >= 0
	default:
		return false
	}
}

// resultSink collects results for one top-level combat execution. Contexts
// derived with ForUser or Swapped share it.
type resultSink struct {
	results []ActionResult
}

func (s *resultSink) add(r ActionResult) {
	if s == nil || !r.Valid() {
		return
	}
	s.results = append(s.results, r)
}

func (s *resultSink) all() []ActionResult {
	if s == nil {
		return nil
	}
	return s.results
}
