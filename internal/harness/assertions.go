package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/ir"
	"github.com/roach88/runebound/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %v\n", event.Seq, event.Command, event.User, event.Targets)
			for _, r := range event.Results {
				fmt.Fprintf(&buf, "      %s -> %s", r.Kind, r.Target)
				if r.Name != "" {
					fmt.Fprintf(&buf, " %s", r.Name)
				}
				if r.Delta != 0 {
					fmt.Fprintf(&buf, " %+d", r.Delta)
				}
				buf.WriteByte('\n')
			}
		}
	}

	return buf.String()
}

// AssertionContext provides access to the battle and its log.
type AssertionContext struct {
	Ctx      context.Context
	Battle   *engine.Battle
	Log      store.BattleLog
	BattleID string
}

func (a *AssertionContext) entity(id string) (*engine.Entity, error) {
	if a == nil || a.Battle == nil {
		return nil, fmt.Errorf("assertion requires a battle")
	}
	e := a.Battle.Entity(id)
	if e == nil {
		return nil, fmt.Errorf("unknown entity %q", id)
	}
	return e, nil
}

// assertStat checks an entity's final stat value.
// Pools (HP, SP, AP) read their current values.
func assertStat(trace []TraceEvent, e *engine.Entity, assertion Assertion) error {
	got := e.Stat(ir.Stat(assertion.Stat))
	if got != *assertion.Equals {
		return &AssertionError{
			Type:     AssertStat,
			Expected: fmt.Sprintf("%s.%s = %v", assertion.Entity, assertion.Stat, *assertion.Equals),
			Actual:   fmt.Sprintf("%s.%s = %v", assertion.Entity, assertion.Stat, got),
			Trace:    trace,
		}
	}
	return nil
}

// assertHasEffect checks whether an entity carries an effect, optionally at
// a given tier.
func assertHasEffect(trace []TraceEvent, e *engine.Entity, assertion Assertion) error {
	want := assertion.Present == nil || *assertion.Present
	eff := e.EffectNamed(assertion.Effect)

	switch {
	case want && eff == nil:
		return &AssertionError{
			Type:     AssertHasEffect,
			Expected: fmt.Sprintf("%s to carry %s", assertion.Entity, assertion.Effect),
			Actual:   "effect not attached",
			Trace:    trace,
		}
	case !want && eff != nil:
		return &AssertionError{
			Type:     AssertHasEffect,
			Expected: fmt.Sprintf("%s not to carry %s", assertion.Entity, assertion.Effect),
			Actual:   fmt.Sprintf("attached at tier %d with %d turns left", eff.Tier, eff.TurnsLeft),
			Trace:    trace,
		}
	case want && assertion.Tier != 0 && eff.Tier != assertion.Tier:
		return &AssertionError{
			Type:     AssertHasEffect,
			Expected: fmt.Sprintf("%s tier %d", assertion.Effect, assertion.Tier),
			Actual:   fmt.Sprintf("%s tier %d", assertion.Effect, eff.Tier),
			Trace:    trace,
		}
	}
	return nil
}

// assertResultCount counts logged results of a kind, optionally narrowed by
// target and name.
func assertResultCount(trace []TraceEvent, logged []store.LoggedResult, assertion Assertion) error {
	count := 0
	for _, lr := range logged {
		r := lr.Result
		if string(r.Kind) != assertion.Kind {
			continue
		}
		if assertion.Target != "" && r.Target != assertion.Target {
			continue
		}
		if assertion.Name != "" && r.Name != assertion.Name {
			continue
		}
		count++
	}

	if count != assertion.Count {
		desc := assertion.Kind
		if assertion.Target != "" {
			desc += " on " + assertion.Target
		}
		if assertion.Name != "" {
			desc += " named " + assertion.Name
		}
		return &AssertionError{
			Type:     AssertResultCount,
			Expected: fmt.Sprintf("%d results of %s", assertion.Count, desc),
			Actual:   fmt.Sprintf("%d results", count),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the battle for entity assertions and the
// battle log for result_count.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string
	var logged []store.LoggedResult
	loggedRead := false

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStat, AssertHasEffect:
			var e *engine.Entity
			e, err = actx.entity(assertion.Entity)
			if err != nil {
				err = fmt.Errorf("assertion[%d]: %w", i, err)
				break
			}
			if assertion.Type == AssertStat {
				err = assertStat(result.Trace, e, assertion)
			} else {
				err = assertHasEffect(result.Trace, e, assertion)
			}

		case AssertResultCount:
			if actx == nil || actx.Log == nil {
				err = fmt.Errorf("assertion[%d]: result_count requires a battle log", i)
				break
			}
			if !loggedRead {
				logged, err = actx.Log.ReadResults(actx.Ctx, actx.BattleID)
				if err != nil {
					err = fmt.Errorf("assertion[%d]: read battle log: %w", i, err)
					break
				}
				loggedRead = true
			}
			err = assertResultCount(result.Trace, logged, assertion)

		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
