// Package ir provides the expression intermediate representation for runebound.
//
// Game mechanics are expressed as three closed families of immutable nodes:
//   - Value: numeric expressions evaluated to float64
//   - Condition: boolean expressions
//   - Extra: effectful actions that mutate entities or persisted state
//
// Every node carries a Domain tag. Evaluators consult Domain.AllowedIn before
// dispatching, so a node used in the wrong context reads as its neutral value.
//
// This package contains type definitions, the JSON codec and static content
// records only. All other internal packages import ir; ir imports nothing
// internal.
package ir
