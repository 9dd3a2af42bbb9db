// Package engine evaluates rule expressions against game entities.
//
// Three context kinds exist. CombatContext and ItemContext evaluate purely
// in memory and never block; EventContext additionally reads and writes
// persisted game state and is the only path that takes a context.Context
// and returns errors. All three lower into one internal frame, and every
// node's domain tag is checked against the frame's domain before dispatch:
// a node that is not allowed reads as 0, false or a no-op.
//
// Entities are mutated in place. Nothing in this package locks; the Battle
// loop resolves one command at a time and callers using the evaluators
// directly must do the same.
//
// Randomness comes only from the injected Random. Two battles with equal
// seeds and equal commands produce equal result logs.
package engine
