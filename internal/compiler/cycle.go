package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/runebound/internal/ir"
)

// CycleWarning represents an effect that can re-attach itself through a
// chain of ticks.
//
// Cycles are warnings, not errors, because turn limits bound them:
//   - A spreading burn that re-attaches to its target
//   - Two effects that alternate on expiry
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["burn", "smolder", "burn"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles performs static cycle analysis on the effect-attach graph.
//
// The algorithm:
//  1. Build effect → effect edges from AttachEffect nodes in each effect's
//     modifiers and extra
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle warning
//
// Edges to effects missing from the bundle are ignored; Validate reports
// those. A DAG returns an empty warning list.
func AnalyzeCycles(b *Bundle) []CycleWarning {
	if b == nil || len(b.Effects) == 0 {
		return []CycleWarning{}
	}

	graph := buildAttachGraph(b)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// attachGraph maps an effect name to the effects its ticks can attach.
type attachGraph map[string][]string

func buildAttachGraph(b *Bundle) attachGraph {
	graph := make(attachGraph, len(b.Effects))
	for _, name := range b.Keys(KindEffect) {
		eff := b.Effects[name]
		seen := make(map[string]bool)
		edges := []string{}

		visit := func(n ir.Node) bool {
			if a, ok := n.(ir.AttachEffect); ok {
				if _, known := b.Effects[a.Name]; known && !seen[a.Name] {
					seen[a.Name] = true
					edges = append(edges, a.Name)
				}
			}
			return true
		}
		for _, stat := range sortedStats(eff.Modifiers) {
			ir.Walk(eff.Modifiers[stat], visit)
		}
		if eff.Extra != nil {
			ir.Walk(eff.Extra, visit)
		}
		graph[name] = edges
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph attachGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order and each SCC is sorted, so results are
// stable across runs.
func tarjanSCC(graph attachGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
// For self-loops the path is [name, name].
func cycleSCCToWarning(scc []string, graph attachGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("Self-attaching effect detected: %s → %s", name, name),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Effect attach cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph attachGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}

func sortedStats(m map[ir.Stat]ir.Value) []ir.Stat {
	stats := make([]ir.Stat, 0, len(m))
	for s := range m {
		stats = append(stats, s)
	}
	slices.Sort(stats)
	return stats
}
