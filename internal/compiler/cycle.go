package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// CycleError reports nodes whose operands depend on each other.
// A patch is a single straight-line evaluation, so any cycle is fatal.
type CycleError struct {
	Patch string
	Path  []string // cycle path: ["a", "b", "a"]
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("patch %q: dependency cycle: %s", e.Patch, strings.Join(e.Path, " → "))
}

// dependencyGraph maps node name → nodes it reads, in operand order.
// Parameters are leaves and never appear as keys.
type dependencyGraph map[string][]string

// buildDependencyGraph collects node → node edges from args and items.
// References to unknown names are ignored here; Validate reports them.
func buildDependencyGraph(p *Patch) dependencyGraph {
	graph := make(dependencyGraph, len(p.Nodes))
	isNode := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		isNode[n.Name] = true
	}
	for _, n := range p.Nodes {
		deps := []string{}
		for _, ref := range operands(n) {
			if isNode[ref] && !slices.Contains(deps, ref) {
				deps = append(deps, ref)
			}
		}
		graph[n.Name] = deps
	}
	return graph
}

func operands(n Node) []string {
	return append(slices.Clone(n.Args), n.Items...)
}

// findCycles returns one path per strongly connected component that forms
// a cycle, in the order Tarjan's algorithm closes them.
func findCycles(p *Patch, graph dependencyGraph) [][]string {
	var cycles [][]string
	for _, scc := range tarjanSCC(nodeNames(p), graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, reconstructCyclePath(scc, graph))
		}
	}
	return cycles
}

func nodeNames(p *Patch) []string {
	names := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		names[i] = n.Name
	}
	return names
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Roots are visited in the given order so the result is deterministic.
func tarjanSCC(order []string, graph dependencyGraph) [][]string {
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

		// v is a root: pop its component
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
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside the SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		var next string
		for _, neighbor := range graph[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
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
		visited[next] = true
		current = next
	}
	return path
}

// Order returns the patch's nodes so that every node follows the nodes it
// reads. Among ready nodes the earliest declared goes first.
func Order(p *Patch) ([]Node, error) {
	graph := buildDependencyGraph(p)
	if cycles := findCycles(p, graph); len(cycles) > 0 {
		return nil, &CycleError{Patch: p.Name, Path: cycles[0]}
	}

	pending := make(map[string]int, len(p.Nodes))
	for _, n := range p.Nodes {
		pending[n.Name] = len(graph[n.Name])
	}

	ordered := make([]Node, 0, len(p.Nodes))
	done := make(map[string]bool, len(p.Nodes))
	for len(ordered) < len(p.Nodes) {
		progressed := false
		for _, n := range p.Nodes {
			if done[n.Name] || pending[n.Name] > 0 {
				continue
			}
			done[n.Name] = true
			ordered = append(ordered, n)
			for _, m := range p.Nodes {
				if slices.Contains(graph[m.Name], n.Name) {
					pending[m.Name]--
				}
			}
			progressed = true
			break
		}
		if !progressed {
			// unreachable once findCycles passed, unless node names repeat
			return nil, fmt.Errorf("patch %q: cannot order nodes", p.Name)
		}
	}
	return ordered, nil
}

// Unreachable lists nodes, in declaration order, whose value never flows
// into the result node.
func Unreachable(p *Patch) []string {
	graph := buildDependencyGraph(p)
	live := make(map[string]bool)
	var visit func(string)
	visit = func(name string) {
		if live[name] {
			return
		}
		live[name] = true
		for _, dep := range graph[name] {
			visit(dep)
		}
	}
	visit(p.Result)

	var dead []string
	for _, n := range p.Nodes {
		if !live[n.Name] {
			dead = append(dead, n.Name)
		}
	}
	return dead
}
