// Package dag provides the dependency graph over pipeline stages.
// It supports cycle detection, topological ordering and grouping stages
// into levels that can execute concurrently.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed acyclic graph of stage names. Edges point from a
// dependency to its dependents.
type Graph struct {
	stages     map[string]bool
	dependents map[string][]string // dep -> stages that need it
	deps       map[string][]string // stage -> its dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		stages:     make(map[string]bool),
		dependents: make(map[string][]string),
		deps:       make(map[string][]string),
	}
}

// AddStage registers a stage. Adding an existing stage is a no-op.
func (g *Graph) AddStage(name string) {
	g.stages[name] = true
}

// AddDep records that stage depends on dep. Both must already be
// registered.
func (g *Graph) AddDep(stage, dep string) error {
	if !g.stages[stage] {
		return fmt.Errorf("unknown stage %q", stage)
	}
	if !g.stages[dep] {
		return fmt.Errorf("stage %q depends on unknown stage %q", stage, dep)
	}
	if stage == dep {
		return fmt.Errorf("stage %q depends on itself", stage)
	}
	if !containsString(g.deps[stage], dep) {
		g.deps[stage] = append(g.deps[stage], dep)
		g.dependents[dep] = append(g.dependents[dep], stage)
	}
	return nil
}

// Deps returns a stage's direct dependencies, sorted.
func (g *Graph) Deps(stage string) []string {
	out := append([]string(nil), g.deps[stage]...)
	sort.Strings(out)
	return out
}

// Dependents returns the stages that directly depend on the given stage,
// sorted.
func (g *Graph) Dependents(stage string) []string {
	out := append([]string(nil), g.dependents[stage]...)
	sort.Strings(out)
	return out
}

// Len returns the number of stages.
func (g *Graph) Len() int {
	return len(g.stages)
}

// HasCycle reports whether the graph contains a dependency cycle, with
// the offending path.
func (g *Graph) HasCycle() (bool, []string) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	mark := make(map[string]int, len(g.stages))
	parent := make(map[string]string)

	var cycle []string
	var visit func(name string) bool
	visit = func(name string) bool {
		mark[name] = inStack
		for _, dep := range g.deps[name] {
			switch mark[dep] {
			case unvisited:
				parent[dep] = name
				if visit(dep) {
					return true
				}
			case inStack:
				cycle = []string{dep}
				for at := name; at != dep; at = parent[at] {
					cycle = append(cycle, at)
				}
				cycle = append(cycle, dep)
				return true
			}
		}
		mark[name] = done
		return false
	}

	for _, name := range g.sortedStages() {
		if mark[name] == unvisited && visit(name) {
			return true, cycle
		}
	}
	return false, nil
}

// Order returns the stages in topological order: every stage appears
// after all of its dependencies. Stage names break ties, so the order is
// deterministic. Returns an error if the graph has a cycle.
func (g *Graph) Order() ([]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("stage cycle: %v", path)
	}

	visited := make(map[string]bool, len(g.stages))
	var order []string
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		deps := append([]string(nil), g.deps[name]...)
		sort.Strings(deps)
		for _, dep := range deps {
			visit(dep)
		}
		order = append(order, name)
	}

	for _, name := range g.sortedStages() {
		visit(name)
	}
	return order, nil
}

// Levels groups stages by execution level: level 0 holds stages with no
// dependencies, and every stage sits one level above its deepest
// dependency. Stages within a level are independent and may run
// concurrently.
func (g *Graph) Levels() ([][]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("stage cycle: %v", path)
	}

	level := make(map[string]int, len(g.stages))
	var depth func(name string) int
	depth = func(name string) int {
		if l, ok := level[name]; ok {
			return l
		}
		max := -1
		for _, dep := range g.deps[name] {
			if d := depth(dep); d > max {
				max = d
			}
		}
		level[name] = max + 1
		return max + 1
	}

	maxLevel := 0
	for name := range g.stages {
		if d := depth(name); d > maxLevel {
			maxLevel = d
		}
	}

	out := make([][]string, maxLevel+1)
	for name, l := range level {
		out[l] = append(out[l], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out, nil
}

// Downstream returns the given stages plus everything that transitively
// depends on them, sorted.
func (g *Graph) Downstream(stages []string) []string {
	seen := make(map[string]bool)
	var mark func(name string)
	mark = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		for _, dep := range g.dependents[name] {
			mark(dep)
		}
	}
	for _, name := range stages {
		if g.stages[name] {
			mark(name)
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) sortedStages() []string {
	out := make([]string, 0, len(g.stages))
	for name := range g.stages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
