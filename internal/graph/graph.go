// Package graph builds the static dependency graph of a container's
// registrations for validation and rendering.
package graph

import (
	"fmt"
	"reflect"

	"github.com/junioryono/ioc/internal/resolver"
)

// Kind classifies how a node is satisfied.
type Kind int

const (
	// Missing nodes are referenced but neither registered nor provided.
	Missing Kind = iota
	Transient
	Singleton
	Instance
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	case Instance:
		return "instance"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node represents a contract type in the dependency graph
type Node struct {
	Type           reflect.Type
	Implementation reflect.Type
	Kind           Kind

	// Err is a construction problem known before resolution, such as a
	// missing constructor.
	Err error

	// Dependency information
	Dependencies []reflect.Type // contract types this node depends on
	Dependents   []reflect.Type // contract types that depend on this node

	// Depth is the longest dependency chain below the node, -1 when the
	// node is on or above a cycle.
	Depth int
}

// String returns a compact description of the node.
func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", resolver.FormatType(n.Type), n.Kind)
}

// Graph holds nodes in insertion order so that validation and rendering are
// deterministic.
type Graph struct {
	nodes  map[reflect.Type]*Node
	order  []reflect.Type
	linked bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[reflect.Type]*Node),
	}
}

// AddRegistration adds or replaces the node of a registered contract type.
// Duplicate dependencies are collapsed.
func (g *Graph) AddRegistration(contract, implementation reflect.Type, singleton bool, deps []reflect.Type, err error) {
	kind := Transient
	if singleton {
		kind = Singleton
	}

	g.put(&Node{
		Type:           contract,
		Implementation: implementation,
		Kind:           kind,
		Err:            err,
		Dependencies:   dedupe(deps),
	})
}

// AddInstance adds or replaces the node of a contract type satisfied by a
// provided instance. Instances have no dependencies.
func (g *Graph) AddInstance(contract, implementation reflect.Type) {
	g.put(&Node{
		Type:           contract,
		Implementation: implementation,
		Kind:           Instance,
	})
}

func (g *Graph) put(n *Node) {
	if _, exists := g.nodes[n.Type]; !exists {
		g.order = append(g.order, n.Type)
	}

	g.nodes[n.Type] = n
	g.linked = false
}

// Node returns the node for t, or nil.
func (g *Graph) Node(t reflect.Type) *Node {
	g.link()
	return g.nodes[t]
}

// Nodes returns every node in insertion order. Missing dependencies follow
// the registered nodes in the order they were first referenced.
func (g *Graph) Nodes() []*Node {
	g.link()

	out := make([]*Node, 0, len(g.order))
	for _, t := range g.order {
		out = append(out, g.nodes[t])
	}

	return out
}

// Size returns the number of nodes, including missing ones.
func (g *Graph) Size() int {
	g.link()
	return len(g.nodes)
}

// link adds placeholder nodes for missing dependencies and fills in
// dependents and depths.
func (g *Graph) link() {
	if g.linked {
		return
	}

	kept := g.order[:0]
	for _, t := range g.order {
		n := g.nodes[t]
		if n.Kind == Missing {
			delete(g.nodes, t)
			continue
		}
		n.Dependents = nil
		kept = append(kept, t)
	}
	g.order = kept

	registered := len(g.order)

	for i := 0; i < registered; i++ {
		n := g.nodes[g.order[i]]
		for _, dep := range n.Dependencies {
			if _, exists := g.nodes[dep]; !exists {
				g.nodes[dep] = &Node{Type: dep, Kind: Missing}
				g.order = append(g.order, dep)
			}
			d := g.nodes[dep]
			d.Dependents = append(d.Dependents, n.Type)
		}
	}

	g.calculateDepths()
	g.linked = true
}

func (g *Graph) calculateDepths() {
	const unvisited, visiting, done = 0, 1, 2
	state := make(map[reflect.Type]int, len(g.nodes))

	var visit func(t reflect.Type) int
	visit = func(t reflect.Type) int {
		n := g.nodes[t]
		switch state[t] {
		case visiting:
			return -1
		case done:
			return n.Depth
		}

		state[t] = visiting
		depth := 0
		for _, dep := range n.Dependencies {
			d := visit(dep)
			if d < 0 {
				depth = -1
				break
			}
			if d+1 > depth {
				depth = d + 1
			}
		}
		state[t] = done
		n.Depth = depth
		return depth
	}

	for _, t := range g.order {
		visit(t)
	}
}

// Validate walks every registered node in insertion order and returns the
// first problem found: a missing dependency, a cycle, or a construction
// error known in advance. Errors are of the same kinds resolution returns.
func (g *Graph) Validate() error {
	g.link()

	done := make(map[reflect.Type]bool, len(g.nodes))
	active := make(map[reflect.Type]int)
	var path []reflect.Type

	var visit func(t reflect.Type) error
	visit = func(t reflect.Type) error {
		if done[t] {
			return nil
		}

		n := g.nodes[t]
		if n.Kind == Missing {
			return &resolver.NotRegisteredError{Type: t, Path: clone(path)}
		}

		if start, ok := active[t]; ok {
			chain := append(clone(path[start:]), t)
			return &resolver.CyclicDependencyError{Type: t, Chain: chain}
		}

		if n.Err != nil {
			return &resolver.ConstructorError{Type: t, Implementation: n.Implementation, Cause: n.Err}
		}

		active[t] = len(path)
		path = append(path, t)

		for _, dep := range n.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(active, t)
		done[t] = true
		return nil
	}

	for _, t := range g.order {
		if g.nodes[t].Kind == Missing {
			continue
		}
		if err := visit(t); err != nil {
			return err
		}
	}

	return nil
}

// TopologicalSort returns the nodes with every dependency before its
// dependents, keeping insertion order among independent nodes.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	g.link()

	remaining := make(map[reflect.Type]int, len(g.nodes))
	for _, t := range g.order {
		remaining[t] = len(g.nodes[t].Dependencies)
	}

	result := make([]*Node, 0, len(g.nodes))
	emitted := make(map[reflect.Type]bool, len(g.nodes))

	for len(result) < len(g.nodes) {
		progress := false
		for _, t := range g.order {
			if emitted[t] || remaining[t] > 0 {
				continue
			}

			emitted[t] = true
			progress = true
			n := g.nodes[t]
			result = append(result, n)
			for _, dependent := range n.Dependents {
				remaining[dependent]--
			}
		}

		if !progress {
			return nil, fmt.Errorf("graph contains %d nodes but only %d could be sorted",
				len(g.nodes), len(result))
		}
	}

	return result, nil
}

// IsAcyclic reports whether the graph has no cycle.
func (g *Graph) IsAcyclic() bool {
	for _, n := range g.Nodes() {
		if n.Depth < 0 {
			return false
		}
	}

	return true
}

// Roots returns the nodes nothing depends on.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.Nodes() {
		if len(n.Dependents) == 0 {
			roots = append(roots, n)
		}
	}

	return roots
}

// Leaves returns the nodes without dependencies.
func (g *Graph) Leaves() []*Node {
	var leaves []*Node
	for _, n := range g.Nodes() {
		if len(n.Dependencies) == 0 {
			leaves = append(leaves, n)
		}
	}

	return leaves
}

func dedupe(types []reflect.Type) []reflect.Type {
	if len(types) == 0 {
		return nil
	}

	seen := make(map[reflect.Type]bool, len(types))
	out := make([]reflect.Type, 0, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	return out
}

func clone(types []reflect.Type) []reflect.Type {
	if len(types) == 0 {
		return nil
	}

	out := make([]reflect.Type, len(types))
	copy(out, types)
	return out
}
