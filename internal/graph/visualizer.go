package graph

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/junioryono/ioc/internal/resolver"
)

// Visualizer provides methods to visualize the dependency graph
type Visualizer struct {
	graph *Graph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *Graph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format
func (v *Visualizer) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	nodes := v.graph.Nodes()

	fmt.Fprintln(bw, "digraph dependencies {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box];")

	ids := make(map[reflect.Type]string, len(nodes))
	for i, n := range nodes {
		id := fmt.Sprintf("n%d", i)
		ids[n.Type] = id

		fmt.Fprintf(bw, "  %s [label=\"%s\", fillcolor=\"%s\", style=filled];\n",
			id, v.formatNodeLabel(n), nodeColor(n))
	}

	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			fmt.Fprintf(bw, "  %s -> %s;\n", ids[n.Type], ids[dep])
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// WriteText writes a text representation of the graph, grouped by depth.
func (v *Visualizer) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Dependency Graph:")
	fmt.Fprintln(bw, "=================")
	fmt.Fprintln(bw)

	levels := make(map[int][]*Node)
	maxDepth := -1
	var cyclic []*Node

	for _, n := range v.graph.Nodes() {
		if n.Depth < 0 {
			cyclic = append(cyclic, n)
			continue
		}
		levels[n.Depth] = append(levels[n.Depth], n)
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}

	for depth := 0; depth <= maxDepth; depth++ {
		nodes, ok := levels[depth]
		if !ok {
			continue
		}

		fmt.Fprintf(bw, "Level %d:\n", depth)
		fmt.Fprintln(bw, "--------")
		for _, n := range nodes {
			writeNodeDetails(bw, n, "  ")
		}
		fmt.Fprintln(bw)
	}

	if len(cyclic) > 0 {
		fmt.Fprintln(bw, "Nodes in Cycles:")
		fmt.Fprintln(bw, "----------------")
		for _, n := range cyclic {
			writeNodeDetails(bw, n, "  ")
		}
		fmt.Fprintln(bw)
	}

	v.writeStatistics(bw)

	return bw.Flush()
}

func (v *Visualizer) formatNodeLabel(n *Node) string {
	label := resolver.FormatType(n.Type)
	if n.Implementation != nil && n.Implementation != n.Type {
		label += "\\n" + resolver.FormatType(n.Implementation)
	}

	return fmt.Sprintf("%s\\n%s", label, n.Kind)
}

func nodeColor(n *Node) string {
	switch n.Kind {
	case Singleton:
		return "lightblue"
	case Transient:
		return "lightyellow"
	case Instance:
		return "lightgreen"
	default:
		return "lightgray"
	}
}

func writeNodeDetails(w io.Writer, n *Node, indent string) {
	fmt.Fprintf(w, "%s%s\n", indent, resolver.FormatType(n.Type))
	fmt.Fprintf(w, "%s  Lifetime: %s\n", indent, n.Kind)

	if n.Implementation != nil && n.Implementation != n.Type {
		fmt.Fprintf(w, "%s  Implementation: %s\n", indent, resolver.FormatType(n.Implementation))
	}

	if len(n.Dependencies) > 0 {
		fmt.Fprintf(w, "%s  Dependencies: [%s]\n", indent, joinTypes(n.Dependencies))
	}

	if len(n.Dependents) > 0 {
		fmt.Fprintf(w, "%s  Dependents: [%s]\n", indent, joinTypes(n.Dependents))
	}
}

func (v *Visualizer) writeStatistics(w io.Writer) {
	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintln(w, "-----------")
	fmt.Fprintf(w, "  Total nodes: %d\n", v.graph.Size())
	fmt.Fprintf(w, "  Total edges: %d\n", v.countEdges())
	fmt.Fprintf(w, "  Root nodes (no dependents): %d\n", len(v.graph.Roots()))
	fmt.Fprintf(w, "  Leaf nodes (no dependencies): %d\n", len(v.graph.Leaves()))

	if v.graph.IsAcyclic() {
		fmt.Fprintln(w, "  Cycles: None (graph is acyclic)")
	} else {
		fmt.Fprintln(w, "  Cycles: DETECTED (graph contains circular dependencies)")
	}
}

func (v *Visualizer) countEdges() int {
	count := 0
	for _, n := range v.graph.Nodes() {
		count += len(n.Dependencies)
	}
	return count
}

func joinTypes(types []reflect.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = resolver.FormatType(t)
	}
	return strings.Join(parts, ", ")
}
