package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/zinrai/tflineage/internal/lineage"
)

// WriteDOT renders the graph as Graphviz DOT for tooling that prefers dot
// over an interactive page.
func WriteDOT(w io.Writer, g *lineage.Graph, colorBy ColorBy) error {
	var b strings.Builder
	b.WriteString("digraph terraform {\n")
	b.WriteString("  rankdir = LR;\n")
	b.WriteString("  compound = true;\n\n")

	b.WriteString("  // Node styles\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  %s [label=%s, fillcolor=%q, style=\"filled,rounded\", shape=%s];\n",
			quote(n.ID), quote(dotLabel(n)), colorFor(n, colorBy), dotShape(n))
	}

	b.WriteString("\n  // Dependencies\n")
	for _, e := range g.Edges {
		switch e.Kind {
		case lineage.EdgeContains:
			fmt.Fprintf(&b, "  %s -> %s [style=dashed, color=\"#666666\"];\n", quote(e.From), quote(e.To))
		case lineage.EdgeDataDependency:
			fmt.Fprintf(&b, "  %s -> %s [style=solid, color=\"#ff6b6b\", label=%s];\n",
				quote(e.From), quote(e.To), quote(e.Label))
		default:
			fmt.Fprintf(&b, "  %s -> %s [style=solid];\n", quote(e.From), quote(e.To))
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func dotLabel(n *lineage.Node) string {
	return strings.ReplaceAll(n.Label, "\n", "\\n")
}

func dotShape(n *lineage.Node) string {
	switch n.Kind {
	case lineage.NodeFolder:
		return "folder"
	case lineage.NodeFile:
		return "note"
	case lineage.NodeResource:
		return "triangle"
	case lineage.NodeRegistryEntity, lineage.NodeGitEntity:
		return "ellipse"
	default:
		return "box"
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
