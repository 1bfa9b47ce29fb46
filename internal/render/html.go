// Package render turns a lineage graph into output artifacts: a
// self-contained interactive HTML page driven by vis-network, or a Graphviz
// DOT file.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/zinrai/tflineage/internal/lineage"
)

//go:embed templates/graph.html.tmpl
var templateFS embed.FS

// HTMLOptions controls the rendered page.
type HTMLOptions struct {
	// Hierarchical pins nodes into fixed columns (folders, files, modules,
	// external entities, left to right). When false the page uses
	// force-directed physics instead.
	Hierarchical bool
	ColorBy      ColorBy
	Title        string
}

type visFont struct {
	Face  string `json:"face"`
	Size  int    `json:"size"`
	Color string `json:"color"`
}

type visFixed struct {
	X bool `json:"x"`
	Y bool `json:"y"`
}

type visNode struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Title   string    `json:"title"`
	Color   string    `json:"color"`
	Shape   string    `json:"shape"`
	Font    visFont   `json:"font"`
	Level   int       `json:"level"`
	X       *int      `json:"x,omitempty"`
	Y       *int      `json:"y,omitempty"`
	Physics *bool     `json:"physics,omitempty"`
	Fixed   *visFixed `json:"fixed,omitempty"`
}

type visEdge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Arrows string   `json:"arrows"`
	Dashes bool     `json:"dashes,omitempty"`
	Color  string   `json:"color,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Label  string   `json:"label,omitempty"`
	Font   *visFont `json:"font,omitempty"`
}

type pageData struct {
	Title   string
	Nodes   template.JS
	Edges   template.JS
	Options template.JS
}

// WriteHTML renders the graph as a single interactive HTML page.
func WriteHTML(w io.Writer, g *lineage.Graph, opts HTMLOptions) error {
	if opts.Title == "" {
		opts.Title = "Terraform lineage"
	}

	nodes := buildVisNodes(g, opts)
	edges := buildVisEdges(g)

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("encoding edges: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/graph.html.tmpl")
	if err != nil {
		return fmt.Errorf("parsing page template: %w", err)
	}
	return tmpl.Execute(w, pageData{
		Title:   opts.Title,
		Nodes:   template.JS(nodesJSON),
		Edges:   template.JS(edgesJSON),
		Options: template.JS(networkOptions(opts.Hierarchical)),
	})
}

func buildVisNodes(g *lineage.Graph, opts HTMLOptions) []visNode {
	nodes := make([]visNode, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, visNode{
			ID:    n.ID,
			Label: n.Label,
			Title: tooltip(n),
			Color: colorFor(n, opts.ColorBy),
			Shape: shapeFor(n),
			Font:  visFont{Face: "Segoe UI", Size: 16, Color: fontColorFor(n)},
			Level: n.Level,
		})
	}
	if opts.Hierarchical {
		pinColumns(g, nodes)
	}
	return nodes
}

func shapeFor(n *lineage.Node) string {
	switch n.Kind {
	case lineage.NodeFolder:
		return "ellipse"
	case lineage.NodeFile:
		return "diamond"
	case lineage.NodeModule:
		return "box"
	case lineage.NodeResource:
		return "triangle"
	default:
		return "ellipse"
	}
}

// column describes one vertical band of the pinned layout.
type column struct {
	x       int
	spacing int
}

// pinColumns assigns fixed coordinates per node category, mirroring the
// left-to-right reading order: folders, files, local modules, resources, git
// and registry modules, then the external entities on the far right.
func pinColumns(g *lineage.Graph, nodes []visNode) {
	columns := map[string]column{
		"rootFolder":     {x: -1200, spacing: 120},
		"subFolder":      {x: -700, spacing: 80},
		"file":           {x: 100, spacing: 160},
		"module":         {x: 500, spacing: 80},
		"resource":       {x: 600, spacing: 140},
		"gitModule":      {x: 700, spacing: 80},
		"gitEntity":      {x: 800, spacing: 80},
		"registryModule": {x: 900, spacing: 80},
		"registryEntity": {x: 1100, spacing: 80},
	}

	groups := map[string][]int{}
	for i := range nodes {
		key := columnKey(g.Node(nodes[i].ID))
		groups[key] = append(groups[key], i)
	}

	off := false
	for key, members := range groups {
		col := columns[key]
		for rank, i := range members {
			x := col.x
			y := rank*col.spacing - len(members)*col.spacing/2
			nodes[i].X = &x
			nodes[i].Y = &y
			nodes[i].Physics = &off
			nodes[i].Fixed = &visFixed{X: true, Y: true}
		}
	}
}

func columnKey(n *lineage.Node) string {
	switch n.Kind {
	case lineage.NodeFolder:
		if n.DisplayPath == "." {
			return "rootFolder"
		}
		return "subFolder"
	case lineage.NodeFile:
		return "file"
	case lineage.NodeResource:
		return "resource"
	case lineage.NodeRegistryEntity:
		return "registryEntity"
	case lineage.NodeGitEntity:
		return "gitEntity"
	}
	switch n.Type {
	case lineage.TypeRegistryModule:
		return "registryModule"
	case lineage.TypeGitModule:
		return "gitModule"
	default:
		return "module"
	}
}

func buildVisEdges(g *lineage.Graph) []visEdge {
	edges := make([]visEdge, 0, g.EdgeCount())
	for _, e := range g.Edges {
		ve := visEdge{From: e.From, To: e.To, Arrows: "to"}
		switch e.Kind {
		case lineage.EdgeContains:
			ve.Dashes = true
			ve.Color = "#666666"
			ve.Width = 2
		case lineage.EdgeDataDependency:
			ve.Color = "#ff6b6b"
			ve.Width = 1.5
			ve.Label = e.Label
			ve.Font = &visFont{Face: "Segoe UI", Size: 10, Color: "#ff6b6b"}
		}
		edges = append(edges, ve)
	}
	return edges
}

func networkOptions(hierarchical bool) string {
	if hierarchical {
		return `{
  "physics": { "enabled": false },
  "layout": { "hierarchical": { "enabled": false }, "randomSeed": 42, "improvedLayout": false },
  "interaction": { "dragNodes": true, "dragView": true, "zoomView": true },
  "edges": { "arrows": { "to": { "enabled": true } }, "smooth": { "type": "cubicBezier" }, "physics": false }
}`
	}
	return `{
  "physics": {
    "enabled": true,
    "solver": "forceAtlas2Based",
    "forceAtlas2Based": {
      "gravitationalConstant": -26,
      "centralGravity": 0.005,
      "springLength": 230,
      "springConstant": 0.18,
      "damping": 0.4,
      "avoidOverlap": 1.5
    },
    "stabilization": { "enabled": true, "iterations": 1000, "updateInterval": 25 }
  },
  "interaction": { "dragNodes": true, "dragView": true, "zoomView": true, "selectConnectedEdges": false },
  "nodes": { "borderWidth": 2, "borderWidthSelected": 3 },
  "edges": {
    "arrows": { "to": { "enabled": true, "scaleFactor": 0.8 } },
    "smooth": { "type": "continuous", "roundness": 0.1 },
    "length": 200,
    "width": 2
  }
}`
}
