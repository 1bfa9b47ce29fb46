package render

import (
	"fmt"
	"strings"

	"github.com/zinrai/tflineage/internal/lineage"
)

// ColorBy selects the node coloring strategy.
type ColorBy string

const (
	ColorByType        ColorBy = "type"
	ColorByEnvironment ColorBy = "environment"
	ColorByStatus      ColorBy = "status"
)

// Fixed classification-to-color table shared by every strategy for the node
// types whose color carries meaning.
const (
	colorFolder         = "#ffc107" // amber
	colorFile           = "#9e9e9e" // gray
	colorResource       = "#00bcd4" // cyan
	colorRegistryModule = "#795548" // brown
	colorRegistryEntity = "#4caf50" // green
	colorGitModule      = "#3f51b5" // indigo
	colorGitEntity      = "#2196f3" // blue
	colorSourceModule   = "#2196f3" // blue
	colorModule         = "#ff9800" // orange
)

func colorFor(n *lineage.Node, colorBy ColorBy) string {
	switch colorBy {
	case ColorByEnvironment:
		return environmentColor(n)
	case ColorByStatus:
		return statusColor(n)
	default:
		return typeColor(n)
	}
}

func typeColor(n *lineage.Node) string {
	switch n.Type {
	case lineage.TypeFolder:
		return colorFolder
	case lineage.TypeFile:
		return colorFile
	case lineage.TypeResource:
		return colorResource
	case lineage.TypeSourceModule:
		return colorSourceModule
	case lineage.TypeRegistryModule:
		return colorRegistryModule
	case lineage.TypeRegistryEntity:
		return colorRegistryEntity
	case lineage.TypeGitModule:
		return colorGitModule
	case lineage.TypeGitEntity:
		return colorGitEntity
	default:
		return colorModule
	}
}

func statusColor(n *lineage.Node) string {
	if n.Type == lineage.TypeSourceModule {
		return "#e91e63" // pink, to make reused local sources stand out
	}
	if n.Kind == lineage.NodeModule {
		switch n.Type {
		case lineage.TypeRegistryModule, lineage.TypeGitModule:
			return typeColor(n)
		}
		return "#03a9f4"
	}
	return typeColor(n)
}

// environmentColor keys module colors off the environment inferred from the
// directory path; structural and external nodes keep their type colors.
func environmentColor(n *lineage.Node) string {
	switch n.Kind {
	case lineage.NodeModule:
	default:
		return typeColor(n)
	}
	switch n.Type {
	case lineage.TypeRegistryModule, lineage.TypeGitModule:
		return typeColor(n)
	}

	base := map[string]string{
		"dev":     "#4caf50",
		"test":    "#2196f3",
		"stage":   "#9c27b0",
		"staging": "#9c27b0",
		"prod":    "#f44336",
	}
	color, ok := base[inferEnvironment(n.Dir)]
	if !ok {
		color = "#607d8b"
	}
	if n.Type == lineage.TypeSourceModule {
		return darken(color)
	}
	return color
}

func inferEnvironment(dir string) string {
	s := strings.ToLower(dir)
	for _, env := range []string{"staging", "stage", "prod", "dev", "test"} {
		if strings.Contains(s, "/"+env) || strings.HasPrefix(s, env) || strings.HasSuffix(s, env) {
			return env
		}
	}
	return ""
}

// darken reduces each RGB channel of a #rrggbb color by 30%.
func darken(hexColor string) string {
	var r, g, b int
	if _, err := fmt.Sscanf(hexColor, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hexColor
	}
	return fmt.Sprintf("#%02x%02x%02x", r*7/10, g*7/10, b*7/10)
}

// fontColorFor keeps labels readable on dark backgrounds.
func fontColorFor(n *lineage.Node) string {
	switch n.Type {
	case lineage.TypeRegistryModule, lineage.TypeGitModule, lineage.TypeGitEntity:
		return "white"
	}
	return "black"
}
