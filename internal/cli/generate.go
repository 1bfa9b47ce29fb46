package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zinrai/tflineage/internal/lineage"
	"github.com/zinrai/tflineage/internal/render"
	"github.com/zinrai/tflineage/internal/tfconfig"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dependency graph from a Terraform directory",
	Long: `Parse a Terraform root directory, build the module dependency graph and
write it as an interactive HTML visualization or a Graphviz DOT file. The
output filename gets a timestamp inserted before its extension.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("input", "", "Terraform root directory")
	generateCmd.Flags().String("output", "", "Output file path")
	generateCmd.Flags().String("format", "html", "Output format (html, dot)")
	generateCmd.Flags().String("layout", "hierarchical", "Layout mode (hierarchical, flat)")
	generateCmd.Flags().String("color-by", "type", "Color strategy (type, environment, status)")
	generateCmd.Flags().Bool("include-resources", false, "Include Terraform resource nodes")

	for _, flag := range []string{"input", "output", "format", "layout", "color-by", "include-resources"} {
		if err := viper.BindPFlag(flag, generateCmd.Flags().Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "flag", flag, "error", err)
		}
	}
	for _, flag := range []string{"input", "output"} {
		if err := generateCmd.MarkFlagRequired(flag); err != nil {
			slog.Error("Error marking flag required", "flag", flag, "error", err)
		}
	}
}

func runGenerate(_ *cobra.Command, _ []string) error {
	if viper.GetBool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	format := viper.GetString("format")
	switch format {
	case "html", "dot":
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	colorBy := render.ColorBy(viper.GetString("color-by"))
	switch colorBy {
	case render.ColorByType, render.ColorByEnvironment, render.ColorByStatus:
	default:
		return fmt.Errorf("unsupported color strategy %q", colorBy)
	}

	root, err := filepath.Abs(viper.GetString("input"))
	if err != nil {
		return fmt.Errorf("resolving input directory: %w", err)
	}
	outPath := timestampedPath(viper.GetString("output"), time.Now())

	slog.Info("Parsing Terraform directory", "dir", root)
	parser := tfconfig.NewParser(afero.NewOsFs())
	cfg, err := parser.ParseDirectory(root)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", root, err)
	}
	slog.Info("Parsed configuration",
		"modules", len(cfg.Modules),
		"resources", len(cfg.Resources),
		"names", len(cfg.NameIndex))
	for id, m := range cfg.Modules {
		slog.Debug("module found", "id", id, "source", m.Source)
	}

	slog.Info("Building dependency graph")
	g := lineage.Build(cfg, lineage.BuildOptions{
		IncludeResources: viper.GetBool("include-resources"),
	})
	slog.Info("Graph built", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	for _, e := range g.Edges {
		slog.Debug("edge", "from", e.From, "to", e.To, "kind", string(e.Kind))
	}

	if cycles := lineage.FindCycles(g); len(cycles) > 0 {
		slog.Warn("Detected circular dependencies", "cycles", len(cycles))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	switch format {
	case "dot":
		err = render.WriteDOT(out, g, colorBy)
	default:
		err = render.WriteHTML(out, g, render.HTMLOptions{
			Hierarchical: strings.EqualFold(viper.GetString("layout"), "hierarchical"),
			ColorBy:      colorBy,
			Title:        "Terraform lineage: " + filepath.Base(root),
		})
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	slog.Info("Done", "output", outPath)
	return nil
}

// timestampedPath inserts _HHMMSSDDMMYYYY between the file stem and its
// extension so successive runs never overwrite each other.
func timestampedPath(p string, now time.Time) string {
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	return stem + "_" + now.Format("15040502012006") + ext
}
