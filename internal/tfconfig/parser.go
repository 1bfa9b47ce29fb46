package tfconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "module", LabelNames: []string{"name"}},
		{Type: "resource", LabelNames: []string{"type", "name"}},
	},
}

// Parser reads Terraform directories from a filesystem. The filesystem is
// abstracted so tests can run against an in-memory tree.
type Parser struct {
	fs afero.Fs
}

func NewParser(fs afero.Fs) *Parser {
	return &Parser{fs: fs}
}

// ParseDirectory walks root for .tf files (skipping .terraform directories),
// parses every module and resource block, and follows local module sources
// one level deep so each referenced directory appears as a single source
// module entry. Files that fail to parse are skipped.
func (p *Parser) ParseDirectory(root string) (*Config, error) {
	exists, err := afero.DirExists(p.fs, root)
	if err != nil {
		return nil, fmt.Errorf("checking root directory %s: %w", root, err)
	}
	if !exists {
		return nil, fmt.Errorf("root directory %s does not exist", root)
	}

	cfg := &Config{
		RootDir:   root,
		Modules:   map[string]*Module{},
		Resources: map[string]*Resource{},
		NameIndex: map[string][]string{},
	}
	w := &walker{fs: p.fs, root: root, cfg: cfg, seen: map[string]bool{}}
	if err := w.parseTree(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

type walker struct {
	fs   afero.Fs
	root string
	cfg  *Config
	seen map[string]bool
}

func (w *walker) parseTree(dir string) error {
	if w.seen[dir] {
		return nil
	}
	w.seen[dir] = true

	files, err := w.terraformFiles(dir)
	if err != nil {
		return err
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		w.parseFile(parser, file)
	}
	return nil
}

// terraformFiles returns every .tf file under dir, excluding anything inside
// a .terraform working directory.
func (w *walker) terraformFiles(dir string) ([]string, error) {
	var files []string
	err := afero.Walk(w.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable path", "path", p, "error", err)
			return nil
		}
		if info.IsDir() && info.Name() == ".terraform" {
			return filepath.SkipDir
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".tf") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (w *walker) parseFile(parser *hclparse.Parser, file string) {
	src, err := afero.ReadFile(w.fs, file)
	if err != nil {
		slog.Debug("skipping unreadable file", "file", file, "error", err)
		return
	}

	f, diags := parser.ParseHCL(src, file)
	if diags.HasErrors() {
		slog.Debug("skipping file with parse errors", "file", file, "error", diags.Error())
		return
	}

	// PartialContent: files also contain variable, output, provider and
	// terraform blocks that the graph does not need.
	content, _, diags := f.Body.PartialContent(fileSchema)
	if diags.HasErrors() {
		slog.Debug("skipping file content", "file", file, "error", diags.Error())
		return
	}

	rel := w.relDir(filepath.Dir(file))
	for _, block := range content.Blocks {
		switch block.Type {
		case "module":
			w.addModule(block, file, rel)
		case "resource":
			w.addResource(block, file, rel)
		}
	}
}

func (w *walker) addModule(block *hcl.Block, file, rel string) {
	name := block.Labels[0]
	attrs, _ := block.Body.JustAttributes()

	m := &Module{
		ID:       "module:" + rel + ":" + name,
		Name:     name,
		Dir:      rel,
		FilePath: file,
		FileName: filepath.Base(file),
	}

	for attrName, attr := range attrs {
		switch attrName {
		case "source":
			m.Source = constantString(attr)
		case "version":
			m.Version = versionConstraint(attr)
		case "depends_on":
			m.ExplicitDeps = referenceStrings(attr)
		default:
			for _, ref := range moduleReferences(attr) {
				m.ModuleRefs = appendUnique(m.ModuleRefs, ref)
			}
		}
	}
	sort.Strings(m.ModuleRefs)

	w.cfg.Modules[m.ID] = m
	w.cfg.NameIndex[name] = append(w.cfg.NameIndex[name], m.ID)

	if isLocalSource(m.Source) {
		w.followLocalSource(file, m.Source)
	}
}

func (w *walker) addResource(block *hcl.Block, file, rel string) {
	attrs, _ := block.Body.JustAttributes()

	r := &Resource{
		ID:       "resource:" + rel + ":" + block.Labels[0] + "." + block.Labels[1],
		Type:     block.Labels[0],
		Name:     block.Labels[1],
		Dir:      rel,
		FilePath: file,
		FileName: filepath.Base(file),
	}
	if dep, ok := attrs["depends_on"]; ok {
		r.ExplicitDeps = referenceStrings(dep)
	}

	w.cfg.Resources[r.ID] = r
	w.cfg.NameIndex[r.Address()] = append(w.cfg.NameIndex[r.Address()], r.ID)
}

// followLocalSource records the directory behind a ./ or ../ module source as
// a single source module entry. The directory is not recursed into for its
// own module blocks; it stands for the module as a whole.
func (w *walker) followLocalSource(file, source string) {
	dir := filepath.Clean(filepath.Join(filepath.Dir(file), filepath.FromSlash(source)))
	exists, err := afero.DirExists(w.fs, dir)
	if err != nil || !exists {
		slog.Debug("local module source does not resolve", "source", source, "error", err)
		return
	}
	if w.seen[dir] {
		return
	}
	w.seen[dir] = true

	rel := w.relDir(dir)
	name := filepath.Base(dir)
	m := &Module{
		ID:           "sourcemod:" + rel + ":" + name,
		Name:         name,
		Dir:          rel,
		FilePath:     dir,
		FileName:     "[source module]",
		SourceModule: true,
	}
	w.cfg.Modules[m.ID] = m
	w.cfg.NameIndex[name] = append(w.cfg.NameIndex[name], m.ID)
}

func (w *walker) relDir(dir string) string {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	return path.Clean(filepath.ToSlash(rel))
}

func isLocalSource(source string) bool {
	return strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}

// versionConstraint returns the raw constraint string when it parses as a
// go-version constraint, and empty otherwise.
func versionConstraint(attr *hcl.Attribute) string {
	raw := constantString(attr)
	if raw == "" {
		return ""
	}
	if _, err := goversion.NewConstraint(raw); err != nil {
		slog.Debug("ignoring invalid module version constraint", "version", raw)
		return ""
	}
	return raw
}
