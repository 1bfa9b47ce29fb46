package lineage

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zinrai/tflineage/internal/tfconfig"
)

// BuildOptions controls what the graph includes.
type BuildOptions struct {
	IncludeResources bool
}

// Build turns a parsed configuration into the lineage graph: folder and file
// containment on the left, modules and resources in the middle, registry and
// git entities on the right. All deduplication state is local to the call,
// so repeated builds in one process never share entities.
func Build(cfg *tfconfig.Config, opts BuildOptions) *Graph {
	b := &builder{
		cfg:              cfg,
		g:                NewGraph(),
		registryEntities: map[RegistrySource]string{},
		gitEntities:      map[string]string{},
	}
	b.addFoldersAndFiles(opts)
	b.addModules()
	if opts.IncludeResources {
		b.addResources()
	}
	b.addDependencyEdges()
	b.addRegistryEntities()
	b.addGitEntities()
	b.addLocalSourceEdges()
	return b.g
}

type builder struct {
	cfg *tfconfig.Config
	g   *Graph

	// Per-build entity lookup tables; see BuildOptions doc above.
	registryEntities map[RegistrySource]string
	gitEntities      map[string]string
}

func (b *builder) moduleIDs() []string {
	ids := make([]string, 0, len(b.cfg.Modules))
	for id := range b.cfg.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *builder) resourceIDs() []string {
	ids := make([]string, 0, len(b.cfg.Resources))
	for id := range b.cfg.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// addFoldersAndFiles creates one node per .tf file that declares something,
// one node per ancestor folder, and dashed containment edges between them.
func (b *builder) addFoldersAndFiles(opts BuildOptions) {
	type fileInfo struct {
		path string
		name string
		dir  string
	}
	files := map[string]fileInfo{}

	for _, id := range b.moduleIDs() {
		m := b.cfg.Modules[id]
		if m.SourceModule || m.FilePath == "" {
			continue
		}
		files["file:"+m.FilePath] = fileInfo{path: m.FilePath, name: m.FileName, dir: m.Dir}
	}
	if opts.IncludeResources {
		for _, id := range b.resourceIDs() {
			r := b.cfg.Resources[id]
			files["file:"+r.FilePath] = fileInfo{path: r.FilePath, name: r.FileName, dir: r.Dir}
		}
	}

	fileIDs := make([]string, 0, len(files))
	for id := range files {
		fileIDs = append(fileIDs, id)
	}
	sort.Strings(fileIDs)

	for _, fid := range fileIDs {
		f := files[fid]
		b.g.AddNode(&Node{
			ID:       fid,
			Kind:     NodeFile,
			Type:     TypeFile,
			Label:    f.name + "\n[terraform file]",
			Name:     f.name,
			Level:    LevelFile,
			FilePath: f.path,
			FileName: f.name,
		})
		b.addFolderChain(f.dir, fid)
	}
}

// addFolderChain adds the folder node for dir, links it to child, and walks
// up the hierarchy to the root.
func (b *builder) addFolderChain(dir, childID string) {
	display := path.Clean(dir)
	child := childID
	for {
		fid := "folder:" + display
		if !b.g.HasNode(fid) {
			name := path.Base(display)
			if display == "." {
				name = path.Base(filepath.ToSlash(b.cfg.RootDir))
			}
			b.g.AddNode(&Node{
				ID:          fid,
				Kind:        NodeFolder,
				Type:        TypeFolder,
				Label:       name + "\n[folder]",
				Name:        name,
				Level:       LevelFolder,
				FolderPath:  filepath.Join(b.cfg.RootDir, filepath.FromSlash(display)),
				DisplayPath: display,
			})
		}
		b.g.addEdge(Edge{From: fid, To: child, Kind: EdgeContains})

		if display == "." {
			return
		}
		child = fid
		display = path.Dir(display)
	}
}

func (b *builder) addModules() {
	for _, id := range b.moduleIDs() {
		m := b.cfg.Modules[id]
		n := &Node{
			ID:       m.ID,
			Kind:     NodeModule,
			Name:     m.Name,
			Level:    LevelModule,
			Dir:      m.Dir,
			Source:   m.Source,
			Version:  m.Version,
			FilePath: m.FilePath,
			FileName: m.FileName,
		}
		switch {
		case m.SourceModule:
			n.Type = TypeSourceModule
			n.Label = m.Name + "\n[source module]"
		case Classify(m.Source) == KindRegistry:
			n.Type = TypeRegistryModule
			n.Label = m.Name + "\n[registry]"
		case Classify(m.Source) == KindGit:
			n.Type = TypeGitModule
			n.Label = m.Name + "\n[git module]"
		case Classify(m.Source) == KindRemote:
			n.Type = TypeRemoteModule
			n.Label = m.Name + "\n[module]"
		default:
			n.Type = TypeLocalModule
			n.Label = m.Name + "\n[module]"
		}
		b.g.AddNode(n)

		if !m.SourceModule && m.FilePath != "" {
			b.g.addEdge(Edge{From: "file:" + m.FilePath, To: m.ID, Kind: EdgeContains})
		}
	}
}

func (b *builder) addResources() {
	for _, id := range b.resourceIDs() {
		r := b.cfg.Resources[id]
		b.g.AddNode(&Node{
			ID:       r.ID,
			Kind:     NodeResource,
			Type:     TypeResource,
			Label:    r.Address() + "\n[terraform resource]",
			Name:     r.Name,
			Level:    LevelModule,
			Dir:      r.Dir,
			FilePath: r.FilePath,
			FileName: r.FileName,
		})
		b.g.addEdge(Edge{From: "file:" + r.FilePath, To: r.ID, Kind: EdgeContains})

		for _, dep := range r.ExplicitDeps {
			for _, tgt := range b.resolveRef(dep) {
				if b.g.HasNode(tgt) {
					b.g.AddEdge(r.ID, tgt, EdgeDependency)
				}
			}
		}
	}
}

// addDependencyEdges draws depends_on and implicit input-reference edges.
// Registry and git modules are external: nothing depends FROM them, so their
// declared dependencies are skipped. Implicit references between two modules
// declared in the same file are also skipped to keep intra-file wiring out
// of the picture.
func (b *builder) addDependencyEdges() {
	for _, id := range b.moduleIDs() {
		m := b.cfg.Modules[id]
		if b.isExternalModule(m) {
			continue
		}

		for _, dep := range m.ExplicitDeps {
			for _, tgt := range b.resolveRef(dep) {
				if tgt != m.ID && b.g.HasNode(tgt) {
					b.g.AddEdge(m.ID, tgt, EdgeDependency)
				}
			}
		}

		for _, name := range m.ModuleRefs {
			for _, tgt := range b.cfg.NameIndex[name] {
				if tgt == m.ID || !b.g.HasNode(tgt) {
					continue
				}
				if other, ok := b.cfg.Modules[tgt]; ok && !other.SourceModule && other.FilePath == m.FilePath {
					continue
				}
				b.g.addEdge(Edge{From: m.ID, To: tgt, Kind: EdgeDataDependency, Label: "uses " + name})
			}
		}
	}
}

func (b *builder) isExternalModule(m *tfconfig.Module) bool {
	k := Classify(m.Source)
	return !m.SourceModule && (k == KindRegistry || k == KindGit)
}

// resolveRef maps a dotted reference to node IDs through the name index.
func (b *builder) resolveRef(ref string) []string {
	if name, ok := strings.CutPrefix(ref, "module."); ok {
		name = strings.SplitN(name, ".", 2)[0]
		return b.cfg.NameIndex[name]
	}
	return b.cfg.NameIndex[ref]
}

// addRegistryEntities creates one entity node per distinct registry address
// (namespace, name, provider, submodule) and links every referencing module
// to it. Two modules with the same address share one entity; distinct
// submodules get distinct entities.
func (b *builder) addRegistryEntities() {
	for _, id := range b.moduleIDs() {
		m := b.cfg.Modules[id]
		rs, ok := ParseRegistrySource(m.Source)
		if !ok {
			continue
		}

		eid, exists := b.registryEntities[rs]
		if !exists {
			eid = "registry:" + rs.String()
			b.registryEntities[rs] = eid
			b.g.AddNode(&Node{
				ID:          eid,
				Kind:        NodeRegistryEntity,
				Type:        TypeRegistryEntity,
				Label:       rs.Name + "\n" + rs.SubmoduleLabel() + "\n[public registry]",
				Name:        rs.Name,
				Level:       LevelEntity,
				Source:      m.Source,
				RegistryURL: rs.URL(),
			})
		}
		b.g.AddEdge(m.ID, eid, EdgeDependency)
	}
}

// addGitEntities mirrors addRegistryEntities for git repository sources,
// keyed by the raw source string.
func (b *builder) addGitEntities() {
	for _, id := range b.moduleIDs() {
		m := b.cfg.Modules[id]
		if m.SourceModule || Classify(m.Source) != KindGit {
			continue
		}

		eid, exists := b.gitEntities[m.Source]
		if !exists {
			gs := ParseGitSource(m.Source)
			eid = "git:" + m.Source
			b.gitEntities[m.Source] = eid
			b.g.AddNode(&Node{
				ID:     eid,
				Kind:   NodeGitEntity,
				Type:   TypeGitEntity,
				Label:  gs.Repo + "\n" + gs.PathLabel() + "\n[git repository]",
				Name:   gs.Repo,
				Level:  LevelEntity,
				Source: m.Source,
				GitURL: gs.URL,
			})
		}
		b.g.AddEdge(m.ID, eid, EdgeDependency)
	}
}

// addLocalSourceEdges links modules with ./ or ../ sources to the source
// module node standing for the referenced directory.
func (b *builder) addLocalSourceEdges() {
	for _, id := range b.moduleIDs() {
		m := b.cfg.Modules[id]
		if m.SourceModule || !strings.HasPrefix(m.Source, "./") && !strings.HasPrefix(m.Source, "../") {
			continue
		}
		target := path.Base(path.Clean(path.Join(m.Dir, m.Source)))
		for _, tgt := range b.cfg.NameIndex[target] {
			if other, ok := b.cfg.Modules[tgt]; ok && other.SourceModule && tgt != m.ID {
				b.g.AddEdge(m.ID, tgt, EdgeDependency)
			}
		}
	}
}
