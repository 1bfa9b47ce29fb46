package lineage

// NodeKind is the structural category of a graph node.
type NodeKind string

const (
	NodeFolder         NodeKind = "folder"
	NodeFile           NodeKind = "terraform_file"
	NodeModule         NodeKind = "module"
	NodeResource       NodeKind = "resource"
	NodeRegistryEntity NodeKind = "registry_entity"
	NodeGitEntity      NodeKind = "git_entity"
)

// ModuleType refines module nodes by what their source points at. For
// non-module nodes it repeats the kind so renderers can key off one field.
type ModuleType string

const (
	TypeFolder         ModuleType = "folder"
	TypeFile           ModuleType = "terraform_file"
	TypeResource       ModuleType = "terraform_resource"
	TypeLocalModule    ModuleType = "local_module"
	TypeSourceModule   ModuleType = "source_module"
	TypeRegistryModule ModuleType = "registry_module"
	TypeGitModule      ModuleType = "git_module"
	TypeRemoteModule   ModuleType = "remote_module"
	TypeRegistryEntity ModuleType = "registry_entity"
	TypeGitEntity      ModuleType = "git_entity"
)

// Column levels, left to right.
const (
	LevelFolder = 0
	LevelFile   = 1
	LevelModule = 2
	LevelEntity = 3
)

type Node struct {
	ID    string
	Kind  NodeKind
	Type  ModuleType
	Label string
	Name  string
	Level int

	Dir      string
	Source   string
	Version  string
	FilePath string
	FileName string

	// Folder nodes only.
	FolderPath  string
	DisplayPath string

	// Registry entities only: the registry page the tooltip links to.
	RegistryURL string

	// Git entities only: the repository browse link.
	GitURL string
}

type EdgeKind string

const (
	// EdgeDependency is a plain module/resource dependency.
	EdgeDependency EdgeKind = "dependency"
	// EdgeContains is structural containment (folder->file, file->module),
	// drawn dashed.
	EdgeContains EdgeKind = "contains"
	// EdgeDataDependency is an implicit reference through module inputs,
	// drawn with a "uses <name>" label.
	EdgeDataDependency EdgeKind = "data_dependency"
)

type Edge struct {
	From  string
	To    string
	Kind  EdgeKind
	Label string
}

// Graph is a directed graph with insertion-ordered nodes so renders are
// deterministic.
type Graph struct {
	nodes map[string]*Node
	order []string
	Edges []Edge
}

func NewGraph() *Graph {
	return &Graph{nodes: map[string]*Node{}}
}

func (g *Graph) AddNode(n *Node) {
	if _, exists := g.nodes[n.ID]; exists {
		return
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

func (g *Graph) AddEdge(from, to string, kind EdgeKind) {
	g.addEdge(Edge{From: from, To: to, Kind: kind})
}

func (g *Graph) addEdge(e Edge) {
	for _, existing := range g.Edges {
		if existing == e {
			return
		}
	}
	g.Edges = append(g.Edges, e)
}

// NodeCount and EdgeCount report graph sizes for logging.
func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.Edges) }
