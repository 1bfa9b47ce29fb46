package lineage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinrai/tflineage/internal/tfconfig"
)

func testConfig(modules ...*tfconfig.Module) *tfconfig.Config {
	cfg := &tfconfig.Config{
		RootDir:   "/infra",
		Modules:   map[string]*tfconfig.Module{},
		Resources: map[string]*tfconfig.Resource{},
		NameIndex: map[string][]string{},
	}
	for _, m := range modules {
		cfg.Modules[m.ID] = m
		cfg.NameIndex[m.Name] = append(cfg.NameIndex[m.Name], m.ID)
	}
	return cfg
}

func module(name, source string) *tfconfig.Module {
	return &tfconfig.Module{
		ID:       "module:.:" + name,
		Name:     name,
		Dir:      ".",
		Source:   source,
		FilePath: "/infra/main.tf",
		FileName: "main.tf",
	}
}

func edgesFrom(g *Graph, from string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

func nodesOfKind(g *Graph, kind NodeKind) []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestBuildRegistryEntityDeduplication(t *testing.T) {
	t.Parallel()

	a := module("network_a", "terraform-google-modules/network/google")
	b := module("network_b", "terraform-google-modules/network/google")
	g := Build(testConfig(a, b), BuildOptions{})

	entities := nodesOfKind(g, NodeRegistryEntity)
	require.Len(t, entities, 1)
	entity := entities[0]

	assert.Equal(t, TypeRegistryEntity, entity.Type)
	assert.Equal(t, "https://registry.terraform.io/modules/terraform-google-modules/network/google", entity.RegistryURL)
	assert.Contains(t, entity.Label, "[public registry]")

	var incoming int
	for _, e := range g.Edges {
		if e.To == entity.ID {
			incoming++
		}
	}
	assert.Equal(t, 2, incoming, "both modules should link to the shared entity")
}

func TestBuildDistinctSubmodulesGetDistinctEntities(t *testing.T) {
	t.Parallel()

	root := module("network", "terraform-google-modules/network/google")
	peering := module("peering", "terraform-google-modules/network/google//modules/network-peering")
	g := Build(testConfig(root, peering), BuildOptions{})

	entities := nodesOfKind(g, NodeRegistryEntity)
	require.Len(t, entities, 2)

	// Both entities point at the same registry page regardless of submodule.
	assert.Equal(t, entities[0].RegistryURL, entities[1].RegistryURL)
}

func TestBuildRegistryEntityCount(t *testing.T) {
	t.Parallel()

	// 7 registry modules with distinct addresses plus 4 local modules.
	var modules []*tfconfig.Module
	for i := 0; i < 7; i++ {
		modules = append(modules, module(
			fmt.Sprintf("registry_%d", i),
			fmt.Sprintf("acme/service-%d/aws", i),
		))
	}
	for i := 0; i < 4; i++ {
		modules = append(modules, module(fmt.Sprintf("local_%d", i), "./modules/local"))
	}
	g := Build(testConfig(modules...), BuildOptions{})

	assert.Len(t, nodesOfKind(g, NodeRegistryEntity), 7)
	assert.Len(t, nodesOfKind(g, NodeModule), 11)
}

func TestBuildModuleTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		expected ModuleType
		label    string
	}{
		{name: "local", source: "./modules/vpc", expected: TypeLocalModule, label: "[module]"},
		{name: "registry", source: "terraform-aws-modules/vpc/aws", expected: TypeRegistryModule, label: "[registry]"},
		{name: "git", source: "git::https://github.com/acme/infra.git//vpc", expected: TypeGitModule, label: "[git module]"},
		{name: "remote", source: "https://example.com/vpc.zip", expected: TypeRemoteModule, label: "[module]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := module("m", tt.source)
			g := Build(testConfig(m), BuildOptions{})
			n := g.Node(m.ID)
			require.NotNil(t, n)
			assert.Equal(t, tt.expected, n.Type)
			assert.Contains(t, n.Label, tt.label)
		})
	}
}

func TestBuildGitEntity(t *testing.T) {
	t.Parallel()

	a := module("vpc", "git::https://github.com/acme/infra.git//vpc")
	b := module("vpc_again", "git::https://github.com/acme/infra.git//vpc")
	g := Build(testConfig(a, b), BuildOptions{})

	entities := nodesOfKind(g, NodeGitEntity)
	require.Len(t, entities, 1)
	assert.Equal(t, "https://github.com/acme/infra/tree/main/vpc", entities[0].GitURL)
	assert.Contains(t, entities[0].Label, "[git repository]")
}

func TestBuildNoDependencyEdgesFromExternalModules(t *testing.T) {
	t.Parallel()

	local := module("base", "./modules/base")
	registry := module("network", "terraform-aws-modules/vpc/aws")
	registry.ExplicitDeps = []string{"module.base"}
	registry.ModuleRefs = []string{"base"}

	g := Build(testConfig(local, registry), BuildOptions{})

	for _, e := range edgesFrom(g, registry.ID) {
		assert.Equal(t, EdgeDependency, e.Kind)
		assert.Equal(t, "registry:terraform-aws-modules/vpc/aws", e.To,
			"registry modules may only link to their entity")
	}
}

func TestBuildImplicitReferenceEdges(t *testing.T) {
	t.Parallel()

	vpc := module("vpc", "./modules/vpc")
	app := module("app", "./modules/app")
	app.FilePath = "/infra/app.tf"
	app.FileName = "app.tf"
	app.ModuleRefs = []string{"vpc"}

	sameFile := module("sidecar", "./modules/sidecar")
	sameFile.ModuleRefs = []string{"vpc"} // same file as vpc, no edge

	g := Build(testConfig(vpc, app, sameFile), BuildOptions{})

	var dataEdges []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeDataDependency {
			dataEdges = append(dataEdges, e)
		}
	}
	require.Len(t, dataEdges, 1)
	assert.Equal(t, app.ID, dataEdges[0].From)
	assert.Equal(t, vpc.ID, dataEdges[0].To)
	assert.Equal(t, "uses vpc", dataEdges[0].Label)
}

func TestBuildLocalSourceEdges(t *testing.T) {
	t.Parallel()

	caller := module("network", "./modules/vpc")
	source := &tfconfig.Module{
		ID:           "sourcemod:modules/vpc:vpc",
		Name:         "vpc",
		Dir:          "modules/vpc",
		FilePath:     "/infra/modules/vpc",
		FileName:     "[source module]",
		SourceModule: true,
	}
	g := Build(testConfig(caller, source), BuildOptions{})

	n := g.Node(source.ID)
	require.NotNil(t, n)
	assert.Equal(t, TypeSourceModule, n.Type)
	assert.Contains(t, n.Label, "[source module]")

	require.Len(t, edgesFrom(g, caller.ID), 1)
	assert.Equal(t, source.ID, edgesFrom(g, caller.ID)[0].To)
}

func TestBuildFoldersAndFiles(t *testing.T) {
	t.Parallel()

	m := module("vpc", "terraform-aws-modules/vpc/aws")
	m.Dir = "env/prod"
	m.FilePath = "/infra/env/prod/main.tf"

	g := Build(testConfig(m), BuildOptions{})

	require.True(t, g.HasNode("file:/infra/env/prod/main.tf"))
	require.True(t, g.HasNode("folder:env/prod"))
	require.True(t, g.HasNode("folder:env"))
	require.True(t, g.HasNode("folder:."))

	assert.Contains(t, g.Edges, Edge{From: "folder:env", To: "folder:env/prod", Kind: EdgeContains})
	assert.Contains(t, g.Edges, Edge{From: "folder:.", To: "folder:env", Kind: EdgeContains})
	assert.Contains(t, g.Edges, Edge{From: "folder:env/prod", To: "file:/infra/env/prod/main.tf", Kind: EdgeContains})
	assert.Contains(t, g.Edges, Edge{From: "file:/infra/env/prod/main.tf", To: m.ID, Kind: EdgeContains})
}

func TestBuildResourcesOnlyWhenRequested(t *testing.T) {
	t.Parallel()

	cfg := testConfig(module("vpc", "./modules/vpc"))
	res := &tfconfig.Resource{
		ID:       "resource:.:aws_instance.web",
		Type:     "aws_instance",
		Name:     "web",
		Dir:      ".",
		FilePath: "/infra/main.tf",
		FileName: "main.tf",
	}
	cfg.Resources[res.ID] = res
	cfg.NameIndex[res.Address()] = []string{res.ID}

	without := Build(cfg, BuildOptions{})
	assert.Empty(t, nodesOfKind(without, NodeResource))

	with := Build(cfg, BuildOptions{IncludeResources: true})
	require.Len(t, nodesOfKind(with, NodeResource), 1)
	assert.Contains(t, with.Edges, Edge{From: "file:/infra/main.tf", To: res.ID, Kind: EdgeContains})
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := testConfig(
		module("a", "terraform-aws-modules/vpc/aws"),
		module("b", "./modules/b"),
		module("c", "git::https://github.com/acme/infra.git//c"),
	)

	first := Build(cfg, BuildOptions{})
	for i := 0; i < 5; i++ {
		next := Build(cfg, BuildOptions{})
		require.Equal(t, first.Edges, next.Edges)
		require.Equal(t, len(first.Nodes()), len(next.Nodes()))
		for j, n := range first.Nodes() {
			assert.Equal(t, n.ID, next.Nodes()[j].ID)
		}
	}
}
