package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		expected SourceKind
	}{
		{name: "empty", source: "", expected: KindLocal},
		{name: "relative current", source: "./modules/vpc", expected: KindLocal},
		{name: "relative parent", source: "../shared/network", expected: KindLocal},
		{name: "absolute path", source: "/opt/terraform/modules/vpc", expected: KindLocal},
		{name: "single segment", source: "vpc", expected: KindLocal},
		{name: "two segments", source: "terraform-aws-modules/vpc", expected: KindLocal},
		{name: "registry", source: "terraform-aws-modules/vpc/aws", expected: KindRegistry},
		{name: "registry with submodule", source: "terraform-google-modules/network/google//modules/network-peering", expected: KindRegistry},
		{name: "registry empty segment", source: "terraform-aws-modules//aws", expected: KindLocal},
		{name: "git prefix", source: "git::https://example.com/network.git", expected: KindGit},
		{name: "github shorthand", source: "github.com/hashicorp/example", expected: KindGit},
		{name: "gitlab shorthand", source: "gitlab.com/acme/infra", expected: KindGit},
		{name: "bitbucket shorthand", source: "bitbucket.org/acme/infra", expected: KindGit},
		{name: "dot git suffix", source: "https://example.com/infra.git//modules/vpc", expected: KindGit},
		{name: "http url", source: "https://example.com/vpc-module.zip", expected: KindRemote},
		{name: "http url with double slash", source: "http://example.com/foo//bar", expected: KindRemote},
		{name: "forced getter", source: "s3::https://s3-eu-west-1.amazonaws.com/bucket/module", expected: KindRemote},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Classify(tt.source))
		})
	}
}

func TestParseRegistrySource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		ok       bool
		expected RegistrySource
	}{
		{
			name:   "root module",
			source: "terraform-google-modules/network/google",
			ok:     true,
			expected: RegistrySource{
				Namespace: "terraform-google-modules",
				Name:      "network",
				Provider:  "google",
			},
		},
		{
			name:   "submodule",
			source: "terraform-google-modules/network/google//modules/network-peering",
			ok:     true,
			expected: RegistrySource{
				Namespace: "terraform-google-modules",
				Name:      "network",
				Provider:  "google",
				Submodule: "network-peering",
			},
		},
		{
			name:   "nested submodule path keeps final element",
			source: "terraform-aws-modules/iam/aws//modules/iam-assumable-role/with-oidc",
			ok:     true,
			expected: RegistrySource{
				Namespace: "terraform-aws-modules",
				Name:      "iam",
				Provider:  "aws",
				Submodule: "with-oidc",
			},
		},
		{name: "local path", source: "./modules/vpc", ok: false},
		{name: "git source", source: "git::https://example.com/network.git", ok: false},
		{name: "http source", source: "https://example.com/vpc//modules/x", ok: false},
		{name: "two segments", source: "namespace/name", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs, ok := ParseRegistrySource(tt.source)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, rs)
			}
		})
	}
}

func TestRegistrySourceURL(t *testing.T) {
	t.Parallel()

	rs, ok := ParseRegistrySource("terraform-google-modules/network/google")
	require.True(t, ok)
	assert.Equal(t, "https://registry.terraform.io/modules/terraform-google-modules/network/google", rs.URL())

	// The submodule is not part of the registry page address.
	sub, ok := ParseRegistrySource("terraform-google-modules/network/google//modules/network-peering")
	require.True(t, ok)
	assert.Equal(t, rs.URL(), sub.URL())
	assert.NotEqual(t, rs, sub)
}

func TestRegistrySourceLabels(t *testing.T) {
	t.Parallel()

	rs, ok := ParseRegistrySource("terraform-aws-modules/vpc/aws")
	require.True(t, ok)
	assert.Equal(t, "main module", rs.SubmoduleLabel())
	assert.Equal(t, "terraform-aws-modules/vpc/aws", rs.String())

	sub, ok := ParseRegistrySource("terraform-aws-modules/vpc/aws//modules/vpc-endpoints")
	require.True(t, ok)
	assert.Equal(t, "submodule: vpc-endpoints", sub.SubmoduleLabel())
	assert.Equal(t, "terraform-aws-modules/vpc/aws//modules/vpc-endpoints", sub.String())
}

func TestParseGitSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		expected GitSource
	}{
		{
			name:   "github with path",
			source: "git::https://github.com/acme/terraform-modules.git//vpc",
			expected: GitSource{
				Repo: "acme/terraform-modules",
				Path: "vpc",
				URL:  "https://github.com/acme/terraform-modules/tree/main/vpc",
			},
		},
		{
			name:   "github without path",
			source: "git::https://github.com/acme/terraform-modules.git",
			expected: GitSource{
				Repo: "acme/terraform-modules",
				URL:  "https://github.com/acme/terraform-modules",
			},
		},
		{
			name:   "gitlab with path",
			source: "git::https://gitlab.com/acme/infra.git//modules/dns",
			expected: GitSource{
				Repo: "acme/infra",
				Path: "modules/dns",
				URL:  "https://gitlab.com/acme/infra/-/tree/main/modules/dns",
			},
		},
		{
			name:   "shorthand host",
			source: "github.com/acme/infra//modules/dns",
			expected: GitSource{
				Repo: "acme/infra",
				Path: "modules/dns",
				URL:  "github.com/acme/infra/tree/main/modules/dns",
			},
		},
		{
			name:   "ref query dropped from path",
			source: "git::https://github.com/acme/infra.git//vpc?ref=v1.2.0",
			expected: GitSource{
				Repo: "acme/infra",
				Path: "vpc",
				URL:  "https://github.com/acme/infra/tree/main/vpc",
			},
		},
		{
			name:   "unknown host",
			source: "git::https://example.com/infra.git//vpc",
			expected: GitSource{
				Repo: "infra",
				Path: "vpc",
				URL:  "https://example.com/infra",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseGitSource(tt.source))
		})
	}
}
