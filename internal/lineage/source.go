// Package lineage classifies Terraform module sources and builds the
// dependency graph linking folders, files, modules, resources and the
// external entities (public registry modules, git repositories) they pull in.
package lineage

import (
	"strings"
)

// SourceKind is the coarse classification of a module source string.
type SourceKind int

const (
	// KindLocal covers relative and filesystem paths, and anything too
	// ill-formed to classify otherwise. Classification is lenient: a
	// malformed source degrades to local rather than failing.
	KindLocal SourceKind = iota
	KindRegistry
	KindGit
	// KindRemote covers non-git remote sources such as plain HTTP archives
	// or go-getter forced sources (s3::, gcs::, ...).
	KindRemote
)

func (k SourceKind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindGit:
		return "git"
	case KindRemote:
		return "remote"
	default:
		return "local"
	}
}

// Classify decides what a module source string refers to. URL schemes and
// getter prefixes are checked before the registry pattern so that the "//"
// in "https://..." is never mistaken for a submodule separator.
func Classify(source string) SourceKind {
	if source == "" || strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") || strings.HasPrefix(source, "/") {
		return KindLocal
	}
	if isGitSource(source) {
		return KindGit
	}
	if hasURLScheme(source) || strings.Contains(source, "::") {
		return KindRemote
	}

	base := source
	if i := strings.Index(source, "//"); i >= 0 {
		base = source[:i]
	}
	segments := strings.Split(base, "/")
	if len(segments) < 3 {
		return KindLocal
	}
	for _, s := range segments {
		if s == "" {
			return KindLocal
		}
	}
	return KindRegistry
}

func hasURLScheme(source string) bool {
	i := strings.Index(source, "://")
	return i > 0 && !strings.ContainsAny(source[:i], "/.")
}

func isGitSource(source string) bool {
	return strings.HasPrefix(source, "git::") ||
		strings.HasPrefix(source, "github.com/") ||
		strings.HasPrefix(source, "gitlab.com/") ||
		strings.HasPrefix(source, "bitbucket.org/") ||
		strings.Contains(source, ".git")
}

// RegistrySource is a parsed public registry module address
// <namespace>/<name>/<provider>[//modules/<submodule>]. The zero Submodule
// means the root module. The struct is comparable and serves directly as the
// deduplication key for registry entities.
type RegistrySource struct {
	Namespace string
	Name      string
	Provider  string
	Submodule string
}

// ParseRegistrySource parses a module source against the registry naming
// convention. It reports false for anything Classify does not consider a
// registry source; it never fails on malformed input.
func ParseRegistrySource(source string) (RegistrySource, bool) {
	if Classify(source) != KindRegistry {
		return RegistrySource{}, false
	}

	base, sub := source, ""
	if i := strings.Index(source, "//"); i >= 0 {
		base, sub = source[:i], source[i+2:]
	}
	segments := strings.Split(base, "/")

	rs := RegistrySource{
		Namespace: segments[0],
		Name:      segments[1],
		Provider:  segments[2],
	}
	if sub != "" {
		// "//modules/<name>" is the conventional layout; keep the final
		// path element as the submodule name either way.
		sub = strings.TrimPrefix(sub, "modules/")
		parts := strings.Split(strings.Trim(sub, "/"), "/")
		rs.Submodule = parts[len(parts)-1]
	}
	return rs, true
}

// URL returns the registry page for the module. The submodule is not part of
// the address; submodules share the root module's page.
func (rs RegistrySource) URL() string {
	return "https://registry.terraform.io/modules/" + rs.Namespace + "/" + rs.Name + "/" + rs.Provider
}

// String returns the canonical source form of the address.
func (rs RegistrySource) String() string {
	s := rs.Namespace + "/" + rs.Name + "/" + rs.Provider
	if rs.Submodule != "" {
		s += "//modules/" + rs.Submodule
	}
	return s
}

// SubmoduleLabel is the human-readable submodule line used on graph nodes.
func (rs RegistrySource) SubmoduleLabel() string {
	if rs.Submodule == "" {
		return "main module"
	}
	return "submodule: " + rs.Submodule
}
