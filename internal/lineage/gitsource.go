package lineage

import (
	"strings"
)

// GitSource is a parsed git module source: the repository display name
// (owner/repo for known hosts), the subdirectory inside the repository, and
// a browsable URL for the tooltip link.
type GitSource struct {
	Repo string
	Path string
	URL  string
}

// ParseGitSource splits a git module source into repository and subpath. The
// "//" separating repository from path must not be confused with the "//" in
// a protocol scheme, so the split skips any "//" directly preceded by ":".
func ParseGitSource(source string) GitSource {
	raw := strings.TrimPrefix(source, "git::")

	repoURL, subPath := splitRepoPath(raw)
	if i := strings.IndexAny(subPath, "?"); i >= 0 {
		// drop ?ref=... query selectors from the display path
		subPath = subPath[:i]
	}
	repoURL = strings.TrimSuffix(repoURL, ".git")

	return GitSource{
		Repo: repoDisplayName(repoURL),
		Path: subPath,
		URL:  browseURL(repoURL, subPath),
	}
}

// PathLabel is the human-readable path line used on graph nodes.
func (g GitSource) PathLabel() string {
	if g.Path == "" {
		return "root"
	}
	return "path: " + g.Path
}

func splitRepoPath(raw string) (string, string) {
	for i := 0; ; {
		j := strings.Index(raw[i:], "//")
		if j < 0 {
			return raw, ""
		}
		i += j
		if i > 0 && raw[i-1] != ':' {
			return raw[:i], raw[i+2:]
		}
		i += 2
	}
}

func repoDisplayName(repoURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(repoURL, "https://"), "http://")
	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) >= 3 && isKnownHost(parts[0]):
		return parts[1] + "/" + parts[2]
	case len(parts) > 0:
		return parts[len(parts)-1]
	default:
		return repoURL
	}
}

func isKnownHost(host string) bool {
	switch host {
	case "github.com", "gitlab.com", "bitbucket.org":
		return true
	}
	return false
}

// browseURL turns a repository URL plus subpath into a link to the tree view
// of the default branch. Hosts with unknown tree URL layouts get the bare
// repository URL.
func browseURL(repoURL, subPath string) string {
	if subPath == "" {
		return repoURL
	}
	switch {
	case strings.Contains(repoURL, "github.com"):
		return repoURL + "/tree/main/" + subPath
	case strings.Contains(repoURL, "gitlab.com"):
		return repoURL + "/-/tree/main/" + subPath
	default:
		return repoURL
	}
}
