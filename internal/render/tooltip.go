package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/zinrai/tflineage/internal/lineage"
)

const linkStyle = "color: #0066cc; text-decoration: underline; font-weight: bold;"

// tooltip builds the hover HTML for a node. External entities link to their
// registry page or repository in a new tab; local nodes link into the editor
// via the vscode:// protocol.
func tooltip(n *lineage.Node) string {
	switch n.Kind {
	case lineage.NodeFolder:
		if n.FolderPath != "" {
			return editorLink(n.FolderPath)
		}
	case lineage.NodeFile:
		if n.FilePath != "" {
			return editorLink(n.FilePath)
		}
	case lineage.NodeRegistryEntity:
		if n.RegistryURL != "" {
			return externalLink(n.RegistryURL, n.RegistryURL)
		}
	case lineage.NodeGitEntity:
		if n.GitURL != "" {
			return externalLink(n.GitURL, n.GitURL)
		}
	case lineage.NodeModule:
		if n.Type == lineage.TypeSourceModule {
			if n.Dir != "" && n.Dir != "." {
				return editorLink(n.Dir)
			}
			break
		}
		if n.FilePath != "" {
			return editorLink(n.FilePath)
		}
	case lineage.NodeResource:
		if n.FilePath != "" {
			return editorLink(n.FilePath)
		}
	}
	return html.EscapeString(n.Name)
}

func editorLink(path string) string {
	url := "vscode://file/" + strings.ReplaceAll(path, "\\", "/")
	return fmt.Sprintf(`<a href=%q style=%q>%s</a>`, url, linkStyle, html.EscapeString(path))
}

func externalLink(url, text string) string {
	return fmt.Sprintf(`<a href=%q target="_blank" style=%q>%s</a>`, url, linkStyle, html.EscapeString(text))
}
