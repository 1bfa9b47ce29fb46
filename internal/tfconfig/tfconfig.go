// Package tfconfig parses a Terraform root directory into the module and
// resource declarations needed to build a lineage graph. It reads raw HCL
// with hashicorp/hcl and does not evaluate expressions beyond constant
// values, so it works on configurations that would not plan cleanly.
package tfconfig

// Module is a single "module" block declared in a .tf file, or a
// representative entry for a local directory referenced as a module source
// (SourceModule is true in that case).
type Module struct {
	ID       string
	Name     string
	Dir      string // directory relative to the parsed root, "/"-separated
	Source   string
	Version  string // raw version constraint, empty if absent or non-constant
	FilePath string
	FileName string

	// ExplicitDeps holds references listed in depends_on, e.g. "module.vpc"
	// or "aws_instance.web".
	ExplicitDeps []string

	// ModuleRefs holds names of modules referenced implicitly from input
	// expressions, e.g. "vpc" for an input using module.vpc.id.
	ModuleRefs []string

	SourceModule bool
}

// Resource is a single "resource" block.
type Resource struct {
	ID           string
	Type         string
	Name         string
	Dir          string
	FilePath     string
	FileName     string
	ExplicitDeps []string
}

// Config is the result of parsing one Terraform root directory.
type Config struct {
	RootDir   string
	Modules   map[string]*Module
	Resources map[string]*Resource

	// NameIndex maps a module name or "type.name" resource address to the
	// IDs declared under that name.
	NameIndex map[string][]string
}

// Address returns the Terraform address of the resource, e.g.
// "aws_instance.web".
func (r *Resource) Address() string {
	return r.Type + "." + r.Name
}
