package tfconfig

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// constantString evaluates an attribute without any variable context and
// returns its string value, or empty when the expression is not a constant
// string. Module source and version attributes are constants in valid
// Terraform, so this covers them.
func constantString(attr *hcl.Attribute) string {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || val.IsNull() || !val.Type().Equals(cty.String) {
		return ""
	}
	return val.AsString()
}

// referenceStrings flattens the traversals of an attribute expression into
// dotted reference strings, e.g. "module.vpc" or "aws_instance.web". Used
// for depends_on, where the expression is a list of bare references.
func referenceStrings(attr *hcl.Attribute) []string {
	var refs []string
	for _, traversal := range attr.Expr.Variables() {
		if ref := traversalString(traversal); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// moduleReferences returns the module names referenced by an attribute
// expression, e.g. "vpc" for module.vpc.private_subnets.
func moduleReferences(attr *hcl.Attribute) []string {
	var names []string
	for _, traversal := range attr.Expr.Variables() {
		ref := traversalString(traversal)
		parts := strings.SplitN(ref, ".", 3)
		if len(parts) >= 2 && parts[0] == "module" {
			names = append(names, parts[1])
		}
	}
	return names
}

func traversalString(traversal hcl.Traversal) string {
	var parts []string
	for _, traverser := range traversal {
		switch t := traverser.(type) {
		case hcl.TraverseRoot:
			parts = append(parts, t.Name)
		case hcl.TraverseAttr:
			parts = append(parts, t.Name)
		case hcl.TraverseIndex:
			if t.Key.Type().Equals(cty.String) {
				parts = append(parts, t.Key.AsString())
			}
		}
	}
	return strings.Join(parts, ".")
}

func appendUnique(slice []string, element string) []string {
	for _, existing := range slice {
		if existing == element {
			return slice
		}
	}
	return append(slice, element)
}
