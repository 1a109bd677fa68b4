package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// splitScope splits a "a::b::c" spelling into its non-empty parts.
func splitScope(raw string) []string {
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(raw, "::") {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "inline "))
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(int(n.NamedChildCount()) - 1)
}

func firstNamedChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}

// innerDeclarator steps one level into a declarator. Reference and
// parenthesized declarators carry their operand without a field name.
func innerDeclarator(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if inner := n.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	return lastNamedChild(n)
}

// declaratorName finds the node naming the entity a declarator declares.
func declaratorName(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier", "type_identifier", "primitive_type",
			"qualified_identifier", "scoped_identifier", "destructor_name",
			"operator_name", "template_function", "structured_binding_declarator":
			return n
		case "type_qualifier", "attribute_specifier", "ms_pointer_modifier":
			return nil
		}
		n = innerDeclarator(n)
	}
	return nil
}

// functionDeclarator returns the function_declarator when d declares a
// function. Function pointers are variables and yield nil.
func functionDeclarator(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			if inner := d.ChildByFieldName("declarator"); inner != nil && inner.Type() == "parenthesized_declarator" {
				return nil
			}
			return d
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

var declaratorTypes = map[string]bool{
	"identifier":                    true,
	"field_identifier":              true,
	"type_identifier":               true,
	"primitive_type":                true,
	"pointer_declarator":            true,
	"reference_declarator":          true,
	"array_declarator":              true,
	"function_declarator":           true,
	"parenthesized_declarator":      true,
	"init_declarator":               true,
	"attributed_declarator":         true,
	"qualified_identifier":          true,
	"operator_name":                 true,
	"destructor_name":               true,
	"template_function":             true,
	"structured_binding_declarator": true,
}

// declarators lists the declarators of a declaration-like node: the named
// children after its type that are shaped like declarators.
func declarators(n, typeNode *sitter.Node) []*sitter.Node {
	skip := n.ChildByFieldName("default_value")
	out := make([]*sitter.Node, 0, 1)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if typeNode != nil && child.StartByte() < typeNode.EndByte() {
			continue
		}
		if sameNode(child, skip) || !declaratorTypes[child.Type()] {
			continue
		}
		out = append(out, child)
	}
	return out
}

func isQualified(typ string) bool {
	switch typ {
	case "qualified_identifier", "qualified_type_identifier", "qualified_field_identifier",
		"scoped_identifier", "scoped_type_identifier", "scoped_field_identifier", "scoped_namespace_identifier":
		return true
	}
	return false
}

func hasChildText(n *sitter.Node, typ, text string, content []byte) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == typ && child.Content(content) == text {
			return true
		}
	}
	return false
}
