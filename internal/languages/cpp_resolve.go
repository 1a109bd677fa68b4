package languages

import (
	"strings"

	"github.com/morozRed/architect/internal/registry"
	sitter "github.com/smacker/go-tree-sitter"
)

// scopedTemplate is a template used as a scope, as in Box<T>::value. depth
// is the number of scope parts before it.
type scopedTemplate struct {
	node  *sitter.Node
	depth int
}

// flatten splits a qualified name into its scope parts and the final name
// node. absolute is set for names starting with "::".
func (w *walker) flatten(n *sitter.Node) (scope []string, last *sitter.Node, absolute bool, templates []scopedTemplate) {
	first := true
	for n != nil && isQualified(n.Type()) {
		s := n.ChildByFieldName("scope")
		switch {
		case s == nil:
			absolute = absolute || first
		case s.Type() == "template_type":
			templates = append(templates, scopedTemplate{node: s, depth: len(scope)})
			scope = append(scope, w.text(s.ChildByFieldName("name")))
		case s.Type() == "decltype" || s.Type() == "dependent_type":
			return nil, nil, false, templates
		default:
			scope = append(scope, splitScope(w.text(s))...)
		}
		first = false
		n = n.ChildByFieldName("name")
	}
	return scope, n, absolute, templates
}

// searchPath lists the namespaces searched for an unqualified name, from
// the innermost outwards.
func (w *walker) searchPath(from registry.NamespaceID, absolute bool) []registry.NamespaceID {
	if absolute {
		return []registry.NamespaceID{registry.RootNamespace}
	}
	path := make([]registry.NamespaceID, 0, 4)
	for ns := from; ns != registry.NoNamespace; {
		path = append(path, ns)
		n := w.reg.Namespace(ns)
		if n == nil {
			break
		}
		ns = n.Parent
	}
	return path
}

func (w *walker) descend(start registry.NamespaceID, parts []string) (registry.NamespaceID, bool) {
	ns := start
	for _, part := range parts {
		child, ok := w.reg.ChildNamespace(ns, part)
		if !ok {
			return registry.NoNamespace, false
		}
		ns = child
	}
	return ns, true
}

// resolve looks name up the way C++ unqualified and qualified lookup
// would, approximately: every enclosing namespace is tried, and scope
// parts that name records are skipped since members share the namespace
// of their record.
func (w *walker) resolve(from registry.NamespaceID, scope []string, absolute bool, name string) (*registry.Symbol, bool) {
	for _, start := range w.searchPath(from, absolute) {
		for k := len(scope); k >= 0; k-- {
			ns, ok := w.descend(start, scope[:k])
			if !ok {
				continue
			}
			if k < len(scope) && !w.hasRecord(ns, scope[k]) {
				continue
			}
			if sym, ok := w.reg.LookupName(ns, name); ok {
				return sym, true
			}
		}
	}
	return nil, false
}

// resolveRecord resolves a scope to the record it names, if any.
func (w *walker) resolveRecord(ctx visitContext, scope []string, absolute bool) (*registry.Symbol, bool) {
	if len(scope) == 0 {
		return nil, false
	}
	sym, ok := w.resolve(ctx.ns, scope[:len(scope)-1], absolute, scope[len(scope)-1])
	if !ok || (sym.Type != registry.SymbolRecord && sym.Type != registry.SymbolRecordTemplate) {
		return nil, false
	}
	return sym, true
}

func (w *walker) namespaceOf(ctx visitContext, scope []string, absolute bool) (registry.NamespaceID, bool) {
	for _, start := range w.searchPath(ctx.ns, absolute) {
		if ns, ok := w.descend(start, scope); ok {
			return ns, true
		}
	}
	return registry.NoNamespace, false
}

// referenceName records a use of name by the current symbol.
func (w *walker) referenceName(name string, scope []string, absolute bool, at *sitter.Node, ctx visitContext, refType registry.ReferenceType) {
	if !w.linking || !ctx.hasCurrent || name == "" {
		return
	}
	if len(scope) == 0 && !absolute && ctx.locals[name] {
		return
	}
	sym, ok := w.resolve(ctx.ns, scope, absolute, name)
	if !ok {
		return
	}
	w.reference(ctx, sym.ID, at, refType)
}

// typeSpelling renders the type a declarator gives to the declared entity,
// down to stop (exclusive), e.g. "const Node *" or "int (*)(int)".
func (w *walker) typeSpelling(holder, typeNode, d, stop *sitter.Node) string {
	var b strings.Builder
	for i := 0; i < int(holder.NamedChildCount()); i++ {
		child := holder.NamedChild(i)
		if child.Type() == "type_qualifier" && (typeNode == nil || child.StartByte() < typeNode.StartByte()) {
			b.WriteString(w.text(child))
			b.WriteByte(' ')
		}
	}
	b.WriteString(w.text(typeNode))
	base := normalizeSpace(b.String())

	suffix := w.declaratorSuffix(d, stop)
	if suffix == "" {
		return base
	}
	if base == "" {
		return suffix
	}
	return base + " " + suffix
}

// declaratorSuffix spells the pointer, reference, array and function
// pointer parts of a declarator.
func (w *walker) declaratorSuffix(d, stop *sitter.Node) string {
	var suffix strings.Builder
	for d != nil && !sameNode(d, stop) {
		switch d.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			suffix.WriteString("*")
		case "reference_declarator", "abstract_reference_declarator":
			if d.ChildCount() > 0 {
				suffix.WriteString(d.Child(0).Type())
			}
		case "array_declarator", "abstract_array_declarator":
			suffix.WriteString("[" + normalizeSpace(w.text(d.ChildByFieldName("size"))) + "]")
		case "function_declarator", "abstract_function_declarator":
			inner := d.ChildByFieldName("declarator")
			if inner != nil && (inner.Type() == "parenthesized_declarator" || inner.Type() == "abstract_parenthesized_declarator") {
				suffix.WriteString("(" + w.declaratorSuffix(inner, stop) + ")(" + strings.Join(w.parameterTypes(d), ", ") + ")")
			}
			return suffix.String()
		case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
			"template_function", "operator_name", "destructor_name":
			return suffix.String()
		}
		d = innerDeclarator(d)
	}
	return suffix.String()
}

// parameterTypes spells the parameter types of a function declarator. A
// lone "void" means no parameters.
func (w *walker) parameterTypes(fn *sitter.Node) []string {
	params := make([]string, 0, 2)
	if list := fn.ChildByFieldName("parameters"); list != nil {
		for i := 0; i < int(list.ChildCount()); i++ {
			p := list.Child(i)
			switch p.Type() {
			case "parameter_declaration", "optional_parameter_declaration":
				params = append(params, w.typeSpelling(p, p.ChildByFieldName("type"), p.ChildByFieldName("declarator"), nil))
			case "variadic_parameter_declaration":
				params = append(params, w.typeSpelling(p, p.ChildByFieldName("type"), p.ChildByFieldName("declarator"), nil)+"...")
			case "...":
				params = append(params, "...")
			}
		}
	}
	if len(params) == 1 && params[0] == "void" {
		params = params[:0]
	}
	return params
}

// functionSignature renders "ret (params)" for a function declarator, e.g.
// "void (Node *)".
func (w *walker) functionSignature(holder, typeNode, outer, fn *sitter.Node) string {
	ret := w.typeSpelling(holder, typeNode, outer, fn)
	return strings.TrimSpace(ret + " (" + strings.Join(w.parameterTypes(fn), ", ") + ")")
}

// aliasedType renders what a typedef declarator names. Records are spelled
// with their keyword so "typedef struct Foo {...} Foo" keeps the typedef
// apart from the record.
func (w *walker) aliasedType(holder, typeNode, d *sitter.Node) string {
	for fd := d; fd != nil; fd = innerDeclarator(fd) {
		if fd.Type() == "function_declarator" {
			return w.functionSignature(holder, typeNode, d, fd)
		}
	}
	if typeNode != nil {
		switch typeNode.Type() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			name := normalizeSpace(w.text(typeNode.ChildByFieldName("name")))
			if name == "" {
				name = "(unnamed)"
			}
			spelled := typeNode.Child(0).Type() + " " + name
			if suffix := w.typeSpelling(holder, nil, d, nil); suffix != "" {
				return spelled + " " + suffix
			}
			return spelled
		}
	}
	return w.typeSpelling(holder, typeNode, d, nil)
}
