package languages

import (
	"maps"
	"strings"

	"github.com/morozRed/architect/internal/parser"
	"github.com/morozRed/architect/internal/registry"
	sitter "github.com/smacker/go-tree-sitter"
)

type scopeKind int

const (
	scopeNamespace scopeKind = iota
	scopeRecord
	scopeBody
)

// visitContext is passed by value: a child scope never leaks its changes
// back to the parent.
type visitContext struct {
	ns         registry.NamespaceID
	records    []string // enclosing record names, used to spell nested types
	current    registry.SymbolID
	hasCurrent bool
	refType    registry.ReferenceType
	scope      scopeKind

	// locals shadow symbol names: parameters, local variables and template
	// parameters.
	locals map[string]bool

	// set by a template_declaration for the declaration it wraps
	isTemplate   bool
	template     []string
	templateList *sitter.Node
}

func rootContext() visitContext {
	return visitContext{
		ns:      registry.RootNamespace,
		refType: registry.ReferenceAssociation,
		scope:   scopeNamespace,
	}
}

// enter makes sym the symbol that owns references found below.
func (c visitContext) enter(sym registry.SymbolID, refType registry.ReferenceType, scope scopeKind) visitContext {
	c.current = sym
	c.hasCurrent = true
	c.refType = refType
	c.scope = scope
	c.locals = copyLocals(c.locals)
	c.isTemplate = false
	c.template = nil
	c.templateList = nil
	return c
}

// body is the context for a function body or signature owned by the
// current symbol.
func (c visitContext) body() visitContext {
	c.refType = registry.ReferenceAssociation
	c.scope = scopeBody
	c.locals = copyLocals(c.locals)
	c.isTemplate = false
	c.template = nil
	c.templateList = nil
	return c
}

func copyLocals(parent map[string]bool, names ...string) map[string]bool {
	out := make(map[string]bool, len(parent)+len(names))
	maps.Copy(out, parent)
	for _, name := range names {
		out[name] = true
	}
	return out
}

// walker runs one pass over one unit. The declare pass creates namespaces
// and symbols; the link pass resolves names and records references.
type walker struct {
	unit    *cppUnit
	session *parser.Session
	reg     *registry.Registry
	linking bool
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.unit.content)
}

func (w *walker) location(n *sitter.Node) registry.Location {
	p := n.StartPoint()
	return registry.Location{Filename: w.unit.path, Line: p.Row + 1, Column: p.Column + 1}
}

func (w *walker) visitChildren(n *sitter.Node, ctx visitContext) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i), ctx)
	}
}

func (w *walker) visitChildrenExcept(n *sitter.Node, ctx visitContext, skip ...*sitter.Node) {
	if n == nil {
		return
	}
next:
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, s := range skip {
			if sameNode(child, s) {
				continue next
			}
		}
		w.visit(child, ctx)
	}
}

func (w *walker) visit(n *sitter.Node, ctx visitContext) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "comment", "string_literal", "raw_string_literal", "char_literal", "number_literal",
		"system_lib_string", "preproc_include", "preproc_def", "preproc_function_def", "preproc_call",
		"using_declaration", "namespace_alias_definition", "template_instantiation",
		"attribute_declaration", "attribute_specifier", "access_specifier":
		return
	case "namespace_definition":
		w.visitNamespace(n, ctx)
	case "linkage_specification":
		w.visit(n.ChildByFieldName("body"), ctx)
	case "template_declaration":
		w.visitTemplate(n, ctx)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		w.visitRecord(n, ctx)
	case "type_definition":
		w.visitTypedef(n, ctx)
	case "alias_declaration":
		w.visitAlias(n, ctx)
	case "function_definition":
		w.visitFunction(n, ctx)
	case "declaration":
		w.visitDeclaration(n, ctx)
	case "field_declaration":
		w.visitField(n, ctx)
	case "friend_declaration":
		ctx.refType = registry.ReferenceAssociation
		w.visitChildren(n, ctx)
	case "base_class_clause":
		ctx.refType = registry.ReferenceInheritance
		w.visitChildren(n, ctx)
	case "enumerator":
		w.visit(n.ChildByFieldName("value"), ctx)
	case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
		w.visitParameter(n, ctx)
	case "for_range_loop":
		w.visitRangeLoop(n, ctx)
	case "template_type", "template_function", "template_method":
		w.visitTemplateUse(n, nil, false, ctx)
	case "field_expression":
		// the member name is not a symbol
		w.visit(n.ChildByFieldName("argument"), ctx)
	case "identifier", "type_identifier":
		w.referenceName(w.text(n), nil, false, n, ctx, ctx.refType)
	default:
		if isQualified(n.Type()) {
			w.visitQualified(n, ctx)
			return
		}
		w.visitChildren(n, ctx)
	}
}

func (w *walker) visitNamespace(n *sitter.Node, ctx visitContext) {
	ns := ctx.ns
	name := n.ChildByFieldName("name")
	switch {
	case name == nil:
		ns = w.anonymousNamespace(ns)
	case w.isInline(n):
		// members of an inline namespace are members of the enclosing one
	default:
		for _, part := range strings.Split(w.text(name), "::") {
			part = strings.TrimSpace(part)
			if part == "" || strings.HasPrefix(part, "inline ") {
				continue
			}
			ns = w.ensureNamespace(ns, part)
		}
	}
	inner := ctx
	inner.ns = ns
	inner.records = nil
	w.visit(n.ChildByFieldName("body"), inner)
}

func (w *walker) isInline(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "inline" {
			return true
		}
	}
	fields := strings.Fields(w.text(n))
	return len(fields) > 0 && fields[0] == "inline"
}

func (w *walker) ensureNamespace(parent registry.NamespaceID, name string) registry.NamespaceID {
	id, err := w.reg.EnsureNamespace(parent, name)
	if err != nil {
		w.session.Logger.Debug("cannot create namespace", "name", name, "file", w.unit.path, "error", err)
		return parent
	}
	return id
}

func (w *walker) anonymousNamespace(parent registry.NamespaceID) registry.NamespaceID {
	if id, ok := w.unit.anonymous[parent]; ok {
		return id
	}
	id := w.reg.CreateNamespace()
	if err := w.reg.AttachNamespace(id, parent, ""); err != nil {
		w.session.Logger.Debug("cannot attach anonymous namespace", "file", w.unit.path, "error", err)
		return parent
	}
	w.unit.anonymous[parent] = id
	return id
}

func (w *walker) visitTemplate(n *sitter.Node, ctx visitContext) {
	list := n.ChildByFieldName("parameters")
	params := w.templateParameters(list)

	inner := ctx
	inner.isTemplate = true
	inner.template = params
	inner.templateList = list
	inner.locals = copyLocals(ctx.locals, params...)
	w.visitChildrenExcept(n, inner, list)
}

func (w *walker) templateParameters(list *sitter.Node) []string {
	if list == nil {
		return nil
	}
	names := make([]string, 0, list.NamedChildCount())
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		var name *sitter.Node
		switch p.Type() {
		case "type_parameter_declaration", "variadic_type_parameter_declaration":
			name = firstNamedChildOfType(p, "type_identifier")
		case "optional_type_parameter_declaration":
			name = p.ChildByFieldName("name")
		case "template_template_parameter_declaration":
			inner := firstNamedChildOfType(p, "type_parameter_declaration", "variadic_type_parameter_declaration", "optional_type_parameter_declaration")
			if inner != nil {
				if name = inner.ChildByFieldName("name"); name == nil {
					name = firstNamedChildOfType(inner, "type_identifier")
				}
			}
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			name = declaratorName(p.ChildByFieldName("declarator"))
		}
		if text := w.text(name); text != "" {
			names = append(names, text)
		}
	}
	return names
}

// visitTemplateDefaults visits the default arguments of the template
// parameters of the symbol ctx now belongs to.
func (w *walker) visitTemplateDefaults(list *sitter.Node, ctx visitContext) {
	if list == nil {
		return
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		w.visit(p.ChildByFieldName("default_type"), ctx)
		w.visit(p.ChildByFieldName("default_value"), ctx)
	}
}

// spell qualifies name with the namespace and enclosing records, the way
// a compiler prints the type.
func (w *walker) spell(ns registry.NamespaceID, records []string, name string) string {
	parts := make([]string, 0, 4)
	for _, part := range w.reg.NamespacePath(ns) {
		if part == "" {
			part = "(anonymous namespace)"
		}
		parts = append(parts, part)
	}
	parts = append(parts, records...)
	parts = append(parts, name)
	return strings.Join(parts, "::")
}

// declare finds or creates a symbol and, when the context already belongs
// to a symbol, records that the enclosing symbol uses it.
func (w *walker) declare(ctx visitContext, ns registry.NamespaceID, typ registry.SymbolType, identifier registry.SymbolIdentifier, defined bool, at *sitter.Node) *registry.Symbol {
	sym, ok := w.reg.Lookup(ns, identifier)
	if !ok {
		sym = w.reg.CreateSymbol(typ, false)
		sym.Identifier = identifier
		if err := w.reg.AttachSymbol(sym.ID, ns); err != nil {
			w.session.Logger.Debug("cannot attach symbol", "name", identifier.Name, "file", w.unit.path, "error", err)
		}
	}
	if defined {
		sym.MarkDefined()
	}
	if len(ctx.template) > 0 && (defined || len(sym.TemplateParameters) == 0) {
		sym.TemplateParameters = append([]string(nil), ctx.template...)
	}
	w.reference(ctx, sym.ID, at, ctx.refType)
	return sym
}

func (w *walker) reference(ctx visitContext, target registry.SymbolID, at *sitter.Node, refType registry.ReferenceType) {
	if !w.linking || !ctx.hasCurrent {
		return
	}
	_, err := w.reg.AddReference(ctx.current, target, registry.Reference{Location: w.location(at), Type: refType})
	if err != nil {
		w.session.Logger.Debug("cannot add reference", "file", w.unit.path, "error", err)
	}
}

func (w *walker) visitRecord(n *sitter.Node, ctx visitContext) {
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")

	if nameNode == nil || ctx.scope == scopeBody {
		// anonymous and local records are not tracked; what they use is
		// charged to the enclosing symbol
		if nameNode != nil && body == nil {
			w.visit(nameNode, ctx)
			return
		}
		inner := ctx
		inner.isTemplate = false
		inner.template = nil
		inner.templateList = nil
		w.visitChildrenExcept(n, inner, nameNode)
		return
	}

	ns := ctx.ns
	records := ctx.records
	var args *sitter.Node
	if isQualified(nameNode.Type()) {
		scope, last, absolute, _ := w.flatten(nameNode)
		if last == nil {
			return
		}
		ns, records = w.ownerOf(ctx, scope, absolute)
		nameNode = last
	}
	name := w.text(nameNode)
	if nameNode.Type() == "template_type" {
		args = nameNode.ChildByFieldName("arguments")
		name = w.text(nameNode.ChildByFieldName("name"))
	}
	if name == "" {
		return
	}
	if body == nil && args == nil && ctx.hasCurrent && len(records) == len(ctx.records) {
		// an elaborated type names an existing record when there is one
		if sym, ok := w.resolve(ns, nil, false, name); ok {
			w.reference(ctx, sym.ID, nameNode, ctx.refType)
			return
		}
	}

	typ := registry.SymbolRecord
	if ctx.isTemplate && len(ctx.template) > 0 {
		typ = registry.SymbolRecordTemplate
	}
	spelling := w.spell(ns, records, name)
	if args != nil {
		spelling += normalizeSpace(w.text(args))
	}
	sym := w.declare(ctx, ns, typ, registry.SymbolIdentifier{Name: name, Type: spelling}, body != nil, nameNode)

	if body == nil {
		return
	}
	if w.linking && !w.session.MarkLinked(sym.ID) {
		return
	}

	inner := ctx.enter(sym.ID, registry.ReferenceComposition, scopeRecord)
	inner.ns = ns
	inner.records = append(append([]string(nil), records...), name)
	if args != nil {
		// a specialization depends on the template it specializes
		if primary, ok := w.reg.Lookup(ns, registry.SymbolIdentifier{Name: name, Type: w.spell(ns, records, name)}); ok {
			w.reference(inner, primary.ID, nameNode, registry.ReferenceTemplate)
		}
		w.visit(args, inner.body())
	}
	w.visitTemplateDefaults(ctx.templateList, inner.body())
	w.visitChildrenExcept(n, inner, n.ChildByFieldName("name"), body)
	w.visit(body, inner)
}

// ownerOf resolves the scope of a qualified declaration to the namespace
// that holds it and the records nesting it.
func (w *walker) ownerOf(ctx visitContext, scope []string, absolute bool) (registry.NamespaceID, []string) {
	if len(scope) == 0 {
		if absolute {
			return registry.RootNamespace, nil
		}
		return ctx.ns, ctx.records
	}
	for _, start := range w.searchPath(ctx.ns, absolute) {
		for k := len(scope); k >= 0; k-- {
			ns, ok := w.descend(start, scope[:k])
			if ok && (k == len(scope) || w.hasRecord(ns, scope[k])) {
				return ns, scope[k:]
			}
		}
	}
	return ctx.ns, scope
}

func (w *walker) hasRecord(ns registry.NamespaceID, name string) bool {
	sym, ok := w.reg.LookupName(ns, name)
	return ok && (sym.Type == registry.SymbolRecord || sym.Type == registry.SymbolRecordTemplate)
}

func (w *walker) visitTypedef(n *sitter.Node, ctx visitContext) {
	typeNode := n.ChildByFieldName("type")
	decls := declarators(n, typeNode)

	if ctx.scope == scopeBody {
		w.visit(typeNode, ctx)
		for _, d := range decls {
			w.addLocal(ctx, declaratorName(d))
		}
		return
	}

	for _, d := range decls {
		nameNode := declaratorName(d)
		name := w.text(nameNode)
		if name == "" {
			continue
		}
		identifier := registry.SymbolIdentifier{Name: name, Type: w.aliasedType(n, typeNode, d)}
		sym := w.declare(ctx, ctx.ns, registry.SymbolTypedef, identifier, true, nameNode)
		if w.linking && !w.session.MarkLinked(sym.ID) {
			continue
		}
		inner := ctx.enter(sym.ID, registry.ReferenceAssociation, scopeNamespace)
		w.visit(typeNode, inner)
		w.visitDeclaratorParameters(d, inner.body())
	}
}

// visitDeclaratorParameters visits the parameter lists of function
// pointer declarators.
func (w *walker) visitDeclaratorParameters(d *sitter.Node, ctx visitContext) {
	for d != nil {
		if d.Type() == "function_declarator" {
			w.visit(d.ChildByFieldName("parameters"), ctx)
		}
		d = innerDeclarator(d)
	}
}

func (w *walker) visitAlias(n *sitter.Node, ctx visitContext) {
	nameNode := n.ChildByFieldName("name")
	typeNode := n.ChildByFieldName("type")
	name := w.text(nameNode)
	if name == "" {
		return
	}
	if ctx.scope == scopeBody {
		w.visit(typeNode, ctx)
		w.addLocal(ctx, nameNode)
		return
	}
	identifier := registry.SymbolIdentifier{Name: name, Type: normalizeSpace(w.text(typeNode))}
	sym := w.declare(ctx, ctx.ns, registry.SymbolTypedef, identifier, true, nameNode)
	if w.linking && !w.session.MarkLinked(sym.ID) {
		return
	}
	inner := ctx.enter(sym.ID, registry.ReferenceAssociation, scopeNamespace)
	w.visitTemplateDefaults(ctx.templateList, inner.body())
	w.visit(typeNode, inner)
}

func (w *walker) globalType(ctx visitContext) registry.SymbolType {
	if ctx.isTemplate && len(ctx.template) > 0 {
		return registry.SymbolGlobalTemplate
	}
	return registry.SymbolGlobal
}

func (w *walker) visitFunction(n *sitter.Node, ctx visitContext) {
	typeNode := n.ChildByFieldName("type")
	decl := n.ChildByFieldName("declarator")
	body := n.ChildByFieldName("body")
	fn := functionDeclarator(decl)

	switch ctx.scope {
	case scopeRecord:
		// inline member functions are part of their record
		w.visitSignatureAndBody(n, typeNode, fn, body, ctx.body())
		return
	case scopeBody:
		w.visitChildren(n, ctx)
		return
	}

	nameNode := declaratorName(fn)
	if fn == nil || nameNode == nil {
		w.visitChildren(n, ctx)
		return
	}

	ns := ctx.ns
	if isQualified(nameNode.Type()) {
		scope, last, absolute, _ := w.flatten(nameNode)
		if last == nil {
			return
		}
		if owner, ok := w.resolveRecord(ctx, scope, absolute); ok {
			// out-of-class member definition
			inner := ctx.enter(owner.ID, registry.ReferenceAssociation, scopeBody)
			inner.ns = owner.Namespace
			w.visitSignatureAndBody(n, typeNode, fn, body, inner)
			return
		}
		if target, ok := w.namespaceOf(ctx, scope, absolute); ok {
			ns = target
		}
		nameNode = last
	}

	identifier := registry.SymbolIdentifier{
		Name: w.functionName(nameNode),
		Type: w.functionSignature(n, typeNode, decl, fn),
	}
	sym := w.declare(ctx, ns, w.globalType(ctx), identifier, true, nameNode)
	if w.linking && !w.session.MarkLinked(sym.ID) {
		return
	}
	inner := ctx.enter(sym.ID, registry.ReferenceAssociation, scopeBody)
	inner.ns = ns
	w.visitTemplateDefaults(ctx.templateList, inner)
	w.visitSignatureAndBody(n, typeNode, fn, body, inner)
}

func (w *walker) functionName(n *sitter.Node) string {
	if n.Type() == "template_function" {
		return w.text(n.ChildByFieldName("name"))
	}
	return normalizeSpace(w.text(n))
}

func (w *walker) visitSignatureAndBody(n, typeNode, fn, body *sitter.Node, ctx visitContext) {
	w.visit(typeNode, ctx)
	if fn != nil {
		w.visit(fn.ChildByFieldName("parameters"), ctx)
		if trailing := firstNamedChildOfType(fn, "trailing_return_type"); trailing != nil {
			w.visit(trailing, ctx)
		}
	}
	if init := firstNamedChildOfType(n, "field_initializer_list"); init != nil {
		w.visit(init, ctx)
	}
	w.visit(body, ctx)
}

func (w *walker) visitDeclaration(n *sitter.Node, ctx visitContext) {
	typeNode := n.ChildByFieldName("type")
	decls := declarators(n, typeNode)

	switch ctx.scope {
	case scopeBody:
		w.visit(typeNode, ctx)
		for _, d := range decls {
			w.visitLocal(d, ctx)
		}
		return
	case scopeRecord:
		// constructors and other members without a field type
		inner := ctx.body()
		w.visit(typeNode, inner)
		for _, d := range decls {
			if fn := functionDeclarator(d); fn != nil {
				w.visit(fn.ChildByFieldName("parameters"), inner)
			}
		}
		return
	}

	if len(decls) == 0 {
		w.visit(typeNode, ctx)
		return
	}
	for _, d := range decls {
		if fn := functionDeclarator(d); fn != nil {
			w.declarePrototype(n, typeNode, d, fn, ctx)
		} else {
			w.declareVariable(n, typeNode, d, ctx)
		}
	}
}

func (w *walker) declarePrototype(n, typeNode, d, fn *sitter.Node, ctx visitContext) {
	nameNode := declaratorName(fn)
	if nameNode == nil {
		return
	}
	ns := ctx.ns
	if isQualified(nameNode.Type()) {
		scope, last, absolute, _ := w.flatten(nameNode)
		if last == nil {
			return
		}
		if _, ok := w.resolveRecord(ctx, scope, absolute); ok {
			return
		}
		if target, ok := w.namespaceOf(ctx, scope, absolute); ok {
			ns = target
		}
		nameNode = last
	}
	identifier := registry.SymbolIdentifier{
		Name: w.functionName(nameNode),
		Type: w.functionSignature(n, typeNode, d, fn),
	}
	sym := w.declare(ctx, ns, w.globalType(ctx), identifier, false, nameNode)

	// a definition carries everything the prototype would add
	if sym.Defined() || (w.linking && !w.session.MarkLinked(sym.ID)) {
		return
	}
	inner := ctx.enter(sym.ID, registry.ReferenceAssociation, scopeBody)
	inner.ns = ns
	w.visit(typeNode, inner)
	w.visit(fn.ChildByFieldName("parameters"), inner)
}

func (w *walker) declareVariable(n, typeNode, d *sitter.Node, ctx visitContext) {
	nameNode := declaratorName(d)
	if nameNode == nil {
		w.visit(typeNode, ctx)
		return
	}
	var value *sitter.Node
	if d.Type() == "init_declarator" {
		value = d.ChildByFieldName("value")
	}

	ns := ctx.ns
	if isQualified(nameNode.Type()) {
		scope, last, absolute, _ := w.flatten(nameNode)
		if last == nil {
			return
		}
		if owner, ok := w.resolveRecord(ctx, scope, absolute); ok {
			// static data member definition
			inner := ctx.enter(owner.ID, registry.ReferenceAssociation, scopeBody)
			inner.ns = owner.Namespace
			w.visit(typeNode, inner)
			w.visit(value, inner)
			return
		}
		if target, ok := w.namespaceOf(ctx, scope, absolute); ok {
			ns = target
		}
		nameNode = last
	}

	defined := value != nil || !hasChildText(n, "storage_class_specifier", "extern", w.unit.content)
	identifier := registry.SymbolIdentifier{
		Name: normalizeSpace(w.text(nameNode)),
		Type: w.typeSpelling(n, typeNode, d, nil),
	}
	sym := w.declare(ctx, ns, w.globalType(ctx), identifier, defined, nameNode)
	if !defined && sym.Defined() {
		return
	}
	if w.linking && !w.session.MarkLinked(sym.ID) {
		return
	}
	inner := ctx.enter(sym.ID, registry.ReferenceAssociation, scopeBody)
	inner.ns = ns
	w.visit(typeNode, inner)
	w.visit(value, inner)
}

func (w *walker) visitLocal(d *sitter.Node, ctx visitContext) {
	w.addLocal(ctx, declaratorName(d))
	if d.Type() == "init_declarator" {
		w.visit(d.ChildByFieldName("value"), ctx)
	}
}

func (w *walker) addLocal(ctx visitContext, name *sitter.Node) {
	if name == nil || ctx.locals == nil {
		return
	}
	if name.Type() == "structured_binding_declarator" {
		for i := 0; i < int(name.NamedChildCount()); i++ {
			ctx.locals[w.text(name.NamedChild(i))] = true
		}
		return
	}
	ctx.locals[w.text(name)] = true
}

func (w *walker) visitField(n *sitter.Node, ctx visitContext) {
	typeNode := n.ChildByFieldName("type")
	decls := declarators(n, typeNode)

	methods := make([]*sitter.Node, 0, 1)
	for _, d := range decls {
		if fn := functionDeclarator(d); fn != nil {
			methods = append(methods, fn)
		}
	}
	if len(methods) > 0 {
		inner := ctx.body()
		w.visit(typeNode, inner)
		for _, fn := range methods {
			w.visit(fn.ChildByFieldName("parameters"), inner)
		}
		return
	}

	inner := ctx
	inner.refType = registry.ReferenceComposition
	if hasChildText(n, "storage_class_specifier", "static", w.unit.content) {
		inner.refType = registry.ReferenceAssociation
	}
	w.visit(typeNode, inner)
	w.visit(n.ChildByFieldName("default_value"), ctx.body())
}

func (w *walker) visitParameter(n *sitter.Node, ctx visitContext) {
	w.visit(n.ChildByFieldName("type"), ctx)
	w.visit(n.ChildByFieldName("default_value"), ctx)
	w.addLocal(ctx, declaratorName(n.ChildByFieldName("declarator")))
}

func (w *walker) visitRangeLoop(n *sitter.Node, ctx visitContext) {
	inner := ctx
	inner.locals = copyLocals(ctx.locals)
	w.visit(n.ChildByFieldName("type"), inner)
	w.visit(n.ChildByFieldName("right"), inner)
	w.addLocal(inner, declaratorName(n.ChildByFieldName("declarator")))
	w.visit(n.ChildByFieldName("body"), inner)
}

func (w *walker) visitTemplateUse(n *sitter.Node, scope []string, absolute bool, ctx visitContext) {
	name := n.ChildByFieldName("name")
	if name != nil && (name.Type() == "identifier" || name.Type() == "type_identifier") {
		w.referenceName(w.text(name), scope, absolute, n, ctx, registry.ReferenceTemplate)
	}
	w.visit(n.ChildByFieldName("arguments"), ctx)
}

func (w *walker) visitQualified(n *sitter.Node, ctx visitContext) {
	scope, last, absolute, templates := w.flatten(n)
	for _, tmpl := range templates {
		w.visitTemplateUse(tmpl.node, scope[:tmpl.depth], absolute, ctx)
	}
	if last == nil {
		return
	}
	switch last.Type() {
	case "template_type", "template_function", "template_method":
		w.visitTemplateUse(last, scope, absolute, ctx)
	case "identifier", "type_identifier":
		w.referenceName(w.text(last), scope, absolute, n, ctx, ctx.refType)
	case "field_identifier", "destructor_name", "operator_name", "operator_cast":
		return
	default:
		w.visit(last, ctx)
	}
}
