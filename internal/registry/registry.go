package registry

import (
	"fmt"
	"strings"
)

// Namespace is a node of the scope tree. Anonymous children share the empty
// name and are kept apart from the named ones.
type Namespace struct {
	ID        NamespaceID
	Name      string
	Parent    NamespaceID
	Children  map[string]NamespaceID
	Anonymous []NamespaceID
	Symbols   map[SymbolIdentifier]SymbolID
}

// Registry owns every namespace and symbol of one analysis. Namespaces and
// symbols live in arenas and refer to each other by id.
//
// A Registry is not safe for concurrent mutation.
type Registry struct {
	namespaces []*Namespace
	symbols    []*Symbol
}

func New() *Registry {
	r := &Registry{}
	r.Clear()
	return r
}

// Clear drops all namespaces and symbols and resets id assignment.
func (r *Registry) Clear() {
	r.namespaces = []*Namespace{newNamespace(RootNamespace)}
	r.symbols = nil
}

func newNamespace(id NamespaceID) *Namespace {
	return &Namespace{
		ID:       id,
		Parent:   NoNamespace,
		Children: make(map[string]NamespaceID),
		Symbols:  make(map[SymbolIdentifier]SymbolID),
	}
}

// CreateNamespace allocates a detached namespace. Use AttachNamespace to
// place it in the tree.
func (r *Registry) CreateNamespace() NamespaceID {
	id := NamespaceID(len(r.namespaces))
	r.namespaces = append(r.namespaces, newNamespace(id))
	return id
}

func (r *Registry) AttachNamespace(child, parent NamespaceID, name string) error {
	c := r.Namespace(child)
	p := r.Namespace(parent)
	if c == nil || p == nil {
		return fmt.Errorf("attach namespace %d to %d: unknown namespace", child, parent)
	}
	if child == RootNamespace {
		return fmt.Errorf("attach namespace: root cannot have a parent")
	}
	if c.Parent != NoNamespace {
		return fmt.Errorf("attach namespace %d: already attached to %d", child, c.Parent)
	}
	if name != "" {
		if existing, ok := p.Children[name]; ok {
			return fmt.Errorf("attach namespace %q: parent %d already has child %d", name, parent, existing)
		}
		p.Children[name] = child
	} else {
		p.Anonymous = append(p.Anonymous, child)
	}
	c.Parent = parent
	c.Name = name
	return nil
}

// ChildNamespace looks up a named child. The empty name selects the first
// anonymous child.
func (r *Registry) ChildNamespace(parent NamespaceID, name string) (NamespaceID, bool) {
	p := r.Namespace(parent)
	if p == nil {
		return NoNamespace, false
	}
	if name == "" {
		if len(p.Anonymous) == 0 {
			return NoNamespace, false
		}
		return p.Anonymous[0], true
	}
	id, ok := p.Children[name]
	return id, ok
}

// EnsureNamespace returns the named child of parent, creating it when absent.
func (r *Registry) EnsureNamespace(parent NamespaceID, name string) (NamespaceID, error) {
	if id, ok := r.ChildNamespace(parent, name); ok {
		return id, nil
	}
	id := r.CreateNamespace()
	if err := r.AttachNamespace(id, parent, name); err != nil {
		return NoNamespace, err
	}
	return id, nil
}

func (r *Registry) Namespace(id NamespaceID) *Namespace {
	if int(id) >= len(r.namespaces) {
		return nil
	}
	return r.namespaces[id]
}

// CreateSymbol allocates a symbol with the next id. It does not deduplicate;
// callers look up existing symbols first.
func (r *Registry) CreateSymbol(typ SymbolType, defined bool) *Symbol {
	sym := &Symbol{
		ID:        SymbolID(len(r.symbols)),
		Type:      typ,
		Namespace: RootNamespace,
		defined:   defined,
	}
	r.symbols = append(r.symbols, sym)
	return sym
}

// AttachSymbol moves a symbol into ns and indexes it by its identifier.
func (r *Registry) AttachSymbol(id SymbolID, ns NamespaceID) error {
	sym := r.Symbol(id)
	if sym == nil {
		return fmt.Errorf("attach symbol %d: unknown symbol", id)
	}
	target := r.Namespace(ns)
	if target == nil {
		return fmt.Errorf("attach symbol %d: unknown namespace %d", id, ns)
	}
	if current := r.Namespace(sym.Namespace); current != nil {
		if owner, ok := current.Symbols[sym.Identifier]; ok && owner == id {
			delete(current.Symbols, sym.Identifier)
		}
	}
	sym.Namespace = ns
	target.Symbols[sym.Identifier] = id
	return nil
}

func (r *Registry) Symbol(id SymbolID) *Symbol {
	if int(id) >= len(r.symbols) {
		return nil
	}
	return r.symbols[id]
}

// Symbols returns all symbols ordered by id. The slice must not be modified.
func (r *Registry) Symbols() []*Symbol {
	return r.symbols
}

func (r *Registry) Len() int {
	return len(r.symbols)
}

// Lookup finds the symbol declared directly in ns under identifier.
func (r *Registry) Lookup(ns NamespaceID, identifier SymbolIdentifier) (*Symbol, bool) {
	n := r.Namespace(ns)
	if n == nil {
		return nil, false
	}
	id, ok := n.Symbols[identifier]
	if !ok {
		return nil, false
	}
	return r.Symbol(id), true
}

// LookupName finds the lowest-id symbol called name in ns or in one of its
// anonymous namespaces, whose members are visible from ns.
func (r *Registry) LookupName(ns NamespaceID, name string) (*Symbol, bool) {
	n := r.Namespace(ns)
	if n == nil {
		return nil, false
	}
	var best *Symbol
	for identifier, id := range n.Symbols {
		if identifier.Name != name {
			continue
		}
		if best == nil || id < best.ID {
			best = r.Symbol(id)
		}
	}
	for _, anon := range n.Anonymous {
		if sym, ok := r.LookupName(anon, name); ok && (best == nil || sym.ID < best.ID) {
			best = sym
		}
	}
	return best, best != nil
}

// AddReference records that from uses to. Self references are dropped and
// reported as not added.
func (r *Registry) AddReference(from, to SymbolID, ref Reference) (bool, error) {
	source := r.Symbol(from)
	if source == nil {
		return false, fmt.Errorf("add reference %d -> %d: unknown source symbol", from, to)
	}
	if r.Symbol(to) == nil {
		return false, fmt.Errorf("add reference %d -> %d: unknown target symbol", from, to)
	}
	if !ref.Type.Valid() {
		return false, fmt.Errorf("add reference %d -> %d: invalid reference type %d", from, to, ref.Type)
	}
	return source.addReference(to, ref), nil
}

// NamespacePath lists the namespace names from the root (excluded) down to ns.
func (r *Registry) NamespacePath(ns NamespaceID) []string {
	var path []string
	for id := ns; id != RootNamespace && id != NoNamespace; {
		n := r.Namespace(id)
		if n == nil {
			break
		}
		path = append(path, n.Name)
		id = n.Parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FullName renders the qualified display name of sym, e.g.
// "void (int) App::Core::update" or "Pair<K, V>".
func (r *Registry) FullName(sym *Symbol) string {
	var b strings.Builder
	if sym.Type.IsGlobal() && sym.Identifier.Type != "" {
		b.WriteString(sym.Identifier.Type)
		b.WriteByte(' ')
	}
	for _, name := range r.NamespacePath(sym.Namespace) {
		b.WriteString(displayName(name))
		b.WriteString("::")
	}
	b.WriteString(displayName(sym.Identifier.Name))
	if len(sym.TemplateParameters) > 0 {
		b.WriteByte('<')
		b.WriteString(strings.Join(sym.TemplateParameters, ", "))
		b.WriteByte('>')
	}
	return b.String()
}

func displayName(name string) string {
	if name == "" {
		return "?"
	}
	return name
}
