package languages

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/morozRed/architect/internal/parser"
	"github.com/morozRed/architect/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixtures(t *testing.T, paths ...string) *registry.Registry {
	t.Helper()
	r := registry.New()
	_, err := NewDefaultFrontend().ParsePaths(context.Background(), r, paths, parser.Options{Workers: 2})
	require.NoError(t, err)
	return r
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func ref(file string, line, column uint32, typ registry.ReferenceType) registry.Reference {
	return registry.Reference{
		Location: registry.Location{Filename: file, Line: line, Column: column},
		Type:     typ,
	}
}

func symbolNames(r *registry.Registry) []string {
	names := make([]string, 0, r.Len())
	for _, sym := range r.Symbols() {
		names = append(names, r.FullName(sym))
	}
	return names
}

func TestCppParserExtensions(t *testing.T) {
	f := NewDefaultFrontend()
	for _, name := range []string{"a.c", "a.h", "a.cpp", "a.HPP", "a.cc", "a.cxx", "a.inl"} {
		p, ok := f.ParserForFile(name)
		require.True(t, ok, name)
		assert.Equal(t, "cpp", p.Language())
	}
	_, ok := f.ParserForFile("a.go")
	assert.False(t, ok)
}

func TestCompositeVisitor(t *testing.T) {
	const file = "testdata/composite-visitor.cpp"
	r := parseFixtures(t, file)

	require.Equal(t, []string{"Visitor", "Node", "Leaf", "Composite", "void (Node *) visit"}, symbolNames(r))
	for _, sym := range r.Symbols() {
		assert.True(t, sym.Defined(), r.FullName(sym))
	}
	assert.Equal(t, registry.SymbolRecord, r.Symbol(0).Type)
	assert.Equal(t, registry.SymbolGlobal, r.Symbol(4).Type)
	assert.Equal(t, registry.SymbolIdentifier{Name: "visit", Type: "void (Node *)"}, r.Symbol(4).Identifier)

	assert.Empty(t, r.Symbol(0).Targets())

	node := r.Symbol(1)
	assert.Equal(t, []registry.SymbolID{0}, node.Targets())
	assert.Equal(t, registry.ReferenceSet{ref(file, 10, 25, registry.ReferenceAssociation)}, node.References(0))

	leaf := r.Symbol(2)
	assert.Equal(t, []registry.SymbolID{0, 1}, leaf.Targets())
	assert.Equal(t, registry.ReferenceSet{ref(file, 13, 21, registry.ReferenceInheritance)}, leaf.References(1))
	assert.Equal(t, registry.ReferenceSet{ref(file, 16, 25, registry.ReferenceAssociation)}, leaf.References(0))

	composite := r.Symbol(3)
	assert.Equal(t, []registry.SymbolID{0, 1}, composite.Targets())
	assert.Equal(t, registry.ReferenceSet{
		ref(file, 22, 26, registry.ReferenceInheritance),
		ref(file, 32, 5, registry.ReferenceComposition),
	}, composite.References(1))

	visit := r.Symbol(4)
	assert.Equal(t, []registry.SymbolID{0, 1}, visit.Targets())
	assert.Equal(t, registry.ReferenceSet{ref(file, 38, 5, registry.ReferenceAssociation)}, visit.References(0))
	assert.Equal(t, registry.ReferenceSet{ref(file, 36, 12, registry.ReferenceAssociation)}, visit.References(1))
}

func TestNamespaces(t *testing.T) {
	const file = "testdata/namespaces.cpp"
	r := parseFixtures(t, file)

	require.Equal(t, []string{
		"App::Callback",
		"void () App::UI::render",
		"App::Core::CoreCallback",
		"void (CoreCallback) App::Core::?::visit",
		"void (int) App::Core::update",
	}, symbolNames(r))

	assert.Equal(t, registry.SymbolTypedef, r.Symbol(0).Type)
	assert.Equal(t, "void ()", r.Symbol(0).Identifier.Type)
	assert.Equal(t, "Callback", r.Symbol(2).Identifier.Type)
	assert.False(t, r.Symbol(1).Defined(), "render is only declared")
	assert.True(t, r.Symbol(3).Defined())

	assert.Equal(t, registry.ReferenceSet{ref(file, 12, 17, registry.ReferenceAssociation)}, r.Symbol(2).References(0))
	assert.Equal(t, registry.ReferenceSet{ref(file, 16, 15, registry.ReferenceAssociation)}, r.Symbol(3).References(2))

	update := r.Symbol(4)
	assert.Equal(t, []registry.SymbolID{1, 3}, update.Targets())
	assert.Equal(t, registry.ReferenceSet{ref(file, 24, 13, registry.ReferenceAssociation)}, update.References(3))
	assert.Equal(t, registry.ReferenceSet{ref(file, 24, 19, registry.ReferenceAssociation)}, update.References(1))

	ns := r.Namespace(r.Symbol(3).Namespace)
	require.NotNil(t, ns)
	assert.Equal(t, "", ns.Name)
}

func TestTemplatesAndOutOfClassDefinitions(t *testing.T) {
	r := parseFixtures(t, "testdata/templates.cpp")

	require.Equal(t, []string{"Lib::Box<T>", "Lib::Box", "Lib::Item", "void () Lib::helper"}, symbolNames(r))

	box := r.Symbol(0)
	assert.Equal(t, registry.SymbolRecordTemplate, box.Type)
	assert.Equal(t, []string{"T"}, box.TemplateParameters)
	assert.Empty(t, box.Targets(), "template parameters are not symbols")

	specialization := r.Symbol(1)
	assert.Equal(t, registry.SymbolRecord, specialization.Type)
	assert.Equal(t, "Lib::Box<int>", specialization.Identifier.Type)
	assert.True(t, specialization.HasReference(0))
	assert.Equal(t, registry.ReferenceTemplate, specialization.References(0)[0].Type)

	item := r.Symbol(2)
	assert.Equal(t, []registry.SymbolID{0, 3}, item.Targets())
	assert.Equal(t, registry.ReferenceTemplate, item.References(0)[0].Type)
	assert.Equal(t, registry.ReferenceAssociation, item.References(3)[0].Type, "out-of-class bodies belong to the record")
}

func TestCSource(t *testing.T) {
	r := parseFixtures(t, "testdata/legacy.c")

	require.Equal(t, []string{"node", "node_t", "int counter", "int (node_t *) length"}, symbolNames(r))
	assert.Equal(t, "struct node", r.Symbol(1).Identifier.Type)
	assert.Empty(t, r.Symbol(0).Targets(), "self references are dropped")
	assert.Equal(t, []registry.SymbolID{0}, r.Symbol(1).Targets())
	assert.True(t, r.Symbol(2).Defined(), "the later definition wins over extern")
	assert.Equal(t, []registry.SymbolID{1, 2}, r.Symbol(3).Targets())
}

func TestDeclarationsSpanFiles(t *testing.T) {
	dir := t.TempDir()
	header := writeSource(t, dir, "shape.h", "namespace geo { class Shape { public: virtual ~Shape(); }; }\n")
	source := writeSource(t, dir, "circle.cpp", "namespace geo { class Circle : public Shape { }; }\n")

	r := parseFixtures(t, source, header)

	// files are folded in path order: circle.cpp first
	require.Equal(t, []string{"geo::Circle", "geo::Shape"}, symbolNames(r))
	assert.Equal(t, registry.ReferenceInheritance, r.Symbol(0).References(1)[0].Type)
}

func TestAnonymousNamespacesAreFileLocal(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.cpp", "namespace { void helper() {} }\n")
	b := writeSource(t, dir, "b.cpp", "namespace { void helper() {} }\n")

	r := parseFixtures(t, a, b)

	require.Equal(t, 2, r.Len())
	assert.NotEqual(t, r.Symbol(0).Namespace, r.Symbol(1).Namespace)
	assert.Len(t, r.Namespace(registry.RootNamespace).Anonymous, 2)
}

func TestLocalsShadowSymbols(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "shadow.cpp", `int value;
void run(int value) { value++; }
void other() { value++; }
`)

	r := parseFixtures(t, path)

	require.Equal(t, 3, r.Len())
	assert.Empty(t, r.Symbol(1).Targets(), "parameter shadows the global")
	assert.Equal(t, []registry.SymbolID{0}, r.Symbol(2).Targets())
}

func TestInlineNamespacesAndFunctionPointers(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "inline.cpp", `namespace A { namespace B { inline namespace v1 { struct S; } } }
namespace A { namespace B { struct S {}; } }
struct User { A::B::S *s; };
int (*handler)(int);
void take(int (*cb)(int));
`)

	r := parseFixtures(t, path)

	require.Equal(t, []string{
		"A::B::S",
		"User",
		"int (*)(int) handler",
		"void (int (*)(int)) take",
	}, symbolNames(r))
	assert.True(t, r.Symbol(0).Defined(), "the inline forward declaration names the same record")
	assert.Equal(t, "A::B::S", r.Symbol(0).Identifier.Type)
	assert.Equal(t, []registry.SymbolID{0}, r.Symbol(1).Targets())
	assert.Equal(t, registry.ReferenceComposition, r.Symbol(1).References(0)[0].Type)
}
