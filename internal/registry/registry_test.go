package registry

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declare(t *testing.T, r *Registry, ns NamespaceID, typ SymbolType, name string) *Symbol {
	t.Helper()
	sym := r.CreateSymbol(typ, true)
	sym.Identifier = SymbolIdentifier{Name: name, Type: name}
	require.NoError(t, r.AttachSymbol(sym.ID, ns))
	return sym
}

func at(file string, line, column uint32, typ ReferenceType) Reference {
	return Reference{Location: Location{Filename: file, Line: line, Column: column}, Type: typ}
}

func TestCreateSymbolAssignsIncreasingIDs(t *testing.T) {
	r := New()
	a := r.CreateSymbol(SymbolRecord, false)
	b := r.CreateSymbol(SymbolGlobal, true)

	assert.Equal(t, SymbolID(0), a.ID)
	assert.Equal(t, SymbolID(1), b.ID)
	assert.False(t, a.Defined())
	assert.True(t, b.Defined())
	assert.Equal(t, []*Symbol{a, b}, r.Symbols())
}

func TestClearResetsState(t *testing.T) {
	r := New()
	r.Clear()
	ns, err := r.EnsureNamespace(RootNamespace, "App")
	require.NoError(t, err)
	declare(t, r, ns, SymbolRecord, "Node")

	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, ok := r.ChildNamespace(RootNamespace, "App")
	assert.False(t, ok)
	assert.Equal(t, SymbolID(0), r.CreateSymbol(SymbolRecord, false).ID)
}

func TestMarkDefinedIsOneWay(t *testing.T) {
	r := New()
	sym := r.CreateSymbol(SymbolGlobal, false)
	sym.MarkDefined()
	sym.MarkDefined()
	assert.True(t, sym.Defined())
}

func TestNamespaceTree(t *testing.T) {
	r := New()
	app, err := r.EnsureNamespace(RootNamespace, "App")
	require.NoError(t, err)
	again, err := r.EnsureNamespace(RootNamespace, "App")
	require.NoError(t, err)
	assert.Equal(t, app, again)

	anon1 := r.CreateNamespace()
	anon2 := r.CreateNamespace()
	require.NoError(t, r.AttachNamespace(anon1, app, ""))
	require.NoError(t, r.AttachNamespace(anon2, app, ""))
	assert.Len(t, r.Namespace(app).Anonymous, 2)

	first, ok := r.ChildNamespace(app, "")
	require.True(t, ok)
	assert.Equal(t, anon1, first)

	assert.Error(t, r.AttachNamespace(anon1, RootNamespace, "Other"))

	duplicate := r.CreateNamespace()
	assert.Error(t, r.AttachNamespace(duplicate, RootNamespace, "App"))

	assert.Equal(t, []string{"App", ""}, r.NamespacePath(anon2))
	assert.Empty(t, r.NamespacePath(RootNamespace))
}

func TestAddReferenceDropsSelfLoops(t *testing.T) {
	r := New()
	a := declare(t, r, RootNamespace, SymbolRecord, "A")

	added, err := r.AddReference(a.ID, a.ID, at("a.cpp", 1, 1, ReferenceAssociation))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, a.Targets())
}

func TestAddReferenceRejectsUnknownTargets(t *testing.T) {
	r := New()
	a := declare(t, r, RootNamespace, SymbolRecord, "A")

	_, err := r.AddReference(a.ID, 42, at("a.cpp", 1, 1, ReferenceAssociation))
	assert.Error(t, err)
	_, err = r.AddReference(42, a.ID, at("a.cpp", 1, 1, ReferenceAssociation))
	assert.Error(t, err)
}

func TestReferenceSetKeepsEveryKindOrdered(t *testing.T) {
	r := New()
	a := declare(t, r, RootNamespace, SymbolRecord, "A")
	b := declare(t, r, RootNamespace, SymbolRecord, "B")

	for _, ref := range []Reference{
		at("a.cpp", 9, 1, ReferenceAssociation),
		at("a.cpp", 3, 5, ReferenceComposition),
		at("a.cpp", 9, 1, ReferenceAssociation),
		at("a.cpp", 2, 1, ReferenceAssociation),
	} {
		_, err := r.AddReference(a.ID, b.ID, ref)
		require.NoError(t, err)
	}

	refs := a.References(b.ID)
	require.Len(t, refs, 3)
	assert.Equal(t, ReferenceComposition, refs[0].Type)
	assert.Equal(t, uint32(2), refs[1].Location.Line)
	assert.Equal(t, uint32(9), refs[2].Location.Line)

	best, ok := refs.MostImportant()
	require.True(t, ok)
	assert.Equal(t, ReferenceComposition, best.Type)
	assert.Equal(t, 3, a.ReferenceCount())
}

func TestSymbolIdentifierOrdersByNameThenType(t *testing.T) {
	ids := []SymbolIdentifier{
		{Name: "run", Type: "void (int)"},
		{Name: "Base", Type: "Base"},
		{Name: "run", Type: "int (void)"},
		{Name: "run", Type: "void (int)"},
	}
	slices.SortFunc(ids, SymbolIdentifier.Compare)

	assert.Equal(t, []SymbolIdentifier{
		{Name: "Base", Type: "Base"},
		{Name: "run", Type: "int (void)"},
		{Name: "run", Type: "void (int)"},
		{Name: "run", Type: "void (int)"},
	}, ids)
	assert.Zero(t, ids[2].Compare(ids[3]))
	assert.Negative(t, SymbolIdentifier{Name: "a", Type: "z"}.Compare(SymbolIdentifier{Name: "b", Type: "a"}))
}

func TestLookupNameSeesAnonymousMembers(t *testing.T) {
	r := New()
	core, err := r.EnsureNamespace(RootNamespace, "Core")
	require.NoError(t, err)
	anon := r.CreateNamespace()
	require.NoError(t, r.AttachNamespace(anon, core, ""))
	visit := declare(t, r, anon, SymbolGlobal, "visit")

	found, ok := r.LookupName(core, "visit")
	require.True(t, ok)
	assert.Equal(t, visit.ID, found.ID)

	_, ok = r.LookupName(RootNamespace, "visit")
	assert.False(t, ok)
}

func TestFullName(t *testing.T) {
	r := New()
	app, err := r.EnsureNamespace(RootNamespace, "App")
	require.NoError(t, err)
	anon := r.CreateNamespace()
	require.NoError(t, r.AttachNamespace(anon, app, ""))

	fn := r.CreateSymbol(SymbolGlobal, true)
	fn.Identifier = SymbolIdentifier{Name: "visit", Type: "void (int)"}
	require.NoError(t, r.AttachSymbol(fn.ID, anon))

	pair := r.CreateSymbol(SymbolRecordTemplate, true)
	pair.Identifier = SymbolIdentifier{Name: "Pair", Type: "App::Pair"}
	pair.TemplateParameters = []string{"K", "V"}
	require.NoError(t, r.AttachSymbol(pair.ID, app))

	unnamed := r.CreateSymbol(SymbolRecord, true)

	assert.Equal(t, "void (int) App::?::visit", r.FullName(fn))
	assert.Equal(t, "App::Pair<K, V>", r.FullName(pair))
	assert.Equal(t, "?", r.FullName(unnamed))
}

func TestEqualIgnoresMissingFilenames(t *testing.T) {
	build := func(file string) *Registry {
		r := New()
		ns, err := r.EnsureNamespace(RootNamespace, "App")
		require.NoError(t, err)
		a := declare(t, r, ns, SymbolRecord, "A")
		b := declare(t, r, ns, SymbolRecord, "B")
		_, err = r.AddReference(a.ID, b.ID, at(file, 4, 2, ReferenceInheritance))
		require.NoError(t, err)
		return r
	}

	assert.True(t, build("/abs/a.cpp").Equal(build("")))
	assert.True(t, build("").Equal(build("/abs/a.cpp")))
	assert.False(t, build("a.cpp").Equal(build("b.cpp")))
}

func TestEqualDetectsDifferences(t *testing.T) {
	base := func() (*Registry, *Symbol, *Symbol) {
		r := New()
		a := declare(t, r, RootNamespace, SymbolRecord, "A")
		b := declare(t, r, RootNamespace, SymbolRecord, "B")
		_, err := r.AddReference(a.ID, b.ID, at("a.cpp", 1, 1, ReferenceAssociation))
		require.NoError(t, err)
		return r, a, b
	}

	left, _, _ := base()
	right, _, _ := base()
	assert.True(t, left.Equal(right))

	right, a, _ := base()
	a.TemplateParameters = []string{"T"}
	assert.False(t, left.Equal(right))

	right, _, b := base()
	_, err := right.AddReference(b.ID, 0, at("a.cpp", 2, 1, ReferenceAssociation))
	require.NoError(t, err)
	assert.False(t, left.Equal(right))

	right, _, _ = base()
	ns, err := right.EnsureNamespace(RootNamespace, "X")
	require.NoError(t, err)
	require.NoError(t, right.AttachSymbol(1, ns))
	assert.False(t, left.Equal(right))

	right, _, _ = base()
	right.CreateSymbol(SymbolGlobal, false)
	assert.False(t, left.Equal(right))
}
