package registry

import (
	"cmp"
	"sort"
)

// SymbolID identifies a symbol inside one Registry. IDs are assigned in
// creation order and never reused until the registry is cleared.
type SymbolID uint32

// NamespaceID identifies a namespace node inside one Registry.
type NamespaceID uint32

const (
	// RootNamespace is the global scope of every registry.
	RootNamespace NamespaceID = 0
	// NoNamespace marks the missing parent of the root and of detached nodes.
	NoNamespace NamespaceID = ^NamespaceID(0)
)

// Location is a position in a source file.
type Location struct {
	Filename string
	Line     uint32
	Column   uint32
}

func (l Location) Compare(other Location) int {
	if c := cmp.Compare(l.Filename, other.Filename); c != 0 {
		return c
	}
	if c := cmp.Compare(l.Line, other.Line); c != 0 {
		return c
	}
	return cmp.Compare(l.Column, other.Column)
}

// ReferenceType orders edge kinds from the most to the least important.
type ReferenceType int

const (
	ReferenceTemplate ReferenceType = iota
	ReferenceInheritance
	ReferenceComposition
	ReferenceAssociation
)

func (t ReferenceType) String() string {
	switch t {
	case ReferenceTemplate:
		return "template specialization"
	case ReferenceInheritance:
		return "inheritance"
	case ReferenceComposition:
		return "composition"
	case ReferenceAssociation:
		return "association"
	default:
		return "unknown"
	}
}

func (t ReferenceType) Valid() bool {
	return t >= ReferenceTemplate && t <= ReferenceAssociation
}

// Reference is one located use of a symbol by another.
type Reference struct {
	Location Location
	Type     ReferenceType
}

func (r Reference) Compare(other Reference) int {
	if c := cmp.Compare(r.Type, other.Type); c != 0 {
		return c
	}
	return r.Location.Compare(other.Location)
}

// ReferenceSet is sorted by Reference.Compare and free of duplicates.
type ReferenceSet []Reference

// Insert adds ref at its sorted position and reports whether the set grew.
func (s *ReferenceSet) Insert(ref Reference) bool {
	set := *s
	idx := sort.Search(len(set), func(i int) bool {
		return set[i].Compare(ref) >= 0
	})
	if idx < len(set) && set[idx].Compare(ref) == 0 {
		return false
	}
	set = append(set, Reference{})
	copy(set[idx+1:], set[idx:])
	set[idx] = ref
	*s = set
	return true
}

// MostImportant returns the first reference by type order.
func (s ReferenceSet) MostImportant() (Reference, bool) {
	if len(s) == 0 {
		return Reference{}, false
	}
	return s[0], true
}

// SymbolIdentifier distinguishes overloads and specializations sharing a name.
type SymbolIdentifier struct {
	Name string
	Type string
}

// Compare orders identifiers by name, then by type spelling.
func (id SymbolIdentifier) Compare(other SymbolIdentifier) int {
	if c := cmp.Compare(id.Name, other.Name); c != 0 {
		return c
	}
	return cmp.Compare(id.Type, other.Type)
}

// SymbolType represents the kind of declared entity.
type SymbolType int

const (
	SymbolGlobal SymbolType = iota
	SymbolGlobalTemplate
	SymbolRecord
	SymbolRecordTemplate
	SymbolTypedef
)

func (t SymbolType) String() string {
	switch t {
	case SymbolGlobal:
		return "global"
	case SymbolGlobalTemplate:
		return "global template"
	case SymbolRecord:
		return "record"
	case SymbolRecordTemplate:
		return "record template"
	case SymbolTypedef:
		return "typedef"
	default:
		return "unknown"
	}
}

func (t SymbolType) Valid() bool {
	return t >= SymbolGlobal && t <= SymbolTypedef
}

// IsGlobal reports whether the type names a function or variable.
func (t SymbolType) IsGlobal() bool {
	return t == SymbolGlobal || t == SymbolGlobalTemplate
}
