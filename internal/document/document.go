// Package document implements the JSON form of a registry: the output of the
// json renderer and the golden fixtures the front-end is checked against.
package document

import (
	"encoding/json"
	"io"

	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/registry"
)

// Symbol is one entry of a document. Pointer fields distinguish a missing
// field from its zero value when decoding.
type Symbol struct {
	Type               *string     `json:"type" validate:"required,oneof=global globalTemplate record recordTemplate typedef"`
	Defined            *bool       `json:"defined" validate:"required"`
	Identifier         *Identifier `json:"identifier" validate:"required"`
	TemplateParameters []string    `json:"templateParameters,omitempty"`
	Namespaces         []string    `json:"namespaces,omitempty"`
	References         *[]Edge     `json:"references,omitempty" validate:"required,dive"`
}

type Identifier struct {
	Name *string `json:"name" validate:"required"`
	Type *string `json:"type" validate:"required"`
}

// Edge groups the references to one target, addressed by its position in
// the document.
type Edge struct {
	ID         *uint32      `json:"id" validate:"required"`
	References *[]Reference `json:"references" validate:"required,dive"`
}

type Reference struct {
	Type     *string `json:"type" validate:"required,oneof=template inheritance composition association"`
	Filename *string `json:"filename" validate:"required"`
	Line     *uint32 `json:"line" validate:"required"`
	Column   *uint32 `json:"column" validate:"required"`
}

var symbolTypeNames = map[registry.SymbolType]string{
	registry.SymbolGlobal:         "global",
	registry.SymbolGlobalTemplate: "globalTemplate",
	registry.SymbolRecord:         "record",
	registry.SymbolRecordTemplate: "recordTemplate",
	registry.SymbolTypedef:        "typedef",
}

var referenceTypeNames = map[registry.ReferenceType]string{
	registry.ReferenceTemplate:    "template",
	registry.ReferenceInheritance: "inheritance",
	registry.ReferenceComposition: "composition",
	registry.ReferenceAssociation: "association",
}

var (
	symbolTypesByName    = invert(symbolTypeNames)
	referenceTypesByName = invert(referenceTypeNames)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

// Encode converts every symbol of r, in id order. Reference ids are symbol
// ids, which equal document positions.
func Encode(r *registry.Registry) []Symbol {
	out := make([]Symbol, 0, r.Len())
	for _, sym := range r.Symbols() {
		entry := encodeSymbol(r, sym)
		edges := make([]Edge, 0)
		for _, target := range sym.Targets() {
			refs := sym.References(target)
			encoded := make([]Reference, 0, len(refs))
			for _, ref := range refs {
				encoded = append(encoded, Reference{
					Type:     ptr(referenceTypeNames[ref.Type]),
					Filename: ptr(ref.Location.Filename),
					Line:     ptr(ref.Location.Line),
					Column:   ptr(ref.Location.Column),
				})
			}
			edges = append(edges, Edge{ID: ptr(uint32(target)), References: &encoded})
		}
		entry.References = &edges
		out = append(out, entry)
	}
	return out
}

// EncodeClusters converts each cluster to its member symbols, without
// their references.
func EncodeClusters(r *registry.Registry, clusters []graph.Cluster) [][]Symbol {
	out := make([][]Symbol, 0, len(clusters))
	for _, cluster := range clusters {
		members := make([]Symbol, 0, len(cluster))
		for _, id := range cluster {
			if sym := r.Symbol(id); sym != nil {
				members = append(members, encodeSymbol(r, sym))
			}
		}
		out = append(out, members)
	}
	return out
}

func encodeSymbol(r *registry.Registry, sym *registry.Symbol) Symbol {
	entry := Symbol{
		Type:    ptr(symbolTypeNames[sym.Type]),
		Defined: ptr(sym.Defined()),
		Identifier: &Identifier{
			Name: ptr(sym.Identifier.Name),
			Type: ptr(sym.Identifier.Type),
		},
		Namespaces: r.NamespacePath(sym.Namespace),
	}
	if len(sym.TemplateParameters) > 0 {
		entry.TemplateParameters = append([]string(nil), sym.TemplateParameters...)
	}
	return entry
}

// Write serialises value as JSON, indented by two spaces when pretty.
func Write(w io.Writer, value any, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(value)
}
