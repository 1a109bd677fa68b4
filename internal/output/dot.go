package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/registry"
)

type dotRenderer struct {
	opts Options
}

// attributes are written sorted by key, as key=value; pairs.
type attributes map[string]string

func (a attributes) String() string {
	if len(a) == 0 {
		return ""
	}
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('[')
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s;", key, a[key])
	}
	b.WriteByte(']')
	return b.String()
}

func shapeFor(t registry.SymbolType) string {
	switch t {
	case registry.SymbolGlobal, registry.SymbolGlobalTemplate:
		return "ellipse"
	case registry.SymbolRecord, registry.SymbolRecordTemplate:
		return "box"
	case registry.SymbolTypedef:
		return "octagon"
	default:
		return ""
	}
}

func quote(label string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(label) + `"`
}

func (d dotRenderer) node(out *bufio.Writer, r *registry.Registry, sym *registry.Symbol) {
	attrs := attributes{"label": quote(r.FullName(sym))}
	if shape := shapeFor(sym.Type); shape != "" {
		attrs["shape"] = shape
	}
	d.line(out, fmt.Sprintf("%d%s;", sym.ID, attrs))
}

func (d dotRenderer) line(out *bufio.Writer, statement string) {
	if d.opts.Pretty {
		out.WriteString("  ")
	}
	out.WriteString(statement)
	if d.opts.Pretty {
		out.WriteByte('\n')
	}
}

func (d dotRenderer) open(out *bufio.Writer) {
	out.WriteString("strict digraph{")
	if d.opts.Pretty {
		out.WriteByte('\n')
	}
}

// Symbols draws every symbol once and one edge per referenced symbol,
// decorated after its most important reference.
func (d dotRenderer) Symbols(w io.Writer, r *registry.Registry) error {
	out := bufio.NewWriter(w)
	d.open(out)
	for _, sym := range r.Symbols() {
		d.node(out, r, sym)
	}
	for _, sym := range r.Symbols() {
		for _, target := range sym.Targets() {
			refs := sym.References(target)
			attrs := attributes{}
			if d.opts.ReferenceCount {
				attrs["label"] = strconv.Itoa(len(refs))
			}
			if best, ok := refs.MostImportant(); ok {
				switch best.Type {
				case registry.ReferenceTemplate:
					attrs["arrowtail"] = "invempty"
					attrs["dir"] = "both"
				case registry.ReferenceInheritance:
					attrs["arrowhead"] = "empty"
				case registry.ReferenceComposition:
					attrs["arrowtail"] = "diamond"
					attrs["dir"] = "both"
				}
			}
			d.line(out, fmt.Sprintf("%d->%d%s;", sym.ID, target, attrs))
		}
	}
	out.WriteString("}\n")
	return out.Flush()
}

// Clusters draws the members of every cluster once, then each cluster as
// a closed chain.
func (d dotRenderer) Clusters(w io.Writer, r *registry.Registry, clusters []graph.Cluster) error {
	out := bufio.NewWriter(w)
	d.open(out)
	seen := make(map[registry.SymbolID]bool)
	for _, cluster := range clusters {
		for _, id := range cluster {
			if seen[id] {
				continue
			}
			seen[id] = true
			d.node(out, r, r.Symbol(id))
		}
	}
	for _, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}
		previous := cluster[len(cluster)-1]
		for _, id := range cluster {
			d.line(out, fmt.Sprintf("%d->%d;", previous, id))
			previous = id
		}
	}
	out.WriteString("}\n")
	return out.Flush()
}
