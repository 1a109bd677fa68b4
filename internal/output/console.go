package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/registry"
)

type consoleRenderer struct{}

// Symbols lists each symbol with its kind, then every referenced symbol and
// the locations of the references. A blank line ends each symbol's block.
func (consoleRenderer) Symbols(w io.Writer, r *registry.Registry) error {
	out := bufio.NewWriter(w)
	for _, sym := range r.Symbols() {
		fmt.Fprintf(out, "%s (%s)\n", r.FullName(sym), sym.Type)
		for _, target := range sym.Targets() {
			fmt.Fprintf(out, "  %s\n", r.FullName(r.Symbol(target)))
			for _, ref := range sym.References(target) {
				fmt.Fprintf(out, "    %s:%d,%d (%s)\n", ref.Location.Filename, ref.Location.Line, ref.Location.Column, ref.Type)
			}
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}

// Clusters prints one line per cluster, closing back on its first member.
func (consoleRenderer) Clusters(w io.Writer, r *registry.Registry, clusters []graph.Cluster) error {
	out := bufio.NewWriter(w)
	for _, cluster := range clusters {
		if len(cluster) == 0 {
			continue
		}
		out.WriteString("-")
		for _, id := range cluster {
			fmt.Fprintf(out, " %s ->", r.FullName(r.Symbol(id)))
		}
		fmt.Fprintf(out, " %s\n", r.FullName(r.Symbol(cluster[0])))
	}
	return out.Flush()
}
