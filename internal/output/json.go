package output

import (
	"io"

	"github.com/morozRed/architect/internal/document"
	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/registry"
)

type jsonRenderer struct {
	opts Options
}

func (j jsonRenderer) Symbols(w io.Writer, r *registry.Registry) error {
	return document.Write(w, document.Encode(r), j.opts.Pretty)
}

func (j jsonRenderer) Clusters(w io.Writer, r *registry.Registry, clusters []graph.Cluster) error {
	return document.Write(w, document.EncodeClusters(r, clusters), j.opts.Pretty)
}
