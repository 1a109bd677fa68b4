package graph

import (
	"slices"
	"sort"

	"github.com/morozRed/architect/internal/registry"
)

// Cluster is an ordered group of symbols: the path of a cycle, or the members
// of a strongly-connected component.
type Cluster []registry.SymbolID

// Options filters reported clusters to those strictly larger than
// MinCardinality.
type Options struct {
	MinCardinality uint32
}

func (o Options) keep(size int) bool {
	return size > int(o.MinCardinality)
}

// clusterSet collapses identical clusters and yields them in lexicographic
// id-sequence order.
type clusterSet struct {
	seen     map[string]bool
	clusters []Cluster
}

func newClusterSet() *clusterSet {
	return &clusterSet{seen: make(map[string]bool)}
}

func (s *clusterSet) add(c Cluster) {
	key := clusterKey(c)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.clusters = append(s.clusters, slices.Clone(c))
}

func (s *clusterSet) sorted() []Cluster {
	sort.Slice(s.clusters, func(i, j int) bool {
		return slices.Compare(s.clusters[i], s.clusters[j]) < 0
	})
	return s.clusters
}

func clusterKey(c Cluster) string {
	key := make([]byte, 0, len(c)*4)
	for _, id := range c {
		key = append(key, byte(id>>24), byte(id>>16), byte(id>>8), byte(id))
	}
	return string(key)
}

// Stats summarises the size of a reference graph.
type Stats struct {
	Symbols    int
	Edges      int
	References int
	Defined    int
}

func ComputeStats(r *registry.Registry) Stats {
	var stats Stats
	for _, sym := range r.Symbols() {
		stats.Symbols++
		if sym.Defined() {
			stats.Defined++
		}
		stats.Edges += len(sym.Targets())
		stats.References += sym.ReferenceCount()
	}
	return stats
}
