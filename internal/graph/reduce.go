package graph

import "github.com/morozRed/architect/internal/registry"

// RemoveRedundantDependencies deletes every direct edge root -> B for which B
// stays reachable from root through another of root's direct dependencies.
// Roots are processed in id order and their targets in ascending order, each
// decision seeing the edges removed before it. Paths never pass back through
// root, so the pass terminates on cyclic graphs and never changes which
// symbols are reachable from which. It returns the number of removed edges.
func RemoveRedundantDependencies(r *registry.Registry) int {
	symbols := r.Symbols()
	reducer := newEdgeReducer(symbols)
	removed := 0
	for _, root := range symbols {
		for _, target := range reducer.reduce(root.ID) {
			root.RemoveReferences(target)
			removed++
		}
	}
	return removed
}

// edgeReducer keeps an adjacency snapshot of the registry in sync with the
// removals made so far. For one root it propagates, in a single traversal,
// the set of root's direct targets each symbol is reachable from.
//
// While one root is processed the rest of the graph is fixed, so the
// ascending-order removal rule collapses to: a target survives exactly when
// every other target reaching it is also reached by it and has a lower id.
// Targets reached from outside their own mutually reachable group always go;
// inside a group nobody else reaches, only the highest id stays.
type edgeReducer struct {
	adjacency  [][]registry.SymbolID
	masks      []uint64
	stamp      []uint32
	queued     []bool
	queue      []registry.SymbolID
	generation uint32
	words      int
}

func newEdgeReducer(symbols []*registry.Symbol) *edgeReducer {
	adjacency := make([][]registry.SymbolID, len(symbols))
	for i, sym := range symbols {
		adjacency[i] = sym.Targets()
	}
	return &edgeReducer{
		adjacency: adjacency,
		stamp:     make([]uint32, len(symbols)),
		queued:    make([]bool, len(symbols)),
	}
}

// reduce returns the redundant targets of root in ascending order and drops
// them from the snapshot.
func (e *edgeReducer) reduce(root registry.SymbolID) []registry.SymbolID {
	targets := e.adjacency[root]
	if len(targets) < 2 {
		return nil
	}
	e.reset(len(targets))

	e.queue = e.queue[:0]
	for i, target := range targets {
		e.mask(target)[i/64] |= 1 << (i % 64)
		e.push(target)
	}
	for head := 0; head < len(e.queue); head++ {
		current := e.queue[head]
		e.queued[current] = false
		from := e.mask(current)
		for _, next := range e.adjacency[current] {
			if next == root || int(next) >= len(e.adjacency) {
				continue
			}
			to := e.mask(next)
			changed := false
			for w, bits := range from {
				if merged := to[w] | bits; merged != to[w] {
					to[w] = merged
					changed = true
				}
			}
			if changed {
				e.push(next)
			}
		}
	}

	var redundant []registry.SymbolID
	kept := make([]registry.SymbolID, 0, len(targets))
	for j, target := range targets {
		reachers := e.mask(target)
		keep := true
		for i, other := range targets {
			if i == j || !hasBit(reachers, i) {
				continue
			}
			if i > j || !hasBit(e.mask(other), j) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, target)
		} else {
			redundant = append(redundant, target)
		}
	}
	e.adjacency[root] = kept
	return redundant
}

// reset starts a new traversal whose masks are wide enough for n targets.
func (e *edgeReducer) reset(n int) {
	e.words = (n + 63) / 64
	if need := len(e.adjacency) * e.words; len(e.masks) < need {
		e.masks = make([]uint64, need)
	}
	e.generation++
	if e.generation == 0 {
		clear(e.stamp)
		e.generation = 1
	}
}

// mask returns the target set of id for the current traversal, zeroing it on
// first use.
func (e *edgeReducer) mask(id registry.SymbolID) []uint64 {
	m := e.masks[int(id)*e.words : (int(id)+1)*e.words]
	if e.stamp[id] != e.generation {
		e.stamp[id] = e.generation
		clear(m)
	}
	return m
}

func (e *edgeReducer) push(id registry.SymbolID) {
	if e.queued[id] {
		return
	}
	e.queued[id] = true
	e.queue = append(e.queue, id)
}

func hasBit(mask []uint64, i int) bool {
	return mask[i/64]&(1<<(i%64)) != 0
}
