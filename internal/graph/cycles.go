package graph

import (
	"context"
	"slices"

	"github.com/morozRed/architect/internal/registry"
)

// cancelCheckInterval is how many branch expansions run between context checks.
const cancelCheckInterval = 1024

// ComputeCycles enumerates every simple cycle of the reference graph whose
// length exceeds opts.MinCardinality. Each cycle is reported once, starting
// at its lowest id member.
func ComputeCycles(r *registry.Registry, opts Options) []Cluster {
	cycles, _ := ComputeCyclesContext(context.Background(), r, opts)
	return cycles
}

// ComputeCyclesContext is ComputeCycles with cancellation. Enumeration is
// exponential on dense cyclic graphs; ctx bounds how long it may run.
func ComputeCyclesContext(ctx context.Context, r *registry.Registry, opts Options) ([]Cluster, error) {
	result := newClusterSet()
	visited := make(map[registry.SymbolID]bool, r.Len())
	steps := 0

	for _, start := range r.Symbols() {
		branches := []Cluster{{start.ID}}
		for len(branches) > 0 {
			branch := branches[0]
			branches = branches[1:]

			steps++
			if steps%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}

			last := r.Symbol(branch[len(branch)-1])
			for _, target := range last.Targets() {
				switch {
				case target == start.ID:
					if opts.keep(len(branch)) {
						result.add(branch)
					}
				case visited[target]:
				case slices.Contains(branch, target):
				default:
					next := make(Cluster, len(branch), len(branch)+1)
					copy(next, branch)
					branches = append(branches, append(next, target))
				}
			}
		}
		visited[start.ID] = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result.sorted(), nil
}
