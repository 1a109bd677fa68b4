package graph

import (
	"slices"

	"github.com/morozRed/architect/internal/registry"
)

type tarjanPhase int

const (
	phaseEnter tarjanPhase = iota
	phaseEdges
	phaseReturn
	phaseFinish
)

// tarjanFrame replaces one recursive strongconnect call.
type tarjanFrame struct {
	node     registry.SymbolID
	targets  []registry.SymbolID
	next     int
	phase    tarjanPhase
	returned registry.SymbolID
}

// ComputeScc partitions the reference graph into strongly-connected
// components with Tarjan's algorithm and returns those larger than
// opts.MinCardinality, members sorted by id.
func ComputeScc(r *registry.Registry, opts Options) []Cluster {
	n := r.Len()
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	counter := 0
	stack := make([]registry.SymbolID, 0)
	result := newClusterSet()

	strongConnect := func(start registry.SymbolID) {
		frames := []tarjanFrame{{node: start}}
		for len(frames) > 0 {
			top := len(frames) - 1
			frame := &frames[top]

			switch frame.phase {
			case phaseEnter:
				index[frame.node] = counter
				lowlink[frame.node] = counter
				counter++
				stack = append(stack, frame.node)
				onStack[frame.node] = true
				frame.targets = r.Symbol(frame.node).Targets()
				frame.phase = phaseEdges

			case phaseEdges:
				pushed := false
				for frame.next < len(frame.targets) {
					target := frame.targets[frame.next]
					frame.next++
					if index[target] < 0 {
						frame.phase = phaseReturn
						frame.returned = target
						frames = append(frames, tarjanFrame{node: target})
						pushed = true
						break
					}
					if onStack[target] && index[target] < lowlink[frame.node] {
						lowlink[frame.node] = index[target]
					}
				}
				if !pushed {
					frame.phase = phaseFinish
				}

			case phaseReturn:
				if lowlink[frame.returned] < lowlink[frame.node] {
					lowlink[frame.node] = lowlink[frame.returned]
				}
				frame.phase = phaseEdges

			case phaseFinish:
				if lowlink[frame.node] == index[frame.node] {
					var component Cluster
					for {
						w := stack[len(stack)-1]
						stack = stack[:len(stack)-1]
						onStack[w] = false
						component = append(component, w)
						if w == frame.node {
							break
						}
					}
					if opts.keep(len(component)) {
						slices.Sort(component)
						result.add(component)
					}
				}
				frames = frames[:top]
			}
		}
	}

	for _, sym := range r.Symbols() {
		if index[sym.ID] < 0 {
			strongConnect(sym.ID)
		}
	}
	return result.sorted()
}
