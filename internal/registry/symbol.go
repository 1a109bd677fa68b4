package registry

import "sort"

// Symbol is one declared program entity. Its outgoing references are keyed by
// target id; a symbol never references itself.
type Symbol struct {
	ID                 SymbolID
	Type               SymbolType
	Identifier         SymbolIdentifier
	TemplateParameters []string
	Namespace          NamespaceID

	defined    bool
	references map[SymbolID]ReferenceSet
}

func (s *Symbol) Defined() bool {
	return s.defined
}

// MarkDefined records that a definition was seen. It cannot be undone.
func (s *Symbol) MarkDefined() {
	s.defined = true
}

// Targets returns the referenced symbol ids in ascending order.
func (s *Symbol) Targets() []SymbolID {
	targets := make([]SymbolID, 0, len(s.references))
	for id := range s.references {
		targets = append(targets, id)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

func (s *Symbol) References(target SymbolID) ReferenceSet {
	return s.references[target]
}

func (s *Symbol) HasReference(target SymbolID) bool {
	_, ok := s.references[target]
	return ok
}

// ReferenceCount is the number of individual references, across all targets.
func (s *Symbol) ReferenceCount() int {
	total := 0
	for _, set := range s.references {
		total += len(set)
	}
	return total
}

// RemoveReferences drops the whole edge to target.
func (s *Symbol) RemoveReferences(target SymbolID) bool {
	if _, ok := s.references[target]; !ok {
		return false
	}
	delete(s.references, target)
	return true
}

func (s *Symbol) addReference(target SymbolID, ref Reference) bool {
	if target == s.ID {
		return false
	}
	if s.references == nil {
		s.references = make(map[SymbolID]ReferenceSet)
	}
	set := s.references[target]
	added := set.Insert(ref)
	s.references[target] = set
	return added
}
