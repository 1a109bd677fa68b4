package registry

import "slices"

// Equal compares two registries symbol by symbol in id order. Namespaces are
// compared by their name chain, not identity. A reference filename is only
// compared when both sides carry one, so golden documents may omit paths.
func (r *Registry) Equal(other *Registry) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.symbols) != len(other.symbols) {
		return false
	}
	for i := range r.symbols {
		if !r.symbolEqual(r.symbols[i], other, other.symbols[i]) {
			return false
		}
	}
	return true
}

func (r *Registry) symbolEqual(a *Symbol, other *Registry, b *Symbol) bool {
	if a.Type != b.Type || a.defined != b.defined || a.Identifier != b.Identifier {
		return false
	}
	if !slices.Equal(a.TemplateParameters, b.TemplateParameters) {
		return false
	}
	if !slices.Equal(r.NamespacePath(a.Namespace), other.NamespacePath(b.Namespace)) {
		return false
	}

	targetsA := a.Targets()
	targetsB := b.Targets()
	if !slices.Equal(targetsA, targetsB) {
		return false
	}
	for _, target := range targetsA {
		if !referenceSetsEqual(a.references[target], b.references[target]) {
			return false
		}
	}
	return true
}

func referenceSetsEqual(a, b ReferenceSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !referenceEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func referenceEqual(a, b Reference) bool {
	if a.Type != b.Type || a.Location.Line != b.Location.Line || a.Location.Column != b.Location.Column {
		return false
	}
	if a.Location.Filename == "" || b.Location.Filename == "" {
		return true
	}
	return a.Location.Filename == b.Location.Filename
}
