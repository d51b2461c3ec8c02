package inspector

import (
	"sort"

	"github.com/anoideaopen/inspector/core/typeinfo"
)

// AnnotatedFields returns the unique names of the fields declared directly on
// the described type that carry the marker m. Names are returned in
// declaration order of their first occurrence. A type without matching
// fields yields an empty slice.
func AnnotatedFields(d typeinfo.Descriptor, m typeinfo.Marker) []string {
	names := make([]string, 0)
	if d == nil {
		return names
	}

	seen := make(map[string]struct{})
	for _, f := range d.DeclaredFields() {
		if !f.Has(m) {
			continue
		}

		if _, ok := seen[f.Name]; ok {
			continue
		}

		seen[f.Name] = struct{}{}
		names = append(names, f.Name)
	}

	return names
}

// AllDeclaredMethods returns the sorted set of method names declared directly
// on the described type, together with the method names declared by every
// interface the type directly implements.
func AllDeclaredMethods(d typeinfo.Descriptor) []string {
	names := make([]string, 0)
	if d == nil {
		return names
	}

	set := make(map[string]struct{})
	add := func(methods []typeinfo.Method) {
		for _, m := range methods {
			set[m.Name] = struct{}{}
		}
	}

	add(d.DeclaredMethods())
	for _, iface := range d.Interfaces() {
		if iface != nil {
			add(iface.DeclaredMethods())
		}
	}

	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
