package reflectx

import (
	"reflect"
	"runtime"
	"sort"

	"github.com/anoideaopen/inspector/core/typeinfo"
)

// Methods inspects the type of the given value 'v' using reflection and returns a slice of strings
// containing the names of all methods that are defined on its type. This function only considers
// exported methods (those starting with an uppercase letter) due to Go's visibility rules in reflection.
// Methods promoted from embedded fields are included.
//
// Parameters:
//   - v: The value whose type's methods are to be listed.
//
// Returns:
//   - []string: A sorted slice containing the names of all methods associated with the type of 'v'.
func Methods(v any) []string {
	methodNames := make([]string, 0)

	t := reflect.TypeOf(v)
	if t == nil {
		return methodNames
	}

	for i := 0; i < t.NumMethod(); i++ {
		methodNames = append(methodNames, t.Method(i).Name)
	}

	sort.Strings(methodNames)

	return methodNames
}

// declaredMethods returns the exported methods declared on t itself, sorted
// by name. For a concrete type this is the union of the value and pointer
// method sets without the methods promoted from embedded fields. For an
// interface type every method of the interface is returned.
func declaredMethods(t reflect.Type) []typeinfo.Method {
	methods := make([]typeinfo.Method, 0, t.NumMethod())

	if t.Kind() == reflect.Interface {
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			methods = append(methods, typeinfo.Method{Name: m.Name, Exported: m.IsExported()})
		}
		return methods
	}

	seen := make(map[string]struct{})
	for _, mt := range []reflect.Type{t, reflect.PointerTo(t)} {
		for i := 0; i < mt.NumMethod(); i++ {
			m := mt.Method(i)
			if _, ok := seen[m.Name]; ok {
				continue
			}

			if isWrapper(m.Func) && promoted(t, m.Name) {
				continue
			}

			seen[m.Name] = struct{}{}
			methods = append(methods, typeinfo.Method{Name: m.Name, Exported: m.IsExported()})
		}
	}

	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Name < methods[j].Name
	})

	return methods
}

// promoted reports whether an embedded field of t provides a method called name.
func promoted(t reflect.Type, name string) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		if _, ok := f.Type.MethodByName(name); ok {
			return true
		}

		if f.Type.Kind() != reflect.Pointer && f.Type.Kind() != reflect.Interface {
			if _, ok := reflect.PointerTo(f.Type).MethodByName(name); ok {
				return true
			}
		}
	}

	return false
}

// isWrapper reports whether fn is a compiler-generated method wrapper. The
// method table of a type points promoted methods at such wrappers, while
// methods declared in source point at the function itself.
func isWrapper(fn reflect.Value) bool {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return true
	}

	file, _ := f.FileLine(f.Entry())

	return file == "<autogenerated>"
}
