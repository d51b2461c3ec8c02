// Package inspector answers three questions about a type described by a
// [typeinfo.Descriptor]:
//
//   - AnnotatedFields: which fields declared on the type carry an annotation
//     marker (a struct tag key).
//   - AllDeclaredMethods: which method names the type declares, together with
//     the methods declared by the interfaces it directly implements.
//   - CreateInstance: which declared constructor accepts a given argument list,
//     and what instance it creates.
//
// Every call scans the descriptor again; nothing is cached.
//
// Example:
//
//	type Villager struct {
//	    name        string `inspect:""`
//	    description string
//	}
//
//	func newVillager(name, description string) *Villager {
//	    return &Villager{name: name, description: description}
//	}
//
//	d := reflectx.MustDescribe(reflect.TypeFor[Villager](), reflectx.WithConstructors(newVillager))
//
//	inspector.AnnotatedFields(d, "inspect") // [name]
//	v, err := inspector.CreateInstance[*Villager](d, "Bob", "farmer")
//
// Constructor resolution is first-fit: constructors are tried in declaration
// order and the first one whose parameters accept the arguments is used, even
// when it is unexported. Two failures are distinguished:
//
//   - ErrConstructorNotFound: no constructor accepts the arguments.
//   - ErrInvocationFailed (as *InvocationError): a constructor was found but
//     returned an error, panicked, returned nil or produced a value of the
//     wrong type.
package inspector
