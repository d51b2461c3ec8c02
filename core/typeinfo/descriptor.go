// Package typeinfo describes the structural metadata of a type: the fields,
// methods, interfaces and constructors the inspector queries.
//
// A Descriptor is read-only for the duration of a query. Descriptors are
// produced either at runtime from reflection (see core/reflectx), from
// source code (see core/srcscan) or by generated registration tables
// (see core/codegen and core/registry).
package typeinfo

import "reflect"

// Descriptor is a handle to the structural metadata of a single type.
type Descriptor interface {
	// Name returns the qualified name of the described type.
	Name() string
	// Type returns the runtime type, or nil when the descriptor was built
	// from source only.
	Type() reflect.Type
	// DeclaredFields returns fields declared directly on the type, in
	// declaration order. Promoted fields of embedded types are not included.
	DeclaredFields() []Field
	// DeclaredMethods returns methods declared directly on the type.
	DeclaredMethods() []Method
	// Interfaces returns the interfaces the type directly implements.
	Interfaces() []Descriptor
	// DeclaredConstructors returns the constructors in declaration order.
	DeclaredConstructors() []*Constructor
}

// Marker is an annotation marker. A field carries the marker when its
// struct tag contains the marker as a key.
type Marker string

// Field describes a struct field.
type Field struct {
	Name     string
	Tag      reflect.StructTag
	Embedded bool
	Exported bool
}

// Has reports whether the field is annotated with m.
func (f Field) Has(m Marker) bool {
	_, ok := f.Tag.Lookup(string(m))
	return ok
}

// Method describes a method by name.
type Method struct {
	Name     string
	Exported bool
}

// Static is a Descriptor backed by plain values.
type Static struct {
	TypeName     string
	GoType       reflect.Type
	Fields       []Field
	Methods      []Method
	Implements   []Descriptor
	Constructors []*Constructor
}

var _ Descriptor = (*Static)(nil)

func (s *Static) Name() string                         { return s.TypeName }
func (s *Static) Type() reflect.Type                   { return s.GoType }
func (s *Static) DeclaredFields() []Field              { return s.Fields }
func (s *Static) DeclaredMethods() []Method            { return s.Methods }
func (s *Static) Interfaces() []Descriptor             { return s.Implements }
func (s *Static) DeclaredConstructors() []*Constructor { return s.Constructors }
