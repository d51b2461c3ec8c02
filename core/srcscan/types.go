package srcscan

import (
	"go/token"
	"reflect"

	"github.com/anoideaopen/inspector/core/typeinfo"
)

// TypeInfo is the source-level description of a named type.
type TypeInfo struct {
	Package      string
	PackageName  string
	Dir          string
	Name         string
	Exported     bool
	Fields       []Field
	Methods      []string
	Interfaces   []Interface
	Constructors []Constructor
}

type Field struct {
	Name     string
	Tag      string
	Embedded bool
	Exported bool
}

// Interface is an interface implemented by the type, with the methods the
// interface declares itself.
type Interface struct {
	Package  string
	Name     string
	Exported bool
	Methods  []string
}

// QualifiedName returns the interface name prefixed with its package path.
func (i Interface) QualifiedName() string {
	if i.Package == "" {
		return i.Name
	}

	return i.Package + "." + i.Name
}

// Constructor is a function that creates the type.
type Constructor struct {
	Name      string
	Params    []string
	Exported  bool
	Pointer   bool
	WithError bool
}

// QualifiedName returns the type name prefixed with its package name.
func (ti *TypeInfo) QualifiedName() string {
	return ti.PackageName + "." + ti.Name
}

// Descriptor converts the scan result into a type descriptor. The
// descriptor has no runtime type and no invocable constructors.
func (ti *TypeInfo) Descriptor() *typeinfo.Static {
	d := &typeinfo.Static{
		TypeName: ti.QualifiedName(),
		Fields:   make([]typeinfo.Field, 0, len(ti.Fields)),
		Methods:  methodList(ti.Methods),
	}

	for _, f := range ti.Fields {
		d.Fields = append(d.Fields, typeinfo.Field{
			Name:     f.Name,
			Tag:      reflect.StructTag(f.Tag),
			Embedded: f.Embedded,
			Exported: f.Exported,
		})
	}

	for _, iface := range ti.Interfaces {
		d.Implements = append(d.Implements, &typeinfo.Static{
			TypeName: iface.QualifiedName(),
			Methods:  methodList(iface.Methods),
		})
	}

	return d
}

func methodList(names []string) []typeinfo.Method {
	methods := make([]typeinfo.Method, 0, len(names))
	for _, name := range names {
		methods = append(methods, typeinfo.Method{Name: name, Exported: token.IsExported(name)})
	}

	return methods
}
