package reflectx

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"

	"github.com/anoideaopen/inspector/core/typeinfo"
)

// Error types.
var (
	ErrNilType           = errors.New("type is nil")
	ErrNotInterface      = errors.New("type is not an interface")
	ErrNotImplemented    = errors.New("interface is not implemented")
	ErrConstructorResult = errors.New("constructor does not return the described type")
)

type options struct {
	constructors       []any
	interfaces         []reflect.Type
	methods            []string
	methodsSet         bool
	noDefaultConstruct bool
}

// Option configures Describe.
type Option func(*options)

// WithConstructors registers constructor functions in declaration order.
// Each function must return the described type or a pointer to it,
// optionally followed by an error.
func WithConstructors(fns ...any) Option {
	return func(o *options) {
		o.constructors = append(o.constructors, fns...)
	}
}

// WithInterfaces lists the interfaces the type directly implements.
func WithInterfaces(ifaces ...reflect.Type) Option {
	return func(o *options) {
		o.interfaces = append(o.interfaces, ifaces...)
	}
}

// WithDeclaredMethods replaces the reflected method list. Reflection can only
// see exported methods, so generated registration tables pass the complete
// list taken from source.
func WithDeclaredMethods(names ...string) Option {
	return func(o *options) {
		o.methods = append(o.methods, names...)
		o.methodsSet = true
	}
}

// WithoutDefaultConstructor disables the implicit zero-argument constructor
// that Describe adds to a struct without registered constructors.
func WithoutDefaultConstructor() Option {
	return func(o *options) {
		o.noDefaultConstruct = true
	}
}

// Describe builds a descriptor of t using reflection. Pointer types are
// described by their element type.
//
// Parameters:
//   - t: The type to describe.
//   - opts: Constructors, implemented interfaces and method overrides.
//
// Returns:
//   - *typeinfo.Static: The descriptor.
//   - error: An error if an interface is not implemented by t or a
//     constructor has an unsupported signature.
func Describe(t reflect.Type, opts ...Option) (*typeinfo.Static, error) {
	if t == nil {
		return nil, ErrNilType
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d := &typeinfo.Static{
		TypeName: t.String(),
		GoType:   t,
		Fields:   declaredFields(t),
		Methods:  declaredMethods(t),
	}

	if o.methodsSet {
		d.Methods = make([]typeinfo.Method, 0, len(o.methods))
		for _, name := range o.methods {
			d.Methods = append(d.Methods, typeinfo.Method{Name: name, Exported: token.IsExported(name)})
		}
	}

	var err error
	for _, iface := range o.interfaces {
		desc, ifaceErr := describeInterface(t, iface)
		if ifaceErr != nil {
			err = errors.Join(err, ifaceErr)
			continue
		}
		d.Implements = append(d.Implements, desc)
	}

	for _, fn := range o.constructors {
		ctor, ctorErr := typeinfo.NewConstructor(fn)
		if ctorErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: describe %s", ctorErr, t))
			continue
		}

		if res := ctor.Result(); res != t && res != reflect.PointerTo(t) {
			err = errors.Join(err, fmt.Errorf("%w: %s returns %s: describe %s", ErrConstructorResult, ctor.Name(), res, t))
			continue
		}

		d.Constructors = append(d.Constructors, ctor)
	}

	if err != nil {
		return nil, err
	}

	if len(d.Constructors) == 0 && !o.noDefaultConstruct && t.Kind() == reflect.Struct {
		d.Constructors = append(d.Constructors, defaultConstructor(t))
	}

	return d, nil
}

// MustDescribe is like Describe but panics on error. It is meant for
// registration tables built in init functions.
func MustDescribe(t reflect.Type, opts ...Option) *typeinfo.Static {
	d, err := Describe(t, opts...)
	if err != nil {
		panic(err)
	}

	return d
}

func describeInterface(t, iface reflect.Type) (*typeinfo.Static, error) {
	if iface == nil {
		return nil, fmt.Errorf("%w: describe %s", ErrNilType, t)
	}

	if iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: %s: describe %s", ErrNotInterface, iface, t)
	}

	if !t.Implements(iface) && !reflect.PointerTo(t).Implements(iface) {
		return nil, fmt.Errorf("%w: %s by %s", ErrNotImplemented, iface, t)
	}

	return &typeinfo.Static{
		TypeName: iface.String(),
		GoType:   iface,
		Methods:  declaredMethods(iface),
	}, nil
}

func declaredFields(t reflect.Type) []typeinfo.Field {
	if t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]typeinfo.Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fields = append(fields, typeinfo.Field{
			Name:     f.Name,
			Tag:      f.Tag,
			Embedded: f.Anonymous,
			Exported: f.IsExported(),
		})
	}

	return fields
}

// defaultConstructor returns the implicit constructor of a struct: a
// zero-argument function returning a pointer to a zero value.
func defaultConstructor(t reflect.Type) *typeinfo.Constructor {
	fn := reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{reflect.PointerTo(t)}, false),
		func([]reflect.Value) []reflect.Value {
			return []reflect.Value{reflect.New(t)}
		},
	)

	ctor, err := typeinfo.NewNamedConstructor("New"+t.Name(), fn.Interface())
	if err != nil {
		panic(err) // the signature above is always valid
	}

	return ctor
}
