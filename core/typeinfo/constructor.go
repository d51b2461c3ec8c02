package typeinfo

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"runtime"
	"strings"
	"sync/atomic"
)

// Error types.
var (
	ErrNotFunc             = errors.New("constructor is not a function")
	ErrBadSignature        = errors.New("unsupported constructor signature")
	ErrInaccessible        = errors.New("constructor is not accessible")
	ErrConstructorPanicked = errors.New("constructor panicked")
	ErrNilInstance         = errors.New("constructor returned nil instance")
	ErrArgumentCount       = errors.New("incorrect number of arguments")
	ErrArgumentType        = errors.New("argument is not assignable to parameter")
)

var errorType = reflect.TypeFor[error]()

// Constructor is a function that creates an instance of a type. It returns
// the instance, optionally followed by an error.
//
// Unexported constructors start inaccessible and must be made accessible
// with SetAccessible before Invoke runs them.
type Constructor struct {
	name       string
	fn         reflect.Value
	params     []reflect.Type
	result     reflect.Type
	withError  bool
	exported   bool
	accessible atomic.Bool
}

// NewConstructor wraps fn, which must be a function returning a single
// value or a value and an error. The constructor name is the function's
// name without its package path. Function literals are named after their
// enclosing function and start unexported.
func NewConstructor(fn any) (*Constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}

	return newConstructor(funcName(v), v)
}

// NewNamedConstructor is like NewConstructor but uses name instead of the
// function's own name, which is meaningless for closures and functions
// built with reflect.MakeFunc.
func NewNamedConstructor(name string, fn any) (*Constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}

	return newConstructor(name, v)
}

func newConstructor(name string, v reflect.Value) (*Constructor, error) {
	t := v.Type()

	var withError bool
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(0) != errorType && t.Out(1) == errorType:
		withError = true
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrBadSignature, name, t)
	}

	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}

	c := &Constructor{
		name:      name,
		fn:        v,
		params:    params,
		result:    t.Out(0),
		withError: withError,
		exported:  exportedName(name),
	}
	c.accessible.Store(c.exported)

	return c, nil
}

// exportedName reports whether name is an exported top-level function.
// Closures ("TestX.func1") and method values ("T.M-fm") are never exported,
// whatever the case of the enclosing name.
func exportedName(name string) bool {
	return token.IsExported(name) && token.IsIdentifier(strings.TrimSuffix(name, "[...]"))
}

// funcName returns the short name of a function value, for example
// "NewVillager" for "github.com/acme/village.NewVillager".
func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}

	name := f.Name()
	name = name[strings.LastIndexByte(name, '/')+1:]
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	return name
}

// Name returns the function name of the constructor.
func (c *Constructor) Name() string { return c.name }

// Params returns the declared parameter types in positional order.
func (c *Constructor) Params() []reflect.Type { return c.params }

// NumParams returns the number of declared parameters.
func (c *Constructor) NumParams() int { return len(c.params) }

// Result returns the type of the created instance.
func (c *Constructor) Result() reflect.Type { return c.result }

// Variadic reports whether the last parameter is variadic. A variadic
// parameter is matched as a plain slice.
func (c *Constructor) Variadic() bool { return c.fn.Type().IsVariadic() }

// Exported reports whether the constructor is publicly accessible.
func (c *Constructor) Exported() bool { return c.exported }

// Accessible reports whether Invoke is allowed to run the constructor.
func (c *Constructor) Accessible() bool { return c.accessible.Load() }

// SetAccessible overrides the access check. It is safe for concurrent use.
func (c *Constructor) SetAccessible(flag bool) { c.accessible.Store(flag) }

// Accepts reports whether args match the parameter list: the same count,
// and the dynamic type of every argument assignable to the corresponding
// parameter. A nil argument never matches.
func (c *Constructor) Accepts(args []any) bool {
	if len(args) != len(c.params) {
		return false
	}

	for i, arg := range args {
		if arg == nil || !reflect.TypeOf(arg).AssignableTo(c.params[i]) {
			return false
		}
	}

	return true
}

// String returns the constructor signature.
func (c *Constructor) String() string {
	names := make([]string, len(c.params))
	for i, p := range c.params {
		names[i] = p.String()
	}

	return fmt.Sprintf("%s(%s) %s", c.name, strings.Join(names, ", "), c.result)
}

// Invoke calls the constructor with args and returns the new instance.
func (c *Constructor) Invoke(args ...any) (any, error) {
	if len(args) != len(c.params) {
		return nil, fmt.Errorf(
			"%w: found %d but expected %d: call %s",
			ErrArgumentCount,
			len(args),
			len(c.params),
			c.name,
		)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil || !reflect.TypeOf(arg).AssignableTo(c.params[i]) {
			return nil, fmt.Errorf("%w: %T to %s: call %s, argument %d", ErrArgumentType, arg, c.params[i], c.name, i)
		}
		in[i] = reflect.ValueOf(arg)
	}

	return c.InvokeValues(in)
}

// InvokeValues calls the constructor with prepared argument values.
// A panic raised by the constructor is returned as ErrConstructorPanicked,
// an error returned by the constructor is passed through unchanged.
func (c *Constructor) InvokeValues(in []reflect.Value) (instance any, err error) {
	if !c.Accessible() {
		return nil, fmt.Errorf("%w: %s", ErrInaccessible, c.name)
	}

	if len(in) != len(c.params) {
		return nil, fmt.Errorf(
			"%w: found %d but expected %d: call %s",
			ErrArgumentCount,
			len(in),
			len(c.params),
			c.name,
		)
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("%w: %s: %v", ErrConstructorPanicked, c.name, r)
		}
	}()

	var out []reflect.Value
	if c.Variadic() {
		out = c.fn.CallSlice(in)
	} else {
		out = c.fn.Call(in)
	}

	if c.withError && !out[1].IsNil() {
		return nil, out[1].Interface().(error) //nolint:forcetypeassert
	}

	if isNil(out[0]) {
		return nil, fmt.Errorf("%w: %s", ErrNilInstance, c.name)
	}

	return out[0].Interface(), nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
