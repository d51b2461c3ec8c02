package inspector

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/anoideaopen/inspector/core/logger"
	"github.com/anoideaopen/inspector/core/reflectx"
	"github.com/anoideaopen/inspector/core/typeinfo"
	"github.com/sirupsen/logrus"
)

// CreateInstance locates the first constructor declared on the described type
// that accepts args and returns the instance it creates as T.
//
// A constructor accepts args when it has exactly len(args) parameters and the
// dynamic type of every argument is assignable to the corresponding parameter.
// Unexported constructors are made accessible before they are invoked.
//
// Parameters:
//   - d: The descriptor of the type to instantiate.
//   - args: The constructor arguments in positional order.
//
// Returns:
//   - T: The new instance.
//   - error: ErrConstructorNotFound if no constructor accepts args, or an
//     *InvocationError if the located constructor failed.
//
// Example:
//
//	v, err := CreateInstance[*Villager](d, "Bob", "farmer")
//	if errors.Is(err, ErrConstructorNotFound) {
//	    // retry with different arguments
//	}
func CreateInstance[T any](d typeinfo.Descriptor, args ...any) (T, error) {
	var zero T

	v, ctor, err := newInstance(d, args)
	if err != nil {
		return zero, err
	}

	return as[T](d, ctor, v)
}

// NewInstance is the untyped form of CreateInstance.
func NewInstance(d typeinfo.Descriptor, args ...any) (any, error) {
	v, _, err := newInstance(d, args)
	return v, err
}

// CreateInstanceFromText is like CreateInstance, but the arguments are text.
// The first constructor with len(args) parameters whose every parameter can be
// parsed from the corresponding string with reflectx.ParseValue is invoked.
func CreateInstanceFromText[T any](d typeinfo.Descriptor, args ...string) (T, error) {
	var zero T

	if d == nil {
		return zero, fmt.Errorf("%w: nil descriptor", ErrConstructorNotFound)
	}

	for _, ctor := range d.DeclaredConstructors() {
		if ctor.NumParams() != len(args) {
			continue
		}

		in, ok := parseArgs(ctor, args)
		if !ok {
			continue
		}

		v, err := invoke(d, ctor, func() (any, error) {
			return ctor.InvokeValues(in)
		})
		if err != nil {
			return zero, err
		}

		return as[T](d, ctor, v)
	}

	logger.Logger().WithFields(logrus.Fields{
		"type": d.Name(),
		"args": args,
	}).Debug("no constructor parses the arguments")

	return zero, fmt.Errorf("%w: %s(%s)", ErrConstructorNotFound, d.Name(), strings.Join(args, ", "))
}

func newInstance(d typeinfo.Descriptor, args []any) (any, *typeinfo.Constructor, error) {
	if d == nil {
		return nil, nil, fmt.Errorf("%w: nil descriptor", ErrConstructorNotFound)
	}

	ctor := firstFit(d, args)
	if ctor == nil {
		logger.Logger().WithFields(logrus.Fields{
			"type": d.Name(),
			"args": argTypes(args),
		}).Debug("no constructor accepts the arguments")

		return nil, nil, fmt.Errorf("%w: %s(%s)", ErrConstructorNotFound, d.Name(), argTypes(args))
	}

	v, err := invoke(d, ctor, func() (any, error) {
		return ctor.Invoke(args...)
	})
	if err != nil {
		return nil, nil, err
	}

	return v, ctor, nil
}

// firstFit returns the first declared constructor accepting args.
func firstFit(d typeinfo.Descriptor, args []any) *typeinfo.Constructor {
	for _, ctor := range d.DeclaredConstructors() {
		if ctor != nil && ctor.Accepts(args) {
			return ctor
		}
	}

	return nil
}

func invoke(d typeinfo.Descriptor, ctor *typeinfo.Constructor, call func() (any, error)) (any, error) {
	log := logger.Logger().WithFields(logrus.Fields{
		"type":        d.Name(),
		"constructor": ctor.Name(),
	})

	if !ctor.Accessible() {
		log.Debug("overriding constructor access")
		ctor.SetAccessible(true)
	}

	v, err := call()
	if err != nil {
		log.WithError(err).Debug("constructor failed")
		return nil, &InvocationError{Type: d.Name(), Constructor: ctor.Name(), Err: err}
	}

	log.Debug("instance created")

	return v, nil
}

func as[T any](d typeinfo.Descriptor, ctor *typeinfo.Constructor, v any) (T, error) {
	instance, ok := v.(T)
	if !ok {
		return instance, &InvocationError{
			Type:        d.Name(),
			Constructor: ctor.Name(),
			Err:         fmt.Errorf("%w: %T is not %s", ErrIncompatibleResult, v, reflect.TypeFor[T]()),
		}
	}

	return instance, nil
}

func parseArgs(ctor *typeinfo.Constructor, args []string) ([]reflect.Value, bool) {
	in := make([]reflect.Value, len(args))
	for i, p := range ctor.Params() {
		v, err := reflectx.ParseValue(args[i], p)
		if err != nil {
			return nil, false
		}
		in[i] = v
	}

	return in, true
}

func argTypes(args []any) string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = fmt.Sprintf("%T", arg)
	}

	return strings.Join(names, ", ")
}
