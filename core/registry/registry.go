// Package registry holds a process-wide table of type descriptors. Generated
// registration code fills it from init functions; callers look descriptors up
// by qualified name or by runtime type.
//
// A qualified name is the import path of the declaring package followed by
// the type name, for example "github.com/acme/village.Villager". Types of two
// packages that share a package name therefore never collide. Descriptors
// without a runtime type are keyed by their own Name.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/anoideaopen/inspector/core/typeinfo"
)

// Error types.
var (
	ErrNilDescriptor     = errors.New("descriptor is nil")
	ErrAlreadyRegistered = errors.New("type has already registered")
	ErrNotRegistered     = errors.New("type is not registered")
)

// Registry maps type names and runtime types to descriptors.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]typeinfo.Descriptor
	byType map[reflect.Type]typeinfo.Descriptor
	names  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]typeinfo.Descriptor),
		byType: make(map[reflect.Type]typeinfo.Descriptor),
	}
}

// QualifiedName returns the key d is registered under.
func QualifiedName(d typeinfo.Descriptor) string {
	t := d.Type()
	if t == nil || t.PkgPath() == "" || t.Name() == "" {
		return d.Name()
	}

	return t.PkgPath() + "." + t.Name()
}

// Register adds d to the registry. A qualified name can be registered only once.
func (r *Registry) Register(d typeinfo.Descriptor) error {
	if d == nil {
		return ErrNilDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := QualifiedName(d)
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: '%s'", ErrAlreadyRegistered, name)
	}

	r.byName[name] = d
	if t := d.Type(); t != nil {
		r.byType[t] = d
	}
	r.names = append(r.names, name)

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(d typeinfo.Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor registered under the qualified name.
func (r *Registry) Lookup(name string) (typeinfo.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotRegistered, name)
	}

	return d, nil
}

// LookupType returns the descriptor of t. Pointer types resolve to their
// element type.
func (r *Registry) LookupType(t reflect.Type) (typeinfo.Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNotRegistered)
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotRegistered, t)
	}

	return d, nil
}

// Names returns the registered qualified names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}

// Default is the registry used by generated registration code.
var Default = New()

// Register adds d to the Default registry.
func Register(d typeinfo.Descriptor) error { return Default.Register(d) }

// MustRegister adds d to the Default registry and panics on error.
func MustRegister(d typeinfo.Descriptor) { Default.MustRegister(d) }

// Lookup returns the descriptor registered under the qualified name in the Default registry.
func Lookup(name string) (typeinfo.Descriptor, error) { return Default.Lookup(name) }

// LookupType returns the descriptor of t from the Default registry.
func LookupType(t reflect.Type) (typeinfo.Descriptor, error) { return Default.LookupType(t) }

// For returns the descriptor of T from the Default registry.
func For[T any]() (typeinfo.Descriptor, error) { return Default.LookupType(reflect.TypeFor[T]()) }
