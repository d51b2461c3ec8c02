// Package srcscan builds type metadata from Go source code.
//
// Reflection cannot see unexported methods and has no notion of declaration
// order for functions, so the scanner loads packages with go/packages and
// reads the same information from go/types instead.
package srcscan

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anoideaopen/inspector/core/logger"
	"github.com/anoideaopen/inspector/core/stringsx"
	"github.com/anoideaopen/inspector/core/telemetry"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/tools/go/packages"
)

// Error types.
var (
	ErrNoPatterns       = errors.New("no package patterns")
	ErrPackage          = errors.New("package has errors")
	ErrUnknownInterface = errors.New("interface not found")
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedDeps

var errorType = types.Universe.Lookup("error").Type()

// Options configures Scan.
type Options struct {
	// Dir is the directory the patterns are resolved in.
	Dir string
	// Patterns are go/packages patterns such as "./...".
	Patterns []string
	// Interfaces are qualified names of interfaces declared outside the
	// scanned packages, for example "fmt.Stringer" or "error".
	Interfaces []string
	// ConstructorPrefixes select constructor functions by name.
	ConstructorPrefixes []string
	// Types limits the result to the named types. Empty means all types.
	Types []string
}

// Scan loads the packages matched by opts.Patterns and describes every
// named non-interface type declared in them.
func Scan(ctx context.Context, opts Options) ([]*TypeInfo, error) {
	if len(opts.Patterns) == 0 {
		return nil, ErrNoPatterns
	}

	ctx, span := telemetry.Tracer().Start(ctx, "srcscan.Scan")
	defer span.End()

	span.SetAttributes(telemetry.PackagePattern(opts.Patterns...))

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
	}

	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load %s: %w", strings.Join(opts.Patterns, " "), err)
	}

	if err = packageErrors(pkgs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	configured, err := lookupInterfaces(cfg, pkgs, opts.Interfaces)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prefixes := opts.ConstructorPrefixes
	if len(prefixes) == 0 {
		prefixes = []string{"New", "new"}
	}

	var infos []*TypeInfo
	for _, pkg := range pkgs {
		// Interfaces of the type's own package come first. Interfaces of
		// other scanned packages are only considered when configured.
		ifaces := append(packageInterfaces(pkg), configured...)
		infos = append(infos, scanPackage(pkg, ifaces, prefixes, opts.Types)...)
	}

	span.SetAttributes(telemetry.TypeCount(len(infos)))
	logger.Logger().WithField("types", len(infos)).Debug("source scanned")

	return infos, nil
}

func packageErrors(pkgs []*packages.Package) error {
	var err error
	for _, pkg := range pkgs {
		for _, pkgErr := range pkg.Errors {
			err = errors.Join(err, fmt.Errorf("%w: %s: %s", ErrPackage, pkg.PkgPath, pkgErr.Msg))
		}
	}

	return err
}

// candidate is an interface a scanned type may be recorded as implementing.
type candidate struct {
	obj *types.TypeName
	// deps holds the transitive imports of the declaring package. A type
	// of one of those packages cannot refer to the interface, the
	// generated registration table would close an import cycle.
	deps map[string]bool
}

// lookupInterfaces resolves qualified interface names. The universe
// interfaces ("error") need no package. Packages already reachable from the
// scanned ones are reused so the interface and the scanned types share one
// type universe.
func lookupInterfaces(cfg *packages.Config, scanned []*packages.Package, names []string) ([]candidate, error) {
	if len(names) == 0 {
		return nil, nil
	}

	byPath := make(map[string][]string)
	var paths []string
	var result []candidate
	for _, name := range names {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			obj, ok := types.Universe.Lookup(name).(*types.TypeName)
			if !ok || !types.IsInterface(obj.Type()) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownInterface, name)
			}
			result = append(result, candidate{obj: obj})
			continue
		}

		path := name[:i]
		if _, ok := byPath[path]; !ok {
			paths = append(paths, path)
		}
		byPath[path] = append(byPath[path], name[i+1:])
	}

	if len(paths) == 0 {
		return result, nil
	}

	loaded := make(map[string]*packages.Package)
	packages.Visit(scanned, nil, func(pkg *packages.Package) {
		loaded[pkg.PkgPath] = pkg
	})

	var missing []string
	for _, path := range paths {
		if _, ok := loaded[path]; !ok {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		extCfg := *cfg
		extCfg.Mode = packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps

		pkgs, err := packages.Load(&extCfg, missing...)
		if err != nil {
			return nil, fmt.Errorf("load interfaces: %w", err)
		}

		if err = packageErrors(pkgs); err != nil {
			return nil, err
		}

		for _, pkg := range pkgs {
			loaded[pkg.PkgPath] = pkg
		}
	}

	for _, path := range paths {
		pkg, ok := loaded[path]
		if !ok || pkg.Types == nil {
			return nil, fmt.Errorf("%w: package %s", ErrUnknownInterface, path)
		}

		deps := transitiveImports(pkg)
		for _, name := range byPath[path] {
			obj, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
			if !ok || !types.IsInterface(obj.Type()) {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownInterface, path, name)
			}
			result = append(result, candidate{obj: obj, deps: deps})
		}
	}

	return result, nil
}

func transitiveImports(pkg *packages.Package) map[string]bool {
	deps := make(map[string]bool)
	packages.Visit([]*packages.Package{pkg}, nil, func(dep *packages.Package) {
		if dep != pkg {
			deps[dep.PkgPath] = true
		}
	})

	return deps
}

// packageInterfaces returns the non-generic interfaces declared in pkg that
// have at least one method of their own.
func packageInterfaces(pkg *packages.Package) []candidate {
	scope := pkg.Types.Scope()

	var result []candidate
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || obj.IsAlias() {
			continue
		}

		named, ok := obj.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		iface, ok := named.Underlying().(*types.Interface)
		if !ok || iface.NumExplicitMethods() == 0 {
			continue
		}

		result = append(result, candidate{obj: obj})
	}

	return result
}

func scanPackage(pkg *packages.Package, ifaces []candidate, prefixes, only []string) []*TypeInfo {
	scope := pkg.Types.Scope()

	var (
		infos  []*TypeInfo
		byType = make(map[*types.TypeName]*TypeInfo)
	)
	for _, name := range scope.Names() {
		if len(only) > 0 && !stringsx.OneOf(name, only...) {
			continue
		}

		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || obj.IsAlias() {
			continue
		}

		named, ok := obj.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 || types.IsInterface(named) {
			continue
		}

		info := &TypeInfo{
			Package:     pkg.PkgPath,
			PackageName: pkg.Name,
			Dir:         packageDir(pkg),
			Name:        name,
			Exported:    obj.Exported(),
			Fields:      structFields(named),
			Methods:     declaredMethods(named),
			Interfaces:  implemented(named, pkg.PkgPath, ifaces),
		}
		infos = append(infos, info)
		byType[obj] = info
	}

	collectConstructors(pkg, byType, prefixes)

	return infos
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) == 0 {
		return ""
	}

	return filepath.Dir(pkg.GoFiles[0])
}

func structFields(named *types.Named) []Field {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	fields := make([]Field, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		fields = append(fields, Field{
			Name:     f.Name(),
			Tag:      st.Tag(i),
			Embedded: f.Embedded(),
			Exported: f.Exported(),
		})
	}

	return fields
}

// declaredMethods lists methods whose receiver is named itself, including
// unexported ones. Promoted methods live on the embedded type and are not
// part of named's method list.
func declaredMethods(named *types.Named) []string {
	methods := make([]string, 0, named.NumMethods())
	for i := 0; i < named.NumMethods(); i++ {
		methods = append(methods, named.Method(i).Name())
	}

	sort.Strings(methods)

	return methods
}

// implemented returns the candidates named satisfies, skipping interfaces
// whose package imports pkgPath.
func implemented(named *types.Named, pkgPath string, ifaces []candidate) []Interface {
	var result []Interface
	seen := make(map[string]bool)
	ptr := types.NewPointer(named)
	for _, c := range ifaces {
		obj := c.obj
		iface, ok := obj.Type().Underlying().(*types.Interface)
		if !ok || c.deps[pkgPath] {
			continue
		}

		if !types.Implements(named, iface) && !types.Implements(ptr, iface) {
			continue
		}

		methods := make([]string, 0, iface.NumExplicitMethods())
		for i := 0; i < iface.NumExplicitMethods(); i++ {
			methods = append(methods, iface.ExplicitMethod(i).Name())
		}
		sort.Strings(methods)

		var path string
		if obj.Pkg() != nil {
			path = obj.Pkg().Path()
		}

		if seen[path+"."+obj.Name()] {
			continue
		}
		seen[path+"."+obj.Name()] = true

		result = append(result, Interface{
			Package:  path,
			Name:     obj.Name(),
			Exported: obj.Exported(),
			Methods:  methods,
		})
	}

	return result
}

// collectConstructors walks the package files in order so constructors keep
// their source declaration order.
func collectConstructors(pkg *packages.Package, byType map[*types.TypeName]*TypeInfo, prefixes []string) {
	qualifier := types.RelativeTo(pkg.Types)

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv != nil || !stringsx.HasPrefix(fd.Name.Name, prefixes...) {
				continue
			}

			fn, ok := pkg.TypesInfo.Defs[fd.Name].(*types.Func)
			if !ok {
				continue
			}

			sig, ok := fn.Type().(*types.Signature)
			if !ok || sig.TypeParams().Len() > 0 {
				continue
			}

			obj, pointer, withError, ok := constructed(sig)
			if !ok {
				continue
			}

			info, ok := byType[obj]
			if !ok {
				continue
			}

			params := make([]string, sig.Params().Len())
			for i := range params {
				params[i] = types.TypeString(sig.Params().At(i).Type(), qualifier)
			}
			if sig.Variadic() && len(params) > 0 {
				params[len(params)-1] = "..." + strings.TrimPrefix(params[len(params)-1], "[]")
			}

			info.Constructors = append(info.Constructors, Constructor{
				Name:      fn.Name(),
				Params:    params,
				Exported:  fn.Exported(),
				Pointer:   pointer,
				WithError: withError,
			})
		}
	}
}

// constructed returns the type a constructor signature creates: T or *T,
// optionally followed by an error.
func constructed(sig *types.Signature) (obj *types.TypeName, pointer, withError, ok bool) {
	res := sig.Results()
	switch {
	case res.Len() == 1:
	case res.Len() == 2 && types.Identical(res.At(1).Type(), errorType):
		withError = true
	default:
		return nil, false, false, false
	}

	t := res.At(0).Type()
	if p, isPtr := t.(*types.Pointer); isPtr {
		t = p.Elem()
		pointer = true
	}

	named, isNamed := t.(*types.Named)
	if !isNamed {
		return nil, false, false, false
	}

	return named.Obj(), pointer, withError, true
}
