// Package codegen writes registration tables for scanned types.
//
// A generated file lives in the package it describes, so it can reference
// unexported constructors and unexported methods by name. Its init function
// registers one descriptor per type with the default registry.
package codegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anoideaopen/inspector/core/logger"
	"github.com/anoideaopen/inspector/core/srcscan"
	"github.com/anoideaopen/inspector/core/telemetry"
	"github.com/dave/jennifer/jen"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	pathReflect  = "reflect"
	pathReflectx = "github.com/anoideaopen/inspector/core/reflectx"
	pathRegistry = "github.com/anoideaopen/inspector/core/registry"

	// DefaultOutput is the name of the generated file in every package.
	DefaultOutput = "zz_generated.inspector.go"

	header = "Code generated by inspector. DO NOT EDIT."
)

// Error types.
var (
	ErrNoTypes       = errors.New("no types to generate")
	ErrMixedPackages = errors.New("types belong to different packages")
	ErrNoPackageDir  = errors.New("package directory is unknown")
	ErrInvalidOutput = errors.New("output must be a file name")
)

// Options configures Generate.
type Options struct {
	// Output is the file name written into every package directory.
	Output string
}

// Render writes the registration table for infos to w. All infos must
// belong to the same package.
func Render(w io.Writer, infos []*srcscan.TypeInfo) error {
	if len(infos) == 0 {
		return ErrNoTypes
	}

	pkgPath, pkgName := infos[0].Package, infos[0].PackageName
	for _, info := range infos[1:] {
		if info.Package != pkgPath {
			return fmt.Errorf("%w: %s and %s", ErrMixedPackages, pkgPath, info.Package)
		}
	}

	f := jen.NewFilePathName(pkgPath, pkgName)
	f.HeaderComment(header)

	stmts := make([]jen.Code, 0, len(infos))
	for _, info := range infos {
		stmts = append(stmts, register(info))
	}

	f.Func().Id("init").Params().Block(stmts...)

	return f.Render(w)
}

// register renders the registration of a single type.
func register(info *srcscan.TypeInfo) jen.Code {
	methods := make([]jen.Code, 0, len(info.Methods))
	for _, name := range info.Methods {
		methods = append(methods, jen.Lit(name))
	}

	args := []jen.Code{
		jen.Qual(pathReflect, "TypeFor").Types(jen.Id(info.Name)).Call(),
		jen.Qual(pathReflectx, "WithDeclaredMethods").Call(methods...),
	}

	var ifaces []jen.Code
	for _, iface := range info.Interfaces {
		switch {
		case iface.Package == "":
			ifaces = append(ifaces, typeFor(jen.Id(iface.Name)))
		case iface.Package == info.Package || iface.Exported:
			ifaces = append(ifaces, typeFor(jen.Qual(iface.Package, iface.Name)))
		}
	}
	if len(ifaces) > 0 {
		args = append(args, jen.Qual(pathReflectx, "WithInterfaces").Call(ifaces...))
	}

	if len(info.Constructors) > 0 {
		ctors := make([]jen.Code, 0, len(info.Constructors))
		for _, c := range info.Constructors {
			ctors = append(ctors, jen.Id(c.Name))
		}
		args = append(args, jen.Qual(pathReflectx, "WithConstructors").Call(ctors...))
	}

	return jen.Qual(pathRegistry, "MustRegister").Call(
		jen.Qual(pathReflectx, "MustDescribe").Custom(jen.Options{
			Open:      "(",
			Close:     ")",
			Separator: ",",
			Multi:     true,
		}, args...),
	)
}

func typeFor(t jen.Code) jen.Code {
	return jen.Qual(pathReflect, "TypeFor").Types(t).Call()
}

// Generate writes one registration file per package and returns the paths
// of the written files in the order the packages first appear in infos.
func Generate(ctx context.Context, infos []*srcscan.TypeInfo, opts Options) ([]string, error) {
	output := opts.Output
	if output == "" {
		output = DefaultOutput
	}

	if filepath.Base(output) != output {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidOutput, output)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "codegen.Generate")
	defer span.End()

	span.SetAttributes(telemetry.TypeCount(len(infos)))

	var (
		order  []string
		groups = make(map[string][]*srcscan.TypeInfo)
	)
	for _, info := range infos {
		if _, ok := groups[info.Package]; !ok {
			order = append(order, info.Package)
		}
		groups[info.Package] = append(groups[info.Package], info)
	}

	paths := make([]string, len(order))
	g, ctx := errgroup.WithContext(ctx)
	for i, pkg := range order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			group := groups[pkg]

			_, span := telemetry.Tracer().Start(ctx, "codegen.Render")
			defer span.End()

			span.SetAttributes(telemetry.PackagePattern(pkg), telemetry.TypeCount(len(group)))

			if group[0].Dir == "" {
				return fmt.Errorf("%w: %s", ErrNoPackageDir, pkg)
			}

			var buf bytes.Buffer
			if err := Render(&buf, group); err != nil {
				return fmt.Errorf("render %s: %w", pkg, err)
			}

			path := filepath.Join(group[0].Dir, output)
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec
				return fmt.Errorf("write %s: %w", pkg, err)
			}

			logger.Logger().WithFields(logrus.Fields{
				"package": pkg,
				"types":   len(group),
				"file":    path,
			}).Debug("registration table written")

			paths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return paths, nil
}
