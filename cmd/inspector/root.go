package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/anoideaopen/inspector/core/logger"
	"github.com/anoideaopen/inspector/core/srcscan"
	"github.com/anoideaopen/inspector/core/telemetry"
	"github.com/anoideaopen/inspector/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	shutdown telemetry.ShutdownFunc
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "inspector",
		Short:         "Inspect annotated fields, methods and constructors of Go types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.verbose {
				logger.Logger().SetLevel(logrus.DebugLevel)
			}

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.shutdown = telemetry.InstallTraceProvider(cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.shutdown == nil {
				return nil
			}
			return opts.shutdown(context.Background())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (default ./"+config.DefaultFileName+" when present)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newFieldsCommand(opts),
		newMethodsCommand(opts),
		newConstructorsCommand(opts),
		newGenerateCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// loadConfig reads path, or the default file when path is empty and the
// file exists, or falls back to the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	if _, err := os.Stat(config.DefaultFileName); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}

	return config.Load(config.DefaultFileName)
}

// scan loads the packages named by args, or the configured packages when no
// args are given.
func (o *rootOptions) scan(cmd *cobra.Command, args []string, types []string) ([]*srcscan.TypeInfo, error) {
	patterns := o.cfg.Packages
	if len(args) > 0 {
		patterns = args
	}

	if len(types) == 0 {
		types = o.cfg.Types
	}

	return srcscan.Scan(cmd.Context(), srcscan.Options{
		Dir:                 o.cfg.Dir,
		Patterns:            patterns,
		Interfaces:          o.cfg.Interfaces,
		ConstructorPrefixes: o.cfg.ConstructorPrefixes,
		Types:               types,
	})
}
