package main

import (
	"fmt"

	"github.com/anoideaopen/inspector/core/codegen"
	"github.com/spf13/cobra"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "generate [packages...]",
		Short: "Write registration tables into the inspected packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := opts.scan(cmd, args, types)
			if err != nil {
				return err
			}

			paths, err := codegen.Generate(cmd.Context(), infos, codegen.Options{Output: opts.cfg.Output})
			if err != nil {
				return err
			}

			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "limit generation to the named types")

	return cmd
}
