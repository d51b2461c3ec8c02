package main

import (
	"fmt"

	"github.com/anoideaopen/inspector/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bi, err := version.BuildInfo()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", bi.Main.Path, bi.Main.Version, bi.GoVersion)

			return nil
		},
	}
}
