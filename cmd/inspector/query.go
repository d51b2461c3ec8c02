package main

import (
	"fmt"
	"strings"

	"github.com/anoideaopen/inspector/core/inspector"
	"github.com/anoideaopen/inspector/core/srcscan"
	"github.com/anoideaopen/inspector/core/typeinfo"
	"github.com/spf13/cobra"
)

func newFieldsCommand(opts *rootOptions) *cobra.Command {
	var (
		tag   string
		types []string
	)

	cmd := &cobra.Command{
		Use:   "fields [packages...]",
		Short: "List fields carrying the annotation tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := opts.scan(cmd, args, types)
			if err != nil {
				return err
			}

			if tag == "" {
				tag = opts.cfg.Tag
			}

			for _, info := range infos {
				fields := inspector.AnnotatedFields(info.Descriptor(), typeinfo.Marker(tag))
				if len(fields) == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", info.QualifiedName(), strings.Join(fields, ", "))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "annotation tag (default from config)")
	cmd.Flags().StringSliceVar(&types, "type", nil, "limit output to the named types")

	return cmd
}

func newMethodsCommand(opts *rootOptions) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "methods [packages...]",
		Short: "List declared methods together with the methods of implemented interfaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := opts.scan(cmd, args, types)
			if err != nil {
				return err
			}

			for _, info := range infos {
				methods := inspector.AllDeclaredMethods(info.Descriptor())
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", info.QualifiedName(), strings.Join(methods, ", "))
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "limit output to the named types")

	return cmd
}

func newConstructorsCommand(opts *rootOptions) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "constructors [packages...]",
		Short: "List constructors in the order they are matched",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := opts.scan(cmd, args, types)
			if err != nil {
				return err
			}

			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", info.QualifiedName())
				for _, c := range info.Constructors {
					fmt.Fprintf(cmd.OutOrStdout(), "\t%s\n", signature(info, c))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "limit output to the named types")

	return cmd
}

func signature(info *srcscan.TypeInfo, c srcscan.Constructor) string {
	var sb strings.Builder

	sb.WriteString(c.Name)
	sb.WriteString("(")
	sb.WriteString(strings.Join(c.Params, ", "))
	sb.WriteString(") ")

	if c.WithError {
		sb.WriteString("(")
	}
	if c.Pointer {
		sb.WriteString("*")
	}
	sb.WriteString(info.Name)
	if c.WithError {
		sb.WriteString(", error)")
	}

	if !c.Exported {
		sb.WriteString(" [unexported]")
	}

	return sb.String()
}
