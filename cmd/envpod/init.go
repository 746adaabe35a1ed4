package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anikchand461/envpod/internal/project"
	"github.com/anikchand461/envpod/internal/provision"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config inferred from the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(flags)
			if err != nil {
				return err
			}

			root, err := project.ScaffoldRoot(".")
			if err != nil {
				return err
			}

			// A missing interpreter is fine here; the scaffold falls back to
			// a default constraint and doctor reports the gap.
			version, err := provision.NewVenv(log).Detect(cmd.Context())
			if err != nil {
				version = ""
			}

			path, err := project.Scaffold(root, project.ScaffoldOptions{
				Force:         force,
				PythonVersion: version,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
