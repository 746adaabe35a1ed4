package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anikchand461/envpod/internal/doctor"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/tui"
)

func newDoctorCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(flags)
			if err != nil {
				return err
			}

			root, cfg, desired, err := loadProject()
			if err != nil {
				return err
			}

			findings := doctor.New(provision.NewVenv(log), log).
				Diagnose(cmd.Context(), root, cfg, desired)

			if asJSON {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(findings); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderFindings(desired.Name, findings))
			}

			if doctor.HasErrors(findings) {
				return exitCodeError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit findings as JSON")

	return cmd
}
