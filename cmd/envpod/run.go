package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/runner"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var provisionFirst bool

	cmd := &cobra.Command{
		Use:   "run <target> [args...]",
		Short: "Run a named target inside the project environment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(flags)
			if err != nil {
				return err
			}

			root, _, desired, err := loadProject()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := runner.New(provision.NewVenv(log), log)
			code, err := r.Run(ctx, root, desired, args[0], args[1:], runner.Options{
				Provision: provisionFirst,
			})
			if err != nil {
				return err
			}
			if code != 0 {
				return exitCodeError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&provisionFirst, "provision", false, "Reconcile the environment before running the target")
	// Flags after the target belong to the target.
	cmd.Flags().SetInterspersed(false)

	return cmd
}
