package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anikchand461/envpod/internal/config"
	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/project"
	"github.com/anikchand461/envpod/internal/state"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "envpod",
		Short:         "envpod keeps a local Python dev environment converged with its declared config",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newInitCmd(flags))
	cmd.AddCommand(newUpCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newDoctorCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newLogger(flags *rootFlags) (*logger.Logger, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true})
}

// loadProject resolves the project root from the working directory, parses
// the config, and builds the desired state. Every command except init starts
// here.
func loadProject() (string, *config.Config, state.DesiredState, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, state.DesiredState{}, err
	}

	root, err := project.FindRoot(cwd)
	if err != nil {
		return "", nil, state.DesiredState{}, err
	}

	cfg, err := config.ParseConfig(filepath.Join(root, config.DefaultFileName))
	if err != nil {
		return "", nil, state.DesiredState{}, err
	}

	desired, err := config.Desired(cfg, root)
	if err != nil {
		return "", nil, state.DesiredState{}, err
	}

	return root, cfg, desired, nil
}
