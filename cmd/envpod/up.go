package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anikchand461/envpod/internal/config"
	"github.com/anikchand461/envpod/internal/engine"
	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/plan"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
	"github.com/anikchand461/envpod/internal/tui"
	"github.com/anikchand461/envpod/internal/watch"
)

func newUpCmd(flags *rootFlags) *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Reconcile the environment with the declared config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watchMode {
				return runUpWatch(ctx, log)
			}

			root, _, desired, err := loadProject()
			if err != nil {
				return err
			}

			interactive := term.IsTerminal(int(os.Stdout.Fd()))
			return runUp(ctx, log, root, desired, interactive)
		},
	}

	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Keep reconciling as config inputs change")

	return cmd
}

func runUp(ctx context.Context, log *logger.Logger, root string, desired state.DesiredState, interactive bool) error {
	reconciler := engine.NewReconciler(provision.NewVenv(log), log)

	if !interactive {
		reconciler.Executor().OnActionStart = func(action plan.Action) {
			log.Info("applying: " + action.Describe())
		}
		_, err := reconciler.Reconcile(ctx, root, desired)
		if err == nil {
			fmt.Println("environment up to date")
		}
		return err
	}

	// The plan shown in the progress view comes from a read-only pre-pass;
	// the reconciliation re-probes under the lock.
	_, pending := reconciler.Evaluate(ctx, root, desired)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(desired.Name, pending).WithCancel(cancel)
	program := tea.NewProgram(model)

	reconciler.Executor().OnActionStart = func(action plan.Action) {
		program.Send(tui.ActionStartMsg{Action: action})
	}
	reconciler.Executor().OnActionDone = func(result engine.ActionResult) {
		program.Send(tui.ActionDoneMsg{Result: result})
	}

	reconcileErr := make(chan error, 1)
	go func() {
		outcome, err := reconciler.Reconcile(ctx, root, desired)
		program.Send(tui.ReconcileDoneMsg{Outcome: outcome, Err: err})
		reconcileErr <- err
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-reconcileErr
		return err
	}
	return <-reconcileErr
}

// runUpWatch reconciles once, then re-reconciles whenever a config input
// changes. Watch mode always uses plain output: the process is long-lived and
// logs interleave with reconciliation results.
func runUpWatch(ctx context.Context, log *logger.Logger) error {
	root, cfg, desired, err := loadProject()
	if err != nil {
		return err
	}

	if err := runUp(ctx, log, root, desired, false); err != nil {
		log.Error(err, "initial reconciliation failed; watching for fixes")
	}

	watcher := watch.New(root, watchedFiles(cfg), log)
	log.Info("watching for changes (ctrl+c to stop)")

	err = watcher.Run(ctx, func(ctx context.Context) error {
		// Reload so config edits take effect, including edits that change
		// which files feed the environment.
		root, cfg, desired, err := loadProject()
		if err != nil {
			return err
		}
		watcher.Track(watchedFiles(cfg))
		return runUp(ctx, log, root, desired, false)
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

func watchedFiles(cfg *config.Config) []string {
	files := []string{config.DefaultFileName}
	if cfg.Dependencies.File != "" {
		files = append(files, cfg.Dependencies.File)
	}
	if cfg.EnvFile != "" {
		files = append(files, cfg.EnvFile)
	}
	return files
}
