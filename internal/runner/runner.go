package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/anikchand461/envpod/internal/engine"
	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
	envpoderrors "github.com/anikchand461/envpod/pkg/errors"
)

// Options controls a single dispatch.
type Options struct {
	// Provision reconciles the environment before running the target instead
	// of failing when it is out of date.
	Provision bool
}

// Runner resolves a named run target and executes it inside the project
// environment. Target resolution happens before any probing so an unknown
// target fails instantly.
type Runner struct {
	prov       provision.Provisioner
	reconciler *engine.Reconciler
	log        *logger.Logger

	// Stdin, Stdout, and Stderr are attached to the child process. They
	// default to the calling process's streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Runner on top of a provisioner.
func New(prov provision.Provisioner, log *logger.Logger) *Runner {
	return &Runner{
		prov:       prov,
		reconciler: engine.NewReconciler(prov, log),
		log:        log.WithComponent("runner"),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Run dispatches the named target with extra arguments appended and returns
// the child's exit code. The returned code is meaningful only when err is nil
// or the child itself exited non-zero.
func (r *Runner) Run(ctx context.Context, projectRoot string, desired state.DesiredState, target string, extraArgs []string, opts Options) (int, error) {
	command, ok := desired.RunTargets[target]
	if !ok {
		return -1, envpoderrors.NewTargetNotFoundError(target, targetNames(desired.RunTargets))
	}

	if err := r.ensureReady(ctx, projectRoot, desired, opts); err != nil {
		return -1, err
	}

	r.log.Debug(fmt.Sprintf("dispatching target %q: %s", target, command))

	// Extra arguments land in the shell's positional parameters so quoting
	// survives intact.
	shellArgs := []string{"-c", command + ` "$@"`, "sh"}
	if len(extraArgs) == 0 {
		shellArgs = []string{"-c", command}
	}
	cmd := exec.CommandContext(ctx, "sh", append(shellArgs, extraArgs...)...)
	cmd.Dir = projectRoot
	cmd.Env = r.buildEnv(projectRoot, desired.EnvVars)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		// The child's exit code passes through untouched.
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to start target %q: %w", target, err)
}

// ensureReady verifies the environment matches the declared configuration,
// reconciling it first when Provision was requested.
func (r *Runner) ensureReady(ctx context.Context, projectRoot string, desired state.DesiredState, opts Options) error {
	if opts.Provision {
		_, err := r.reconciler.Reconcile(ctx, projectRoot, desired)
		return err
	}

	_, pending := r.reconciler.Evaluate(ctx, projectRoot, desired)
	if pending.Empty() {
		return nil
	}

	descriptions := make([]string, 0, len(pending.Actions))
	for _, action := range pending.Actions {
		descriptions = append(descriptions, action.Describe())
	}
	return envpoderrors.NewEnvironmentNotReadyError(descriptions)
}

// buildEnv layers the child environment: the calling process's environment,
// then the environment's activation variables, then the declared variables.
// Later layers win.
func (r *Runner) buildEnv(projectRoot string, declared map[string]string) []string {
	merged := make(map[string]string)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			merged[key] = value
		}
	}

	for key, value := range r.prov.ActivationVars(projectRoot) {
		merged[key] = value
	}

	for key, value := range declared {
		merged[key] = value
	}

	env := make([]string, 0, len(merged))
	for key, value := range merged {
		env = append(env, key+"="+value)
	}
	sort.Strings(env)
	return env
}

func targetNames(targets map[string]string) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
