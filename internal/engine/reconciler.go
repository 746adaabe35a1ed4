package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/marker"
	"github.com/anikchand461/envpod/internal/plan"
	"github.com/anikchand461/envpod/internal/probe"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
	envpoderrors "github.com/anikchand461/envpod/pkg/errors"
)

// ReconcileOutcome captures one full reconciliation pass.
type ReconcileOutcome struct {
	RunID    string
	Observed state.ObservedState
	Plan     plan.Plan
	Result   ApplyResult
}

// Converged reports whether the pass ended with the environment matching the
// desired state.
func (o ReconcileOutcome) Converged() bool {
	return o.Result.Status == StatusConverged
}

// Reconciler orchestrates probe → diff → apply → record under the project
// lock. Probing on its own (Evaluate) takes no lock.
type Reconciler struct {
	prober   *probe.Prober
	executor *Executor
	log      *logger.Logger
}

// NewReconciler wires the reconciliation flow on top of a provisioner.
func NewReconciler(prov provision.Provisioner, log *logger.Logger) *Reconciler {
	return &Reconciler{
		prober:   probe.New(prov, log),
		executor: NewExecutor(prov, log),
		log:      log.WithComponent("reconciler"),
	}
}

// Executor exposes the underlying executor so callers can attach progress
// hooks before reconciling.
func (r *Reconciler) Executor() *Executor {
	return r.executor
}

// Evaluate probes and diffs without mutating anything. Used by doctor and by
// run's pre-flight check.
func (r *Reconciler) Evaluate(ctx context.Context, projectRoot string, desired state.DesiredState) (state.ObservedState, plan.Plan) {
	observed := r.prober.Probe(ctx, projectRoot)
	return observed, plan.Diff(desired, observed)
}

// Reconcile converges the project environment onto the desired state. The
// marker is written only when the result is fully converged, so a failed
// pass never masks itself as succeeded on the next run. A non-nil error
// accompanies any outcome that did not converge.
func (r *Reconciler) Reconcile(ctx context.Context, projectRoot string, desired state.DesiredState) (ReconcileOutcome, error) {
	outcome := ReconcileOutcome{RunID: uuid.NewString()}
	log := r.log.WithFields(map[string]any{"run_id": outcome.RunID, "project": desired.Name})

	lock, err := marker.AcquireLock(projectRoot)
	if err != nil {
		return outcome, err
	}
	defer lock.Release() //nolint:errcheck

	outcome.Observed = r.prober.Probe(ctx, projectRoot)
	outcome.Plan = plan.Diff(desired, outcome.Observed)

	if outcome.Plan.Empty() {
		outcome.Result = ApplyResult{Status: StatusConverged}
		log.Debug("already converged, nothing to apply")
		return outcome, nil
	}

	log.Info("applying plan:\n" + outcome.Plan.String())
	outcome.Result = r.executor.Apply(ctx, projectRoot, desired, outcome.Plan)

	if !outcome.Converged() {
		if failure, ok := outcome.Result.FirstFailure(); ok {
			return outcome, envpoderrors.NewActionError(
				string(failure.Action.Type),
				outcome.Result.Completed(),
				fmt.Errorf("%s", failure.Reason),
			)
		}
		return outcome, fmt.Errorf("reconciliation interrupted; completed actions are preserved and a re-run resumes the rest")
	}

	if err := marker.NewRecorder(projectRoot).RecordSuccess(desired.Fingerprint(), outcome.RunID); err != nil {
		return outcome, fmt.Errorf("environment converged but marker write failed: %w", err)
	}

	log.Info("converged")
	return outcome, nil
}
