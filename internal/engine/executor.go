package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/plan"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
)

// Executor applies plans against the provisioning capability. It owns no
// persistent state; everything it changes goes through the Provisioner, and
// everything it learns comes back in the ApplyResult.
type Executor struct {
	prov provision.Provisioner
	log  *logger.Logger

	// OnActionStart and OnActionDone, when set, receive progress
	// notifications for interactive output. Both run on the executor's
	// goroutine.
	OnActionStart func(plan.Action)
	OnActionDone  func(ActionResult)
}

// NewExecutor creates an Executor backed by the given provisioner.
func NewExecutor(prov provision.Provisioner, log *logger.Logger) *Executor {
	return &Executor{prov: prov, log: log.WithComponent("executor")}
}

// Apply executes the plan's actions strictly in order. The first failure
// halts the remaining plan: later actions may depend on earlier ones, and
// installing into a half-created environment helps nobody. Completed actions
// are never rolled back: a later reconciliation re-probes and plans only the
// remaining gap. Cancellation stops launching actions; the in-flight action
// finishes (or fails) on its own.
func (e *Executor) Apply(ctx context.Context, projectRoot string, desired state.DesiredState, p plan.Plan) ApplyResult {
	result := ApplyResult{Actions: make([]ActionResult, 0, len(p.Actions))}

	halted := false
	for _, action := range p.Actions {
		if halted || ctx.Err() != nil {
			result.Actions = append(result.Actions, e.finish(ActionResult{
				Action:  action,
				Outcome: OutcomeSkipped,
				Reason:  skipReason(halted),
			}))
			continue
		}

		if e.OnActionStart != nil {
			e.OnActionStart(action)
		}

		start := time.Now()
		err := e.execute(ctx, projectRoot, desired, action)
		res := ActionResult{Action: action, Duration: time.Since(start)}

		if err != nil {
			res.Outcome = OutcomeFailed
			res.Reason = err.Error()
			halted = true
			e.log.Error(err, "action failed: "+action.Describe())
		} else {
			res.Outcome = OutcomeSucceeded
			e.log.Debug("action succeeded: " + action.Describe())
		}

		result.Actions = append(result.Actions, e.finish(res))
	}

	result.Status = overallStatus(result)
	return result
}

func (e *Executor) execute(ctx context.Context, projectRoot string, desired state.DesiredState, action plan.Action) error {
	switch action.Type {
	case plan.ActionCreateEnvironment:
		return e.prov.Create(ctx, projectRoot, action.Recreate)
	case plan.ActionInstallDependencies:
		return e.prov.Install(ctx, projectRoot, action.Dependencies, desired.Fingerprint())
	case plan.ActionSetEnvVars:
		// The action carries the changed subset for reporting; the record is
		// rewritten from the full declared map so removed vars drop out.
		return e.prov.ExportVars(projectRoot, desired.EnvVars)
	case plan.ActionNoOp:
		return nil
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

func (e *Executor) finish(res ActionResult) ActionResult {
	if e.OnActionDone != nil {
		e.OnActionDone(res)
	}
	return res
}

func skipReason(halted bool) string {
	if halted {
		return "previous action failed"
	}
	return "cancelled"
}

func overallStatus(result ApplyResult) Status {
	succeeded, failed, skipped := 0, 0, 0
	for _, res := range result.Actions {
		switch res.Outcome {
		case OutcomeSucceeded:
			succeeded++
		case OutcomeFailed:
			failed++
		case OutcomeSkipped:
			skipped++
		}
	}

	switch {
	case failed == 0 && skipped == 0:
		return StatusConverged
	case succeeded == 0 && failed > 0:
		return StatusFailed
	default:
		return StatusPartiallyConverged
	}
}
