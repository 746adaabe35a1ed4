package engine

import (
	"time"

	"github.com/anikchand461/envpod/internal/plan"
)

// Outcome classifies a single action's execution.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// Status is the overall result of applying a plan.
type Status string

const (
	// StatusConverged means every planned action succeeded (or the plan was
	// already empty).
	StatusConverged Status = "converged"
	// StatusPartiallyConverged means some progress was made but the plan did
	// not finish; a later reconciliation resumes from the remaining gap.
	StatusPartiallyConverged Status = "partially_converged"
	// StatusFailed means the plan failed before anything converged.
	StatusFailed Status = "failed"
)

// ActionResult is the per-action outcome.
type ActionResult struct {
	Action   plan.Action
	Outcome  Outcome
	Reason   string
	Duration time.Duration
}

// ApplyResult reports the execution of a plan, action by action in plan
// order.
type ApplyResult struct {
	Status  Status
	Actions []ActionResult
}

// Completed lists the descriptions of actions that succeeded, used in error
// reporting so resumption is obvious to the caller.
func (r ApplyResult) Completed() []string {
	var done []string
	for _, res := range r.Actions {
		if res.Outcome == OutcomeSucceeded {
			done = append(done, string(res.Action.Type))
		}
	}
	return done
}

// FirstFailure returns the first failed action result, if any.
func (r ApplyResult) FirstFailure() (ActionResult, bool) {
	for _, res := range r.Actions {
		if res.Outcome == OutcomeFailed {
			return res, true
		}
	}
	return ActionResult{}, false
}
