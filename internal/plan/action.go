package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anikchand461/envpod/internal/state"
)

// ActionType tags the closed set of reconciliation actions. Both the
// executor and the diagnostics translator match over it exhaustively.
type ActionType string

const (
	ActionCreateEnvironment   ActionType = "create-environment"
	ActionInstallDependencies ActionType = "install-dependencies"
	ActionSetEnvVars          ActionType = "set-env-vars"
	ActionNoOp                ActionType = "noop"
)

// Action describes one intended mutation. Actions are data; only the
// executor turns them into side effects.
type Action struct {
	Type ActionType

	// Recreate marks a destructive environment rebuild (existing env cannot
	// satisfy the declared runtime). Only meaningful for
	// ActionCreateEnvironment.
	Recreate bool

	// Dependencies carries the full desired set for
	// ActionInstallDependencies; installers resolve incrementality
	// themselves.
	Dependencies []state.Dependency

	// EnvVars carries the changed subset for ActionSetEnvVars.
	EnvVars map[string]string

	// Detail is a human-readable summary of why the action was planned.
	Detail string
}

// Describe renders the action for logs, dry-run output, and findings.
func (a Action) Describe() string {
	switch a.Type {
	case ActionCreateEnvironment:
		if a.Recreate {
			return "recreate environment (existing one cannot satisfy the declared runtime)"
		}
		return "create environment"
	case ActionInstallDependencies:
		return fmt.Sprintf("install %d dependencies", len(a.Dependencies))
	case ActionSetEnvVars:
		keys := make([]string, 0, len(a.EnvVars))
		for key := range a.EnvVars {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return fmt.Sprintf("set environment variables: %s", strings.Join(keys, ", "))
	case ActionNoOp:
		return "nothing to do"
	default:
		return string(a.Type)
	}
}

// Plan is an ordered sequence of actions. Ordering invariant:
// create-environment precedes install-dependencies precedes set-env-vars.
type Plan struct {
	Actions []Action
}

// Empty reports whether the system is already converged.
func (p Plan) Empty() bool {
	return len(p.Actions) == 0
}

// String renders a deterministic, human-readable plan summary.
func (p Plan) String() string {
	if p.Empty() {
		return "converged: no actions required"
	}

	var b strings.Builder
	for i, action := range p.Actions {
		fmt.Fprintf(&b, "%d. %s", i+1, action.Describe())
		if action.Detail != "" {
			fmt.Fprintf(&b, " (%s)", action.Detail)
		}
		if i < len(p.Actions)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
