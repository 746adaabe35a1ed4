package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anikchand461/envpod/internal/state"
)

// Diff compares desired against observed state and produces the ordered plan
// that converges the environment. It is a pure function: identical inputs
// always yield identical plans, and it never fails: both inputs are already
// validated.
func Diff(desired state.DesiredState, observed state.ObservedState) Plan {
	var actions []Action

	createNeeded := !observed.EnvExists
	recreate := false
	if observed.EnvExists && !desired.Runtime.Satisfies(observed.EnvRuntimeVersion) {
		// An environment on the wrong runtime cannot be upgraded in place;
		// recreation is the only safe convergence action.
		createNeeded = true
		recreate = true
	}

	if createNeeded {
		detail := "environment missing"
		if recreate {
			detail = fmt.Sprintf("environment runtime %s does not satisfy constraint %q",
				orUnknown(observed.EnvRuntimeVersion), desired.Runtime.Constraint)
		}
		actions = append(actions, Action{
			Type:     ActionCreateEnvironment,
			Recreate: recreate,
			Detail:   detail,
		})
	}

	if createNeeded || observed.InstalledFingerprint != desired.Fingerprint() {
		actions = append(actions, Action{
			Type:         ActionInstallDependencies,
			Dependencies: desired.Dependencies,
			Detail:       installDetail(desired, observed, createNeeded),
		})
	}

	if changed := changedEnvVars(desired.EnvVars, observed.EnvVars); len(changed) > 0 {
		actions = append(actions, Action{
			Type:    ActionSetEnvVars,
			EnvVars: changed,
			Detail:  fmt.Sprintf("%d variable(s) out of date", len(changed)),
		})
	}

	return Plan{Actions: actions}
}

// changedEnvVars returns the declared variables whose recorded value differs
// (or is absent). The baseline is the record the engine itself materialized,
// not the calling shell's environment.
func changedEnvVars(desired, observed map[string]string) map[string]string {
	var changed map[string]string
	for key, want := range desired {
		if got, ok := observed[key]; !ok || got != want {
			if changed == nil {
				changed = make(map[string]string)
			}
			changed[key] = want
		}
	}
	return changed
}

func installDetail(desired state.DesiredState, observed state.ObservedState, createNeeded bool) string {
	if createNeeded {
		return "fresh environment has no packages"
	}

	var missing []string
	for _, dep := range desired.Dependencies {
		if _, ok := observed.InstalledPackages[dep.Name]; !ok {
			missing = append(missing, dep.Name)
		}
	}
	sort.Strings(missing)

	switch {
	case len(missing) > 0:
		return fmt.Sprintf("not installed: %s", strings.Join(missing, ", "))
	case !observed.InstalledFingerprint.Known():
		return "installed set unknown or drifted"
	default:
		return "declared set changed"
	}
}

func orUnknown(version string) string {
	if version == "" {
		return "unknown"
	}
	return version
}
