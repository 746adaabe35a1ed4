package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anikchand461/envpod/internal/config"
	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/plan"
	"github.com/anikchand461/envpod/internal/probe"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
)

// Doctor diagnoses a project without mutating anything: it reuses the prober
// and the diff engine read-only and never touches the executor, so running
// it is always safe.
type Doctor struct {
	prober *probe.Prober
	log    *logger.Logger
}

// New creates a Doctor backed by the given provisioner.
func New(prov provision.Provisioner, log *logger.Logger) *Doctor {
	return &Doctor{
		prober: probe.New(prov, log),
		log:    log.WithComponent("doctor"),
	}
}

// Diagnose probes the project and translates every pending action and host
// problem into an ordered list of findings.
func (d *Doctor) Diagnose(ctx context.Context, projectRoot string, cfg *config.Config, desired state.DesiredState) []Finding {
	observed := d.prober.Probe(ctx, projectRoot)
	pending := plan.Diff(desired, observed)

	var findings []Finding

	findings = append(findings, d.hostFindings(projectRoot, cfg, desired, observed)...)
	findings = append(findings, planFindings(pending)...)
	findings = append(findings, driftFindings(desired, observed, pending)...)

	for _, warning := range observed.Warnings {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Subject:  "probe",
			Message:  warning,
		})
	}

	if pending.Empty() && !HasErrors(findings) {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Subject:  "environment",
			Message:  "environment matches the declared configuration",
		})
	}

	return findings
}

func (d *Doctor) hostFindings(projectRoot string, cfg *config.Config, desired state.DesiredState, observed state.ObservedState) []Finding {
	var findings []Finding

	switch {
	case !observed.RuntimePresent:
		findings = append(findings, Finding{
			Severity:        SeverityError,
			Subject:         "runtime",
			Message:         "no python interpreter found on PATH",
			SuggestedAction: fmt.Sprintf("install python %s", desired.Runtime.Constraint),
		})
	case !desired.Runtime.Satisfies(observed.RuntimeVersion):
		findings = append(findings, Finding{
			Severity:        SeverityError,
			Subject:         "runtime",
			Message:         fmt.Sprintf("host interpreter %s does not satisfy constraint %q", observed.RuntimeVersion, desired.Runtime.Constraint),
			SuggestedAction: fmt.Sprintf("install python %s", desired.Runtime.Constraint),
		})
	}

	if err := checkWritable(projectRoot); err != nil {
		findings = append(findings, Finding{
			Severity:        SeverityError,
			Subject:         "project",
			Message:         fmt.Sprintf("project directory is not writable: %v", err),
			SuggestedAction: "fix permissions on " + projectRoot,
		})
	}

	if cfg != nil && cfg.EnvFile != "" {
		path := filepath.Join(projectRoot, cfg.EnvFile)
		if _, err := os.Stat(path); err != nil {
			findings = append(findings, Finding{
				Severity:        SeverityInfo,
				Subject:         "env_file",
				Message:         fmt.Sprintf("declared env file %s does not exist", cfg.EnvFile),
				SuggestedAction: "create it or remove env_file from " + config.DefaultFileName,
			})
		}
	}

	return findings
}

// planFindings translates each prospective action into a human-facing
// finding. The tag set is closed, so the switch is exhaustive.
func planFindings(pending plan.Plan) []Finding {
	var findings []Finding
	for _, action := range pending.Actions {
		switch action.Type {
		case plan.ActionCreateEnvironment:
			findings = append(findings, Finding{
				Severity:        SeverityError,
				Subject:         "environment",
				Message:         action.Detail,
				SuggestedAction: "run: envpod up",
			})
		case plan.ActionInstallDependencies:
			findings = append(findings, Finding{
				Severity:        SeverityError,
				Subject:         "dependencies",
				Message:         "installed dependencies do not match the declared set (" + action.Detail + ")",
				SuggestedAction: "run: envpod up",
			})
		case plan.ActionSetEnvVars:
			findings = append(findings, Finding{
				Severity:        SeverityWarning,
				Subject:         "env",
				Message:         fmt.Sprintf("%d environment variable(s) not materialized", len(action.EnvVars)),
				SuggestedAction: "run: envpod up",
			})
		case plan.ActionNoOp:
			// nothing to report
		}
	}
	return findings
}

// driftFindings reports divergence between the last recorded apply and what
// is observed or declared now.
func driftFindings(desired state.DesiredState, observed state.ObservedState, pending plan.Plan) []Finding {
	if !observed.LastAppliedFingerprint.Known() || pending.Empty() {
		return nil
	}

	if observed.LastAppliedFingerprint != desired.Fingerprint() {
		return []Finding{{
			Severity:        SeverityInfo,
			Subject:         "config",
			Message:         fmt.Sprintf("configuration changed since the last successful apply (%s)", observed.LastAppliedAt.Format("2006-01-02 15:04")),
			SuggestedAction: "run: envpod up",
		}}
	}

	return []Finding{{
		Severity:        SeverityWarning,
		Subject:         "drift",
		Message:         "environment drifted since the last successful apply (changed outside envpod)",
		SuggestedAction: "run: envpod up",
	}}
}

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".envpod-doctor-*")
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(f.Name())
}
