package probe

import (
	"context"
	"fmt"

	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/marker"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
)

// Prober inspects the host and the project environment. It is strictly
// read-only and never fails fatally: every inspection problem degrades into
// a field value plus a warning, so downstream components always receive a
// usable snapshot.
type Prober struct {
	prov provision.Provisioner
	log  *logger.Logger
}

// New creates a Prober backed by the given provisioner.
func New(prov provision.Provisioner, log *logger.Logger) *Prober {
	return &Prober{prov: prov, log: log.WithComponent("prober")}
}

// Probe produces a fresh ObservedState snapshot for the project.
func (p *Prober) Probe(ctx context.Context, projectRoot string) state.ObservedState {
	var observed state.ObservedState

	if version, err := p.prov.Detect(ctx); err != nil {
		observed.Warnings = append(observed.Warnings, fmt.Sprintf("interpreter detection failed: %v", err))
		p.log.Debug("interpreter not detected: " + err.Error())
	} else {
		observed.RuntimePresent = true
		observed.RuntimeVersion = version
	}

	if info, err := p.prov.Inspect(projectRoot); err != nil {
		observed.Warnings = append(observed.Warnings, fmt.Sprintf("environment inspection failed: %v", err))
	} else {
		observed.EnvExists = info.Exists
		observed.EnvRuntimeVersion = info.RuntimeVersion
		observed.InstalledFingerprint = info.Fingerprint
		observed.InstalledPackages = info.Packages
	}

	if vars, err := p.prov.ReadVars(projectRoot); err != nil {
		observed.Warnings = append(observed.Warnings, fmt.Sprintf("env record unreadable: %v", err))
	} else {
		observed.EnvVars = vars
	}

	if rec := marker.NewRecorder(projectRoot).ReadLastApplied(); rec != nil {
		observed.LastAppliedFingerprint = rec.Fingerprint
		observed.LastAppliedAt = rec.AppliedAt
	}

	return observed
}
