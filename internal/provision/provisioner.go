package provision

import (
	"context"

	"github.com/anikchand461/envpod/internal/state"
)

// EnvInfo is a read-only description of a managed environment, gathered
// without running any tool.
type EnvInfo struct {
	// Exists reports whether the environment directory holds a usable env.
	Exists bool
	// RuntimeVersion is the interpreter version the env was created with.
	RuntimeVersion string
	// Packages maps normalized package name to installed version.
	Packages map[string]string
	// Fingerprint is the manifest fingerprint recorded by the last install,
	// empty when no manifest exists or the installed set no longer matches
	// it.
	Fingerprint state.Fingerprint
}

// Provisioner is the external capability the engine orchestrates. All
// mutation of the machine happens behind this interface, so the engine is
// testable against an in-memory implementation.
type Provisioner interface {
	// Detect reports the host interpreter version. It is read-only; a
	// missing interpreter is an error the prober degrades into
	// RuntimePresent=false.
	Detect(ctx context.Context) (string, error)

	// Inspect reads the environment under the project root. Read-only and
	// safe to call repeatedly.
	Inspect(projectRoot string) (EnvInfo, error)

	// Create builds the environment, destroying any existing one first when
	// recreate is set.
	Create(ctx context.Context, projectRoot string, recreate bool) error

	// Install converges the environment's packages onto the declared set and
	// records the set's fingerprint in the environment manifest.
	Install(ctx context.Context, projectRoot string, deps []state.Dependency, fingerprint state.Fingerprint) error

	// ExportVars materializes the declared variables into the environment's
	// env record, replacing the previous record.
	ExportVars(projectRoot string, vars map[string]string) error

	// ReadVars returns the current env record; an absent record is an empty
	// map.
	ReadVars(projectRoot string) (map[string]string, error)

	// ActivationVars returns the variables that put the environment on the
	// process path (VIRTUAL_ENV, PATH).
	ActivationVars(projectRoot string) map[string]string
}
