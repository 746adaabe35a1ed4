package state

import "time"

// ObservedState is a snapshot of the machine and project environment as it
// actually is. Each probe yields a fresh value; fields degrade to their zero
// value when inspection fails rather than aborting the probe.
type ObservedState struct {
	// RuntimePresent reports whether a usable interpreter was found on the
	// host, and RuntimeVersion its reported version ("" when unknown).
	RuntimePresent bool
	RuntimeVersion string

	// EnvExists reports whether the managed environment directory exists,
	// and EnvRuntimeVersion the interpreter version it was created with.
	EnvExists         bool
	EnvRuntimeVersion string

	// InstalledFingerprint summarizes the environment's installed-dependency
	// manifest. Empty when the environment is missing, was never installed
	// into, or has drifted from its own manifest.
	InstalledFingerprint Fingerprint

	// InstalledPackages maps package name to the version actually present in
	// the environment; nil when the environment is missing.
	InstalledPackages map[string]string

	// EnvVars is the environment variable record previously materialized
	// into the environment; nil when none exists.
	EnvVars map[string]string

	// LastAppliedFingerprint and LastAppliedAt come from the project marker;
	// zero values when no successful reconciliation was recorded.
	LastAppliedFingerprint Fingerprint
	LastAppliedAt          time.Time

	// Warnings lists non-fatal inspection problems, surfaced by doctor as
	// findings.
	Warnings []string
}
