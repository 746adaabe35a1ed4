package state

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Dependency is a single declared package requirement. Spec holds the raw
// version specifier suffix (e.g. "==3.0.0", ">=2.31"); empty means any
// version.
type Dependency struct {
	Name string
	Spec string
}

// String renders the dependency as an installer requirement line.
func (d Dependency) String() string {
	if d.Spec == "" {
		return d.Name
	}
	return d.Name + d.Spec
}

var depPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(.*)$`)

// ParseDependency splits a requirement line into name and version specifier.
func ParseDependency(raw string) (Dependency, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Dependency{}, fmt.Errorf("empty dependency")
	}

	matches := depPattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return Dependency{}, fmt.Errorf("invalid dependency %q", raw)
	}

	return Dependency{
		Name: normalizeName(matches[1]),
		Spec: strings.TrimSpace(matches[2]),
	}, nil
}

// normalizeName lowercases and collapses separators the way installers
// canonicalize distribution names (Flask, flask and FLASK are one package).
func normalizeName(name string) string {
	lowered := strings.ToLower(name)
	lowered = strings.ReplaceAll(lowered, "_", "-")
	lowered = strings.ReplaceAll(lowered, ".", "-")
	return lowered
}

// RuntimeSpec declares the interpreter the environment must be built on.
type RuntimeSpec struct {
	Kind       string
	Constraint string
}

// Constraints parses the declared version constraint. A bare "X.Y" is
// widened to "~X.Y" so any patch release satisfies it.
func (r RuntimeSpec) Constraints() (*semver.Constraints, error) {
	raw := strings.TrimSpace(r.Constraint)
	if raw == "" {
		return nil, fmt.Errorf("runtime constraint is empty")
	}
	if bareVersionPattern.MatchString(raw) {
		raw = "~" + raw
	}
	return semver.NewConstraint(raw)
}

var bareVersionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// Satisfies reports whether an observed interpreter version meets the
// declared constraint. Unparseable inputs never satisfy.
func (r RuntimeSpec) Satisfies(version string) bool {
	constraint, err := r.Constraints()
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return false
	}
	return constraint.Check(v)
}

// DesiredState is the validated, in-memory target configuration for one
// reconciliation pass. It is built fresh from the config file on every
// invocation and never mutated afterwards.
type DesiredState struct {
	Name         string
	Runtime      RuntimeSpec
	Dependencies []Dependency
	EnvVars      map[string]string
	RunTargets   map[string]string
}

// Fingerprint computes the stable hash over the runtime spec and the
// normalized dependency set.
func (d DesiredState) Fingerprint() Fingerprint {
	return NewFingerprint(d.Runtime, d.Dependencies)
}
