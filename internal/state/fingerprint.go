package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint is a stable hash summarizing a dependency set and runtime
// spec. The empty fingerprint means "unknown": it never equals a computed
// one, so unknown state always plans work.
type Fingerprint string

// Known reports whether the fingerprint carries a value.
func (f Fingerprint) Known() bool {
	return f != ""
}

// NewFingerprint hashes the runtime spec plus the dependency set. Dependency
// order in the config is irrelevant to identity, so entries are sorted
// before hashing.
func NewFingerprint(runtime RuntimeSpec, deps []Dependency) Fingerprint {
	lines := make([]string, 0, len(deps)+1)
	lines = append(lines, fmt.Sprintf("runtime %s %s", runtime.Kind, strings.TrimSpace(runtime.Constraint)))
	for _, dep := range deps {
		lines = append(lines, fmt.Sprintf("dep %s %s", dep.Name, dep.Spec))
	}
	sort.Strings(lines[1:])

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return Fingerprint(hex.EncodeToString(sum[:]))
}
