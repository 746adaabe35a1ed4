package provision

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anikchand461/envpod/internal/state"
)

// FakeEnv is the in-memory environment held by a Fake provisioner.
type FakeEnv struct {
	RuntimeVersion string
	Packages       map[string]string
	Fingerprint    state.Fingerprint
}

// Fake is an in-memory Provisioner used by engine, probe, and command tests
// so reconciliation logic can be exercised without touching a real machine.
type Fake struct {
	mu sync.Mutex

	// HostVersion is the detected interpreter version; empty means the
	// interpreter is missing.
	HostVersion string

	// Failure injection, keyed by operation.
	DetectErr  error
	InspectErr error
	CreateErr  error
	InstallErr error
	ExportErr  error

	// CreateCalls, InstallCalls, and ExportCalls count mutations for
	// idempotence assertions.
	CreateCalls  int
	InstallCalls int
	ExportCalls  int

	envs map[string]*FakeEnv
	vars map[string]map[string]string
}

// NewFake creates a Fake with the given host interpreter version.
func NewFake(hostVersion string) *Fake {
	return &Fake{
		HostVersion: hostVersion,
		envs:        make(map[string]*FakeEnv),
		vars:        make(map[string]map[string]string),
	}
}

var _ Provisioner = (*Fake)(nil)

// Env returns the fake environment for a project root, if any.
func (f *Fake) Env(projectRoot string) *FakeEnv {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.envs[projectRoot]
}

// SeedEnv installs a pre-existing environment for drift scenarios.
func (f *Fake) SeedEnv(projectRoot string, env *FakeEnv) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envs[projectRoot] = env
}

// RemoveEnv simulates an environment deleted outside the tool.
func (f *Fake) RemoveEnv(projectRoot string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.envs, projectRoot)
}

func (f *Fake) Detect(ctx context.Context) (string, error) {
	if f.DetectErr != nil {
		return "", f.DetectErr
	}
	if f.HostVersion == "" {
		return "", fmt.Errorf("no python interpreter found on PATH")
	}
	return f.HostVersion, nil
}

func (f *Fake) Inspect(projectRoot string) (EnvInfo, error) {
	if f.InspectErr != nil {
		return EnvInfo{}, f.InspectErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	env, ok := f.envs[projectRoot]
	if !ok {
		return EnvInfo{}, nil
	}

	packages := make(map[string]string, len(env.Packages))
	for name, version := range env.Packages {
		packages[name] = version
	}

	return EnvInfo{
		Exists:         true,
		RuntimeVersion: env.RuntimeVersion,
		Packages:       packages,
		Fingerprint:    env.Fingerprint,
	}, nil
}

func (f *Fake) Create(ctx context.Context, projectRoot string, recreate bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.CreateErr != nil {
		return f.CreateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls++
	f.envs[projectRoot] = &FakeEnv{
		RuntimeVersion: f.HostVersion,
		Packages:       make(map[string]string),
	}
	return nil
}

func (f *Fake) Install(ctx context.Context, projectRoot string, deps []state.Dependency, fingerprint state.Fingerprint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.InstallErr != nil {
		return f.InstallErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	env, ok := f.envs[projectRoot]
	if !ok {
		return fmt.Errorf("environment does not exist")
	}

	f.InstallCalls++
	for _, dep := range deps {
		env.Packages[dep.Name] = pinnedVersion(dep)
	}
	env.Fingerprint = fingerprint
	return nil
}

func (f *Fake) ExportVars(projectRoot string, vars map[string]string) error {
	if f.ExportErr != nil {
		return f.ExportErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.ExportCalls++
	record := make(map[string]string, len(vars))
	for key, value := range vars {
		record[key] = value
	}
	f.vars[projectRoot] = record
	return nil
}

func (f *Fake) ReadVars(projectRoot string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.vars[projectRoot]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(record))
	for key, value := range record {
		out[key] = value
	}
	return out, nil
}

func (f *Fake) ActivationVars(projectRoot string) map[string]string {
	return map[string]string{"VIRTUAL_ENV": projectRoot + "/.envpod/venv"}
}

// pinnedVersion resolves a fake installed version from an exact pin, or a
// placeholder for unpinned specs.
func pinnedVersion(dep state.Dependency) string {
	if version, ok := strings.CutPrefix(dep.Spec, "=="); ok {
		return strings.TrimSpace(version)
	}
	return "0.0.0"
}
