package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anikchand461/envpod/internal/config"
	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/marker"
	"github.com/anikchand461/envpod/internal/provision"
	"github.com/anikchand461/envpod/internal/state"
)

func newTestDoctor(t *testing.T, fake *provision.Fake) *Doctor {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)
	return New(fake, log)
}

func testDesired() state.DesiredState {
	return state.DesiredState{
		Name:    "api",
		Runtime: state.RuntimeSpec{Kind: "python", Constraint: "3.11"},
		Dependencies: []state.Dependency{
			{Name: "flask", Spec: "==3.0.0"},
		},
		EnvVars: map[string]string{"DEBUG": "1"},
	}
}

func findBySubject(findings []Finding, subject string) *Finding {
	for i := range findings {
		if findings[i].Subject == subject {
			return &findings[i]
		}
	}
	return nil
}

func TestDiagnoseEmptyProject(t *testing.T) {
	fake := provision.NewFake("3.11.9")
	d := newTestDoctor(t, fake)

	findings := d.Diagnose(context.Background(), t.TempDir(), nil, testDesired())

	require.True(t, HasErrors(findings))
	env := findBySubject(findings, "environment")
	require.NotNil(t, env)
	require.Equal(t, SeverityError, env.Severity)
	require.Contains(t, env.Message, "environment missing")
	require.Equal(t, "run: envpod up", env.SuggestedAction)

	deps := findBySubject(findings, "dependencies")
	require.NotNil(t, deps)
	require.Equal(t, SeverityError, deps.Severity)

	envVars := findBySubject(findings, "env")
	require.NotNil(t, envVars)
	require.Equal(t, SeverityWarning, envVars.Severity)
}

func TestDiagnoseConverged(t *testing.T) {
	fake := provision.NewFake("3.11.9")
	d := newTestDoctor(t, fake)
	root := t.TempDir()
	desired := testDesired()

	fake.SeedEnv(root, &provision.FakeEnv{
		RuntimeVersion: "3.11.9",
		Packages:       map[string]string{"flask": "3.0.0"},
		Fingerprint:    desired.Fingerprint(),
	})
	require.NoError(t, fake.ExportVars(root, desired.EnvVars))

	findings := d.Diagnose(context.Background(), root, nil, desired)

	require.False(t, HasErrors(findings))
	require.Len(t, findings, 1)
	require.Equal(t, SeverityInfo, findings[0].Severity)
	require.Contains(t, findings[0].Message, "matches the declared configuration")
}

func TestDiagnoseMissingInterpreter(t *testing.T) {
	fake := provision.NewFake("")
	d := newTestDoctor(t, fake)

	findings := d.Diagnose(context.Background(), t.TempDir(), nil, testDesired())

	runtime := findBySubject(findings, "runtime")
	require.NotNil(t, runtime)
	require.Equal(t, SeverityError, runtime.Severity)
	require.Contains(t, runtime.Message, "no python interpreter")
}

func TestDiagnoseInterpreterTooOld(t *testing.T) {
	fake := provision.NewFake("3.8.2")
	d := newTestDoctor(t, fake)

	findings := d.Diagnose(context.Background(), t.TempDir(), nil, testDesired())

	runtime := findBySubject(findings, "runtime")
	require.NotNil(t, runtime)
	require.Equal(t, SeverityError, runtime.Severity)
	require.Contains(t, runtime.Message, "3.8.2")
	require.Contains(t, runtime.Message, "3.11")
}

func TestDiagnoseMissingEnvFile(t *testing.T) {
	fake := provision.NewFake("3.11.9")
	d := newTestDoctor(t, fake)
	cfg := &config.Config{EnvFile: ".env"}

	findings := d.Diagnose(context.Background(), t.TempDir(), cfg, testDesired())

	envFile := findBySubject(findings, "env_file")
	require.NotNil(t, envFile)
	require.Equal(t, SeverityInfo, envFile.Severity)
	require.Contains(t, envFile.Message, ".env")
}

func TestDiagnoseConfigChangedSinceLastApply(t *testing.T) {
	fake := provision.NewFake("3.11.9")
	d := newTestDoctor(t, fake)
	root := t.TempDir()
	desired := testDesired()

	// Converged environment recorded under the old fingerprint, then the
	// declared dependency set grows.
	fake.SeedEnv(root, &provision.FakeEnv{
		RuntimeVersion: "3.11.9",
		Packages:       map[string]string{"flask": "3.0.0"},
		Fingerprint:    desired.Fingerprint(),
	})
	require.NoError(t, fake.ExportVars(root, desired.EnvVars))
	require.NoError(t, marker.NewRecorder(root).RecordSuccess(desired.Fingerprint(), "run-1"))

	desired.Dependencies = append(desired.Dependencies, state.Dependency{Name: "gunicorn"})

	findings := d.Diagnose(context.Background(), root, nil, desired)

	cfgFinding := findBySubject(findings, "config")
	require.NotNil(t, cfgFinding)
	require.Equal(t, SeverityInfo, cfgFinding.Severity)
	require.Contains(t, cfgFinding.Message, "configuration changed")
}

func TestDiagnoseExternalDrift(t *testing.T) {
	fake := provision.NewFake("3.11.9")
	d := newTestDoctor(t, fake)
	root := t.TempDir()
	desired := testDesired()

	// Marker matches the declared config, but the environment itself no
	// longer carries the recorded fingerprint.
	fake.SeedEnv(root, &provision.FakeEnv{
		RuntimeVersion: "3.11.9",
		Packages:       map[string]string{"flask": "3.0.0"},
	})
	require.NoError(t, fake.ExportVars(root, desired.EnvVars))
	require.NoError(t, marker.NewRecorder(root).RecordSuccess(desired.Fingerprint(), "run-1"))

	findings := d.Diagnose(context.Background(), root, nil, desired)

	drift := findBySubject(findings, "drift")
	require.NotNil(t, drift)
	require.Equal(t, SeverityWarning, drift.Severity)
}

func TestDiagnoseNeverMutates(t *testing.T) {
	fake := provision.NewFake("3.11.9")
	d := newTestDoctor(t, fake)
	root := t.TempDir()

	d.Diagnose(context.Background(), root, nil, testDesired())

	require.Zero(t, fake.CreateCalls)
	require.Zero(t, fake.InstallCalls)
	require.Zero(t, fake.ExportCalls)
	require.Nil(t, fake.Env(root))
}
