package provision

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/project"
	"github.com/anikchand461/envpod/internal/state"
)

func newTestProvisioner(t *testing.T) *VenvProvisioner {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)
	return NewVenv(log)
}

// fakeEnv lays out a venv-shaped directory without running python.
func fakeEnv(t *testing.T, root, pyVersion string, packages map[string]string) string {
	t.Helper()
	envDir := project.EnvDir(root)
	siteDir := filepath.Join(envDir, "lib", "python3.11", "site-packages")
	require.NoError(t, os.MkdirAll(siteDir, 0o755))

	cfg := "home = /usr/bin\nversion = " + pyVersion + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "pyvenv.cfg"), []byte(cfg), 0o644))

	for name, version := range packages {
		require.NoError(t, os.Mkdir(filepath.Join(siteDir, name+"-"+version+".dist-info"), 0o755))
	}
	return envDir
}

func TestInspectMissingEnv(t *testing.T) {
	p := newTestProvisioner(t)
	info, err := p.Inspect(t.TempDir())
	require.NoError(t, err)
	require.False(t, info.Exists)
}

func TestInspectReadsVersionAndPackages(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()
	fakeEnv(t, root, "3.11.9", map[string]string{"flask": "3.0.0", "requests": "2.32.0"})

	info, err := p.Inspect(root)
	require.NoError(t, err)
	require.True(t, info.Exists)
	require.Equal(t, "3.11.9", info.RuntimeVersion)
	require.Equal(t, map[string]string{"flask": "3.0.0", "requests": "2.32.0"}, info.Packages)
	require.False(t, info.Fingerprint.Known(), "no manifest yet")
}

func TestInspectManifestFingerprintRoundTrip(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()
	envDir := fakeEnv(t, root, "3.11.9", map[string]string{"flask": "3.0.0"})

	fp := state.NewFingerprint(state.RuntimeSpec{Kind: "python", Constraint: "3.11"},
		[]state.Dependency{{Name: "flask", Spec: "==3.0.0"}})
	require.NoError(t, writeManifest(envDir, manifest{
		Version:     "1",
		Fingerprint: string(fp),
		Packages:    map[string]string{"flask": "3.0.0"},
		InstalledAt: time.Now().UTC(),
	}))

	info, err := p.Inspect(root)
	require.NoError(t, err)
	require.Equal(t, fp, info.Fingerprint)
}

func TestInspectDegradesFingerprintOnDrift(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()
	envDir := fakeEnv(t, root, "3.11.9", map[string]string{"flask": "3.0.0"})

	// Manifest claims requests is installed, but it has been removed
	// outside the tool.
	require.NoError(t, writeManifest(envDir, manifest{
		Version:     "1",
		Fingerprint: "deadbeef",
		Packages:    map[string]string{"flask": "3.0.0", "requests": "2.32.0"},
	}))

	info, err := p.Inspect(root)
	require.NoError(t, err)
	require.False(t, info.Fingerprint.Known())
}

func TestInspectIgnoresUnknownManifestFields(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()
	envDir := fakeEnv(t, root, "3.11.9", map[string]string{"flask": "3.0.0"})

	data := `{"version":"2","fingerprint":"cafe","packages":{"flask":"3.0.0"},"future_field":{"x":1}}`
	require.NoError(t, os.WriteFile(manifestPath(envDir), []byte(data), 0o644))

	info, err := p.Inspect(root)
	require.NoError(t, err)
	require.Equal(t, state.Fingerprint("cafe"), info.Fingerprint)
}

func TestEnvRecordRoundTrip(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()

	vars, err := p.ReadVars(root)
	require.NoError(t, err)
	require.Empty(t, vars)

	require.NoError(t, p.ExportVars(root, map[string]string{"DEBUG": "1", "NAME": "web app"}))

	vars, err = p.ReadVars(root)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"DEBUG": "1", "NAME": "web app"}, vars)
}

func TestActivationVars(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()

	vars := p.ActivationVars(root)
	require.Equal(t, project.EnvDir(root), vars["VIRTUAL_ENV"])
	require.Contains(t, vars["PATH"], filepath.Join(project.EnvDir(root), "bin"))
}

func TestPipPath(t *testing.T) {
	require.Equal(t, filepath.Join("/proj/.envpod/venv", "bin", "pip"), pipPath("/proj/.envpod/venv"))
}

func TestInstallNoDependenciesWritesManifest(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()
	envDir := fakeEnv(t, root, "3.11.9", nil)

	fp := state.NewFingerprint(state.RuntimeSpec{Kind: "python", Constraint: "3.11"}, nil)
	require.NoError(t, p.Install(context.Background(), root, nil, fp))

	m, err := readManifest(envDir)
	require.NoError(t, err)
	require.Equal(t, string(fp), m.Fingerprint)
	require.Empty(t, m.Packages)

	info, err := p.Inspect(root)
	require.NoError(t, err)
	require.Equal(t, fp, info.Fingerprint)
}

func TestInstallReportsPipFailure(t *testing.T) {
	p := newTestProvisioner(t)
	root := t.TempDir()
	fakeEnv(t, root, "3.11.9", nil)

	// The fake env has no bin/pip, so the install run cannot start.
	deps := []state.Dependency{{Name: "flask", Spec: "==3.0.0"}}
	err := p.Install(context.Background(), root, deps, state.Fingerprint("cafe"))
	require.ErrorContains(t, err, "pip install")

	_, statErr := os.Stat(manifestPath(project.EnvDir(root)))
	require.True(t, os.IsNotExist(statErr), "failed install must not write a manifest")
}

func TestDetectReportsHostVersion(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not on PATH")
	}

	p := newTestProvisioner(t)
	version, err := p.Detect(context.Background())
	require.NoError(t, err)
	require.Regexp(t, `^\d+\.\d+`, version)
}

func TestParsePythonVersion(t *testing.T) {
	version, err := parsePythonVersion("Python 3.11.9")
	require.NoError(t, err)
	require.Equal(t, "3.11.9", version)

	_, err = parsePythonVersion("command not found")
	require.Error(t, err)
}

func TestParseDistInfo(t *testing.T) {
	name, version, ok := parseDistInfo("Flask-3.0.0.dist-info")
	require.True(t, ok)
	require.Equal(t, "flask", name)
	require.Equal(t, "3.0.0", version)

	name, version, ok = parseDistInfo("typing_extensions-4.9.0.dist-info")
	require.True(t, ok)
	require.Equal(t, "typing-extensions", name)
	require.Equal(t, "4.9.0", version)

	_, _, ok = parseDistInfo("__pycache__")
	require.False(t, ok)
}
