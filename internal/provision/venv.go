package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anikchand461/envpod/internal/execx"
	"github.com/anikchand461/envpod/internal/logger"
	"github.com/anikchand461/envpod/internal/project"
	"github.com/anikchand461/envpod/internal/state"
)

const manifestName = "envpod-manifest.json"

// interpreter candidates, in preference order.
var interpreterNames = []string{"python3", "python"}

// VenvProvisioner provisions Python virtual environments with the stdlib
// venv module and pip.
type VenvProvisioner struct {
	log *logger.Logger
}

// NewVenv creates a venv-backed provisioner.
func NewVenv(log *logger.Logger) *VenvProvisioner {
	return &VenvProvisioner{log: log.WithComponent("provisioner")}
}

var _ Provisioner = (*VenvProvisioner)(nil)

// manifest is the environment's own record of what the last install put in
// place. It lives inside the env so deleting the env deletes the record.
type manifest struct {
	Version     string            `json:"version"`
	Fingerprint string            `json:"fingerprint"`
	Packages    map[string]string `json:"packages"`
	InstalledAt time.Time         `json:"installed_at"`
}

// Detect locates the host interpreter and reports its version.
func (p *VenvProvisioner) Detect(ctx context.Context) (string, error) {
	python, err := findInterpreter()
	if err != nil {
		return "", err
	}

	res, err := execx.Run(exec.CommandContext(ctx, python, "--version"))
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", python, err)
	}

	return parsePythonVersion(execx.PrimaryOutput(res))
}

// Inspect reads pyvenv.cfg, site-packages, and the install manifest. It
// never runs a subprocess, so probing a converged project stays cheap.
func (p *VenvProvisioner) Inspect(projectRoot string) (EnvInfo, error) {
	envDir := project.EnvDir(projectRoot)

	cfgVersion, err := readPyvenvCfgVersion(filepath.Join(envDir, "pyvenv.cfg"))
	if err != nil {
		if os.IsNotExist(err) {
			return EnvInfo{}, nil
		}
		return EnvInfo{}, err
	}

	info := EnvInfo{Exists: true, RuntimeVersion: cfgVersion}

	packages, err := scanSitePackages(envDir)
	if err != nil {
		return info, err
	}
	info.Packages = packages

	m, err := readManifest(envDir)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, err
	}

	// The manifest fingerprint only counts if everything it recorded is
	// still installed at the recorded version; anything else is drift.
	for name, version := range m.Packages {
		if installed, ok := packages[name]; !ok || installed != version {
			return info, nil
		}
	}
	info.Fingerprint = state.Fingerprint(m.Fingerprint)

	return info, nil
}

// Create builds the virtual environment and bootstraps pip/wheel.
func (p *VenvProvisioner) Create(ctx context.Context, projectRoot string, recreate bool) error {
	envDir := project.EnvDir(projectRoot)

	if recreate {
		if err := os.RemoveAll(envDir); err != nil {
			return fmt.Errorf("remove existing environment: %w", err)
		}
	}

	if err := os.MkdirAll(project.WorkDir(projectRoot), 0o755); err != nil {
		return err
	}

	python, err := findInterpreter()
	if err != nil {
		return err
	}

	p.log.WithFields(map[string]any{"env": envDir, "recreate": recreate}).Info("creating environment")
	if err := p.run(ctx, python, "-m", "venv", envDir); err != nil {
		return fmt.Errorf("create venv: %w", err)
	}

	if err := p.run(ctx, pipPath(envDir), "install", "--upgrade", "pip", "wheel"); err != nil {
		return fmt.Errorf("bootstrap pip: %w", err)
	}

	return nil
}

// Install converges packages onto the declared set and writes the manifest.
func (p *VenvProvisioner) Install(ctx context.Context, projectRoot string, deps []state.Dependency, fingerprint state.Fingerprint) error {
	envDir := project.EnvDir(projectRoot)

	if len(deps) > 0 {
		args := []string{"install"}
		for _, dep := range deps {
			args = append(args, dep.String())
		}
		p.log.WithFields(map[string]any{"count": len(deps)}).Info("installing dependencies")
		if err := p.run(ctx, pipPath(envDir), args...); err != nil {
			return fmt.Errorf("pip install: %w", err)
		}
	}

	installed, err := scanSitePackages(envDir)
	if err != nil {
		return fmt.Errorf("read installed packages: %w", err)
	}

	recorded := make(map[string]string, len(deps))
	for _, dep := range deps {
		if version, ok := installed[dep.Name]; ok {
			recorded[dep.Name] = version
		} else {
			return fmt.Errorf("dependency %s not present after install", dep.Name)
		}
	}

	return writeManifest(envDir, manifest{
		Version:     "1",
		Fingerprint: string(fingerprint),
		Packages:    recorded,
		InstalledAt: time.Now().UTC(),
	})
}

// ExportVars replaces the environment's env record with the given variables.
func (p *VenvProvisioner) ExportVars(projectRoot string, vars map[string]string) error {
	if err := os.MkdirAll(project.WorkDir(projectRoot), 0o755); err != nil {
		return err
	}
	return godotenv.Write(vars, project.EnvRecordPath(projectRoot))
}

// ReadVars returns the current env record, empty when none exists.
func (p *VenvProvisioner) ReadVars(projectRoot string) (map[string]string, error) {
	vars, err := godotenv.Read(project.EnvRecordPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return vars, nil
}

// ActivationVars returns the variables that activate the environment.
func (p *VenvProvisioner) ActivationVars(projectRoot string) map[string]string {
	envDir := project.EnvDir(projectRoot)
	return map[string]string{
		"VIRTUAL_ENV": envDir,
		"PATH":        filepath.Join(envDir, "bin") + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
}

func (p *VenvProvisioner) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()

	res, err := execx.Run(cmd)
	if err != nil {
		if out := execx.PrimaryOutput(res); out != "" {
			return fmt.Errorf("%w: %s", err, out)
		}
		return err
	}
	return nil
}

func findInterpreter() (string, error) {
	for _, name := range interpreterNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found on PATH (tried %s)", strings.Join(interpreterNames, ", "))
}

// parsePythonVersion extracts "3.11.9" from "Python 3.11.9".
func parsePythonVersion(output string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) >= 2 && fields[0] == "Python" {
		return fields[1], nil
	}
	return "", fmt.Errorf("unexpected interpreter version output %q", output)
}

// readPyvenvCfgVersion returns the "version = X" value from pyvenv.cfg.
func readPyvenvCfgVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == "version" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", nil
}

// scanSitePackages maps installed package names to versions by reading
// dist-info directory names.
func scanSitePackages(envDir string) (map[string]string, error) {
	libDir := filepath.Join(envDir, "lib")
	entries, err := os.ReadDir(libDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	packages := make(map[string]string)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "python") {
			continue
		}

		siteDir := filepath.Join(libDir, entry.Name(), "site-packages")
		infos, err := os.ReadDir(siteDir)
		if err != nil {
			continue
		}

		for _, info := range infos {
			name, version, ok := parseDistInfo(info.Name())
			if !ok {
				continue
			}
			packages[name] = version
		}
	}

	return packages, nil
}

// parseDistInfo splits "flask-3.0.0.dist-info" into ("flask", "3.0.0").
func parseDistInfo(dirName string) (string, string, bool) {
	base, found := strings.CutSuffix(dirName, ".dist-info")
	if !found {
		return "", "", false
	}

	i := strings.LastIndex(base, "-")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}

	name := strings.ToLower(strings.ReplaceAll(base[:i], "_", "-"))
	return name, base[i+1:], true
}

// pipPath returns the environment-local pip so installs never touch the host
// interpreter's packages.
func pipPath(envDir string) string {
	return filepath.Join(envDir, "bin", "pip")
}

func manifestPath(envDir string) string {
	return filepath.Join(envDir, manifestName)
}

func readManifest(envDir string) (manifest, error) {
	data, err := os.ReadFile(manifestPath(envDir))
	if err != nil {
		return manifest{}, err
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("parse environment manifest: %w", err)
	}
	return m, nil
}

func writeManifest(envDir string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := manifestPath(envDir) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, manifestPath(envDir)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
