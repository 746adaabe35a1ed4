package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/anikchand461/envpod/internal/state"
	envpoderrors "github.com/anikchand461/envpod/pkg/errors"
)

// Desired converts a validated Config into the immutable DesiredState for a
// reconciliation pass. projectRoot anchors the requirements and env files.
//
// Env precedence: entries from env_file are overlaid by the config's env
// map. A missing env_file is tolerated here (doctor reports it); an
// unreadable one is a validation failure.
func Desired(cfg *Config, projectRoot string) (state.DesiredState, error) {
	if cfg == nil {
		return state.DesiredState{}, envpoderrors.NewValidationError("config", "configuration is nil", nil)
	}

	deps, err := collectDependencies(cfg, projectRoot)
	if err != nil {
		return state.DesiredState{}, err
	}

	envVars := make(map[string]string)
	if cfg.EnvFile != "" {
		path := filepath.Join(projectRoot, cfg.EnvFile)
		if _, statErr := os.Stat(path); statErr == nil {
			fromFile, readErr := godotenv.Read(path)
			if readErr != nil {
				return state.DesiredState{}, envpoderrors.NewValidationError("env_file", fmt.Sprintf("cannot read %s: %v", cfg.EnvFile, readErr), readErr)
			}
			for key, value := range fromFile {
				envVars[key] = value
			}
		}
	}
	for key, value := range cfg.Env {
		envVars[key] = value
	}

	targets := make(map[string]string, len(cfg.Run))
	for name, command := range cfg.Run {
		targets[name] = command
	}

	return state.DesiredState{
		Name: cfg.Name,
		Runtime: state.RuntimeSpec{
			Kind:       cfg.Runtime.Kind,
			Constraint: cfg.Runtime.Version,
		},
		Dependencies: deps,
		EnvVars:      envVars,
		RunTargets:   targets,
	}, nil
}

func collectDependencies(cfg *Config, projectRoot string) ([]state.Dependency, error) {
	var deps []state.Dependency
	index := make(map[string]int)

	add := func(raw, source string) error {
		dep, err := state.ParseDependency(raw)
		if err != nil {
			return envpoderrors.NewValidationError(source, err.Error(), err)
		}
		if i, exists := index[dep.Name]; exists {
			// Inline declarations win over the requirements file.
			deps[i] = dep
			return nil
		}
		index[dep.Name] = len(deps)
		deps = append(deps, dep)
		return nil
	}

	if cfg.Dependencies.File != "" {
		path := filepath.Join(projectRoot, cfg.Dependencies.File)
		lines, err := readRequirements(path)
		if err != nil {
			return nil, envpoderrors.NewValidationError("dependencies.file", fmt.Sprintf("cannot read %s: %v", cfg.Dependencies.File, err), err)
		}
		for _, line := range lines {
			if err := add(line, "dependencies.file"); err != nil {
				return nil, err
			}
		}
	}

	for _, raw := range cfg.Dependencies.Packages {
		if err := add(raw, "dependencies.packages"); err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// readRequirements returns the requirement lines of a pip-style file,
// skipping blanks, comments, and installer option lines.
func readRequirements(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
