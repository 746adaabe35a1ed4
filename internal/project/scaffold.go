package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anikchand461/envpod/internal/config"
)

// ScaffoldOptions controls config generation.
type ScaffoldOptions struct {
	// Force overwrites an existing config file.
	Force bool

	// PythonVersion is the detected host interpreter version used to pin the
	// runtime constraint. Empty falls back to a sensible default.
	PythonVersion string
}

const defaultPythonConstraint = "3.12"

// Scaffold writes a starter config inferred from the project layout and
// returns its path. It looks for an existing requirements file and a
// conventional entrypoint so the generated file works without edits.
func Scaffold(root string, opts ScaffoldOptions) (string, error) {
	path := filepath.Join(root, config.DefaultFileName)
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", config.DefaultFileName)
		}
	}

	content := renderConfig(root, opts)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", config.DefaultFileName, err)
	}

	if err := ensureGitignore(root); err != nil {
		return "", err
	}
	return path, nil
}

func renderConfig(root string, opts ScaffoldOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "name: %s\n\n", filepath.Base(root))
	fmt.Fprintf(&b, "runtime:\n  kind: python\n  version: %q\n\n", majorMinor(opts.PythonVersion))

	b.WriteString("dependencies:\n")
	if _, err := os.Stat(filepath.Join(root, "requirements.txt")); err == nil {
		b.WriteString("  file: requirements.txt\n")
	} else {
		b.WriteString("  packages: []\n")
	}

	if entrypoint := detectEntrypoint(root); entrypoint != "" {
		fmt.Fprintf(&b, "\nrun:\n  dev: python %s\n", entrypoint)
	}

	return b.String()
}

// detectEntrypoint picks the conventional script name, preferring main.py.
func detectEntrypoint(root string) string {
	for _, candidate := range []string{"main.py", "app.py"} {
		if _, err := os.Stat(filepath.Join(root, candidate)); err == nil {
			return candidate
		}
	}
	return ""
}

// majorMinor truncates a full interpreter version to its constraint form.
func majorMinor(version string) string {
	if version == "" {
		return defaultPythonConstraint
	}
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// ensureGitignore appends the work directory to .gitignore, creating the
// file when missing. An entry already present is left alone.
func ensureGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")
	entry := WorkDirName + "/"

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == entry || trimmed == WorkDirName {
			return nil
		}
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(entry + "\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
