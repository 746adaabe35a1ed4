package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anikchand461/envpod/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("flask\n"), 0o644))

	out, err := execute(t, "init")
	require.NoError(t, err)
	require.Contains(t, out, config.DefaultFileName)

	cfg, err := config.ParseConfig(filepath.Join(dir, config.DefaultFileName))
	require.NoError(t, err)
	require.Equal(t, "requirements.txt", cfg.Dependencies.File)

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	require.Contains(t, string(gitignore), ".envpod/")
}

func TestInitRefusesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte("name: keep\n"), 0o644))

	_, err := execute(t, "init")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--force")
	require.NoError(t, err)
}

func TestInitInNestedDirLeavesParentConfig(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parent, config.DefaultFileName), []byte("name: parent\n"), 0o644))
	nested := filepath.Join(parent, "tools")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	_, err := execute(t, "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(parent, config.DefaultFileName))
	require.NoError(t, err)
	require.Equal(t, "name: parent\n", string(data))

	cfg, err := config.ParseConfig(filepath.Join(nested, config.DefaultFileName))
	require.NoError(t, err)
	require.Equal(t, "tools", cfg.Name)
}

func TestRunUnknownTargetListsAvailable(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgBody := "name: demo\nruntime:\n  version: \"3.11\"\nrun:\n  dev: echo hi\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(cfgBody), 0o644))

	_, err := execute(t, "run", "serve")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"serve"`)
	require.Contains(t, err.Error(), "dev")
}
