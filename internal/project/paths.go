package project

import "path/filepath"

// WorkDirName is the per-project directory envpod owns. It holds the
// environment, the marker, and the lock, and belongs in .gitignore.
const WorkDirName = ".envpod"

// WorkDir returns the envpod-owned directory under the project root.
func WorkDir(root string) string {
	return filepath.Join(root, WorkDirName)
}

// EnvDir returns the managed environment directory.
func EnvDir(root string) string {
	return filepath.Join(WorkDir(root), "venv")
}

// MarkerPath returns the last-applied marker record location.
func MarkerPath(root string) string {
	return filepath.Join(WorkDir(root), "state.json")
}

// LockPath returns the reconciliation lock location. The lock lives next to
// the marker so concurrent invocations serialize on the same record.
func LockPath(root string) string {
	return filepath.Join(WorkDir(root), "state.lock")
}

// EnvRecordPath returns the materialized environment-variable record.
func EnvRecordPath(root string) string {
	return filepath.Join(WorkDir(root), "env")
}
