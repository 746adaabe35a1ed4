package marker

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/anikchand461/envpod/internal/project"
	envpoderrors "github.com/anikchand461/envpod/pkg/errors"
)

// Lock scopes a reconciliation: at most one probe→diff→apply→record sequence
// may run against a project's environment at a time. Read-only operations
// (probe, doctor) never take it.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the project reconciliation lock. Contention returns a
// LockError rather than blocking: re-running the command once the other
// reconciliation finishes is the intended retry.
func AcquireLock(projectRoot string) (*Lock, error) {
	path := project.LockPath(projectRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, envpoderrors.NewLockError(path, err)
	}
	if !locked {
		return nil, envpoderrors.NewLockError(path, nil)
	}

	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
