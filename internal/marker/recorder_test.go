package marker

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anikchand461/envpod/internal/project"
	"github.com/anikchand461/envpod/internal/state"
	envpoderrors "github.com/anikchand461/envpod/pkg/errors"
)

func testFingerprint() state.Fingerprint {
	return state.NewFingerprint(state.RuntimeSpec{Kind: "python", Constraint: "3.11"},
		[]state.Dependency{{Name: "flask", Spec: "==3.0.0"}})
}

func TestReadLastAppliedMissing(t *testing.T) {
	r := NewRecorder(t.TempDir())
	require.Nil(t, r.ReadLastApplied())
}

func TestRecordSuccessRoundTrip(t *testing.T) {
	root := t.TempDir()
	r := NewRecorder(root)
	fp := testFingerprint()

	require.NoError(t, r.RecordSuccess(fp, "run-1"))

	rec := r.ReadLastApplied()
	require.NotNil(t, rec)
	require.Equal(t, fp, rec.Fingerprint)
	require.Equal(t, "run-1", rec.RunID)
	require.False(t, rec.AppliedAt.IsZero())
}

func TestRecordSuccessRejectsEmptyFingerprint(t *testing.T) {
	r := NewRecorder(t.TempDir())
	require.Error(t, r.RecordSuccess("", "run-1"))
}

func TestReadLastAppliedIgnoresUnknownFields(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(project.WorkDir(root), 0o755))
	data := `{"version":"9","fingerprint":"abc","applied_at":"2026-01-02T03:04:05Z","future":"ignored"}`
	require.NoError(t, os.WriteFile(project.MarkerPath(root), []byte(data), 0o644))

	rec := NewRecorder(root).ReadLastApplied()
	require.NotNil(t, rec)
	require.Equal(t, state.Fingerprint("abc"), rec.Fingerprint)
}

func TestReadLastAppliedCorruptReturnsNil(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(project.WorkDir(root), 0o755))
	require.NoError(t, os.WriteFile(project.MarkerPath(root), []byte("{not json"), 0o644))

	require.Nil(t, NewRecorder(root).ReadLastApplied())
}

func TestLockExcludesSecondHolder(t *testing.T) {
	root := t.TempDir()

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	defer lock.Release()

	_, err = AcquireLock(root)
	require.Error(t, err)
	var lockErr *envpoderrors.LockError
	require.True(t, errors.As(err, &lockErr))

	require.NoError(t, lock.Release())

	again, err := AcquireLock(root)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestNilLockReleaseIsSafe(t *testing.T) {
	var lock *Lock
	require.NoError(t, lock.Release())
}
