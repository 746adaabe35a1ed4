package marker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anikchand461/envpod/internal/project"
	"github.com/anikchand461/envpod/internal/state"
)

const recordVersion = "1"

// Record is the persisted last-applied marker, one per project environment.
// Unknown JSON fields are ignored on read so newer versions can extend it
// without breaking older binaries.
type Record struct {
	Version     string            `json:"version"`
	Fingerprint state.Fingerprint `json:"fingerprint"`
	AppliedAt   time.Time         `json:"applied_at"`
	RunID       string            `json:"run_id,omitempty"`
}

// Recorder owns the marker record. It is written only after a fully
// converged reconciliation, never on partial success.
type Recorder struct {
	path string
}

// NewRecorder creates a Recorder for the given project root.
func NewRecorder(projectRoot string) *Recorder {
	return &Recorder{path: project.MarkerPath(projectRoot)}
}

// ReadLastApplied returns the stored marker, or nil when none exists. A
// corrupt marker reads as nil: the worst outcome is replanning work that
// probing will mostly skip.
func (r *Recorder) ReadLastApplied() *Record {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if !rec.Fingerprint.Known() {
		return nil
	}
	return &rec
}

// RecordSuccess persists the fingerprint of a converged reconciliation.
// The write is atomic (temp file + rename) so an interrupted write never
// leaves a half-written marker.
func (r *Recorder) RecordSuccess(fingerprint state.Fingerprint, runID string) error {
	if !fingerprint.Known() {
		return fmt.Errorf("refusing to record empty fingerprint")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}

	rec := Record{
		Version:     recordVersion,
		Fingerprint: fingerprint,
		AppliedAt:   time.Now().UTC(),
		RunID:       runID,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit marker: %w", err)
	}

	return nil
}
