package install

import (
	"fmt"
	"strings"
	"time"
)

// Actor identifies who performed the run.
type Actor struct {
	// Hostname is the machine name the run was performed on.
	Hostname string `json:"hostname"`
	// Username is the system user who started the run.
	Username string `json:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// StageCount tallies the outcome of one pipeline stage.
type StageCount struct {
	// Found is how many work items the stage discovered.
	Found int `json:"found"`
	// Attempted is how many items the stage actually processed.
	Attempted int `json:"attempted"`
	// Succeeded is how many items completed without an error.
	Succeeded int `json:"succeeded"`
}

// Failed returns the number of attempted items that did not succeed.
func (c StageCount) Failed() int {
	return c.Attempted - c.Succeeded
}

// String renders the count as "N of M".
func (c StageCount) String() string {
	return fmt.Sprintf("%d of %d", c.Succeeded, c.Found)
}

// RunReport captures the outcome of one updater run.
// It is threaded through the pipeline stages and returned to the caller,
// so no stage keeps process-wide counters.
type RunReport struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`
	// Actor is who performed the run.
	Actor *Actor `json:"actor,omitempty"`
	// TargetVersion is the major product version the run targeted.
	TargetVersion string `json:"target_version"`
	// ReleaseChannel is the vendor channel the manifests were resolved from.
	ReleaseChannel string `json:"release_channel"`
	// Downloads tallies the payload download stage.
	Downloads StageCount `json:"downloads"`
	// Extractions tallies the archive extraction stage.
	Extractions StageCount `json:"extractions"`
	// Merges tallies the component directories merged into the installation.
	Merges StageCount `json:"merges"`
	// MergeSkipped reports that the merge stage did not run because no
	// installation root was available.
	MergeSkipped bool `json:"merge_skipped,omitempty"`
	// InstallLocated reports whether an installation root was discovered.
	InstallLocated bool `json:"install_located"`
	// InstallPath is the discovered installation root, empty when not located.
	InstallPath string `json:"install_path,omitempty"`
	// ExtractionPath is the root the component trees were extracted into.
	ExtractionPath string `json:"extraction_path,omitempty"`
}

// Clone returns a copy of the report to avoid leaking internal references.
func (r *RunReport) Clone() *RunReport {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Actor = r.Actor.Clone()

	return &cloned
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary renders a one-line human-readable outcome of the run.
// When the installation was not located it states where the extracted
// components remain so they can be placed manually.
func (r *RunReport) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "downloaded %s payloads, extracted %s archives", r.Downloads, r.Extractions)

	if r.InstallLocated {
		fmt.Fprintf(&b, ", merged %s component directories into %s", r.Merges, r.InstallPath)

		return b.String()
	}

	fmt.Fprintf(&b, "; installation not found, extracted components remain at %s for manual placement", r.ExtractionPath)

	return b.String()
}
