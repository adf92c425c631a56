package install

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "WORKSTATION-42",
		Username: "o.shokin",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestStageCountFailed verifies the failure tally derived from attempted and succeeded.
func TestStageCountFailed(t *testing.T) {
	t.Parallel()

	c := StageCount{Found: 5, Attempted: 4, Succeeded: 3}

	require.Equal(t, 1, c.Failed())
	require.Equal(t, "3 of 5", c.String())
}

// TestRunReportClone verifies that Clone copies fields and deep-copies the actor.
func TestRunReportClone(t *testing.T) {
	t.Parallel()

	r := &RunReport{
		StartedAt:      time.Now().UTC().Truncate(time.Second),
		TargetVersion:  "21",
		ReleaseChannel: "release",
		Actor: &Actor{
			Hostname: "WORKSTATION-42",
			Username: "o.shokin",
		},
		Downloads: StageCount{Found: 2, Attempted: 2, Succeeded: 2},
	}

	c := r.Clone()
	require.Equal(t, r, c)
	require.NotSame(t, r, c)

	// Ensure actor pointer is cloned.
	require.NotSame(t, r.Actor, c.Actor)
}

// TestRunReportSummary verifies both the merged and the not-located renderings.
func TestRunReportSummary(t *testing.T) {
	t.Parallel()

	r := &RunReport{
		Downloads:      StageCount{Found: 2, Attempted: 2, Succeeded: 2},
		Extractions:    StageCount{Found: 2, Attempted: 2, Succeeded: 2},
		Merges:         StageCount{Found: 3, Attempted: 3, Succeeded: 3},
		InstallLocated: true,
		InstallPath:    `C:\Program Files\Product 21`,
	}

	s := r.Summary()
	require.Contains(t, s, "downloaded 2 of 2 payloads")
	require.Contains(t, s, "merged 3 of 3 component directories")
	require.Contains(t, s, r.InstallPath)

	r.InstallLocated = false
	r.MergeSkipped = true
	r.ExtractionPath = `C:\Temp\extracted`

	s = r.Summary()
	require.Contains(t, s, "installation not found")
	require.Contains(t, s, r.ExtractionPath)
	require.NotContains(t, s, "merged")
}
