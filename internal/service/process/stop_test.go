package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStopByNameNoMatches verifies enumeration succeeds and nothing is
// stopped when no process carries the target name.
func TestStopByNameNoMatches(t *testing.T) {
	t.Parallel()

	stopped, err := StopByName(context.Background(), "no-such-executable-name.exe")
	require.NoError(t, err)
	require.Zero(t, stopped)
}

// TestSliceToSet verifies set conversion drops duplicates.
func TestSliceToSet(t *testing.T) {
	t.Parallel()

	set := sliceToSet([]string{"a", "b", "a"})
	require.Len(t, set, 2)
	require.Contains(t, set, "a")
	require.Contains(t, set, "b")
}
