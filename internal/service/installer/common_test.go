package installer

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// redirectTempDir points os.TempDir at a per-test directory so marker files
// never collide across tests.
func redirectTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	t.Setenv("TMP", dir)

	return dir
}

// TestIsInstallerRunningNow verifies marker detection and stale-marker recovery.
func TestIsInstallerRunningNow(t *testing.T) {
	redirectTempDir(t)

	ctx := context.Background()
	require.False(t, IsInstallerRunningNow(ctx))

	marker, err := os.Create(markerPath())
	require.NoError(t, err)
	require.NoError(t, marker.Close())

	require.True(t, IsInstallerRunningNow(ctx))

	// A marker past its lifetime is cleaned up and ignored.
	stale := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(markerPath(), stale, stale))
	require.False(t, IsInstallerRunningNow(ctx))

	_, err = os.Stat(markerPath())
	require.ErrorIs(t, err, os.ErrNotExist)
}
