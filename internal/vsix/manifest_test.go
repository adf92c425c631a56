package vsix

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCleanExtensionDir verifies placeholder stripping, including the
// separator handling and the case-sensitive literal match.
func TestCleanExtensionDir(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "backslash separated",
			in:   `[installdir]\Common7\IDE\Extensions\X`,
			want: `Common7\IDE\Extensions\X`,
		},
		{
			name: "forward slash separated",
			in:   "[installdir]/Ext",
			want: "Ext",
		},
		{
			name: "placeholder only",
			in:   "[installdir]",
			want: "",
		},
		{
			name: "wrong case is not a placeholder",
			in:   `[INSTALLDIR]\X`,
			want: `[INSTALLDIR]\X`,
		},
		{
			name: "no placeholder",
			in:   `Common7\IDE`,
			want: `Common7\IDE`,
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, CleanExtensionDir(tc.in))
		})
	}
}

// TestStripContentsMarker verifies removal of the leading packaged-content folder.
func TestStripContentsMarker(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "leading marker", in: "Contents/a/b.txt", want: "a/b.txt"},
		{name: "rooted leading marker", in: "/Contents/a.txt", want: "a.txt"},
		{name: "no marker", in: "a/b.txt", want: "a/b.txt"},
		{name: "marker only", in: "Contents", want: ""},
		{name: "marker as name prefix stays", in: "ContentsExtra/a.txt", want: "ContentsExtra/a.txt"},
		{name: "inner marker stays", in: "sub/Contents/a.txt", want: "sub/Contents/a.txt"},
		{name: "backslash form", in: `Contents\a.txt`, want: "a.txt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, stripContentsMarker(tc.in))
		})
	}
}

// TestSecuredRelativePath verifies separator normalization and the traversal guard.
func TestSecuredRelativePath(t *testing.T) {
	t.Parallel()

	got, err := securedRelativePath(`a\b`)
	require.NoError(t, err)
	require.Equal(t, filepath.FromSlash("a/b"), got)

	got, err = securedRelativePath("/a")
	require.NoError(t, err)
	require.Equal(t, "a", got)

	got, err = securedRelativePath("")
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = securedRelativePath(".")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = securedRelativePath("../evil")
	require.ErrorIs(t, err, errUnsafePath)

	_, err = securedRelativePath("a/../../evil")
	require.ErrorIs(t, err, errUnsafePath)
}
