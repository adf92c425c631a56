package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIsPlatformCompatible walks the platform predicate truth table:
// exact x64, x64 with no machine requirement and fully neutral packages are
// admitted, while foreign architectures on either attribute are rejected.
func TestIsPlatformCompatible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		productArch string
		machineArch string
		want        bool
	}{
		{name: "exact x64 match", productArch: "x64", machineArch: "x64", want: true},
		{name: "x64 without machine arch", productArch: "x64", machineArch: "", want: true},
		{name: "architecture neutral", productArch: "", machineArch: "", want: true},
		{name: "mixed foreign machine arch", productArch: "x64", machineArch: "arm64", want: false},
		{name: "foreign product arch", productArch: "arm64", machineArch: "", want: false},
		{name: "machine arch only", productArch: "", machineArch: "x64", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := &Package{
				ID:          "Vendor.Component",
				ProductArch: tc.productArch,
				MachineArch: tc.machineArch,
			}

			require.Equal(t, tc.want, IsPlatformCompatible(p))
		})
	}
}

// TestSelectDownloadTargets feeds a catalog of five packages through the
// filter: two allow-listed compatible ones must come out, each carrying only
// the first payload of its package.
func TestSelectDownloadTargets(t *testing.T) {
	t.Parallel()

	catalog := &CatalogManifest{
		Packages: []Package{
			{
				ID: "Vendor.Wanted.A",
				Payloads: []Payload{
					{URL: "https://updates.local/a1.vsix", FileName: "a1.vsix"},
					{URL: "https://updates.local/a2.vsix", FileName: "a2.vsix"},
					{URL: "https://updates.local/a3.vsix", FileName: "a3.vsix"},
				},
			},
			{
				ID:          "Vendor.Wanted.B",
				ProductArch: "x64",
				Payloads: []Payload{
					{URL: "https://updates.local/b.vsix", FileName: "b.vsix"},
				},
			},
			{
				ID:          "Vendor.Wanted.Arm",
				ProductArch: "arm64",
				Payloads: []Payload{
					{URL: "https://updates.local/arm.vsix", FileName: "arm.vsix"},
				},
			},
			{
				ID: "Vendor.Unwanted.A",
				Payloads: []Payload{
					{URL: "https://updates.local/ua.vsix", FileName: "ua.vsix"},
				},
			},
			{
				ID: "Vendor.Unwanted.B",
				Payloads: []Payload{
					{URL: "https://updates.local/ub.vsix", FileName: "ub.vsix"},
				},
			},
		},
	}

	allowList := []string{"Vendor.Wanted.A", "Vendor.Wanted.B", "Vendor.Wanted.Arm"}

	targets := SelectDownloadTargets(catalog, allowList)
	require.Len(t, targets, 2)

	// Manifest order is preserved and only the first payload is selected.
	require.Equal(t, "Vendor.Wanted.A", targets[0].PackageID)
	require.Equal(t, "a1.vsix", targets[0].Payload.FileName)
	require.Equal(t, "Vendor.Wanted.B", targets[1].PackageID)
	require.Equal(t, "b.vsix", targets[1].Payload.FileName)
}

// TestSelectDownloadTargetsEmpty verifies that zero matches yield an empty
// slice rather than an error.
func TestSelectDownloadTargetsEmpty(t *testing.T) {
	t.Parallel()

	catalog := &CatalogManifest{
		Packages: []Package{
			{ID: "Vendor.Other", Payloads: []Payload{{URL: "https://updates.local/o.vsix"}}},
		},
	}

	require.Empty(t, SelectDownloadTargets(catalog, []string{"Vendor.Wanted"}))
}

// TestTargetFileName covers both the published-name and the derived-name cases.
func TestTargetFileName(t *testing.T) {
	t.Parallel()

	named := Payload{URL: "https://updates.local/x", FileName: "Foo.vsix", Sha256: "abc"}
	require.Equal(t, "Foo.vsix", named.TargetFileName("Vendor.Component"))

	unnamed := Payload{URL: "https://updates.local/x", Sha256: "abc"}
	require.Equal(t, "Vendor.Component_abc.vsix", unnamed.TargetFileName("Vendor.Component"))

	target := DownloadTarget{PackageID: "Vendor.Component", Payload: unnamed}
	require.Equal(t, "Vendor.Component_abc.vsix", target.FileName())
}
