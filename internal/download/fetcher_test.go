package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ssms-extension-updater/internal/manifest"
)

// TestFetchPlacesPayload downloads a payload without a published checksum
// and verifies it lands at the destination with the exact served bytes.
func TestFetchPlacesPayload(t *testing.T) {
	t.Parallel()

	payload := []byte("vsix archive bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "component.vsix")
	fetcher := NewFetcher(server.Client(), 1)

	require.NoError(t, fetcher.Fetch(context.Background(), server.URL, destPath, ""))

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// No backup copy may linger after a successful placement.
	_, err = os.Stat(destPath + ".old")
	require.True(t, os.IsNotExist(err))
}

// TestFetchVerifiesChecksum covers both the matching and the mismatching sha256 cases.
func TestFetchVerifiesChecksum(t *testing.T) {
	t.Parallel()

	payload := []byte("vsix archive bytes")
	digest := sha256.Sum256(payload)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	fetcher := NewFetcher(server.Client(), 1)
	ctx := context.Background()

	goodPath := filepath.Join(dir, "good.vsix")
	require.NoError(t, fetcher.Fetch(ctx, server.URL, goodPath, hex.EncodeToString(digest[:])))

	got, err := os.ReadFile(goodPath)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	badPath := filepath.Join(dir, "bad.vsix")
	wrongDigest := sha256.Sum256([]byte("something else"))

	err = fetcher.Fetch(ctx, server.URL, badPath, hex.EncodeToString(wrongDigest[:]))
	require.Error(t, err)

	err = fetcher.Fetch(ctx, server.URL, badPath, "not hex")
	require.Error(t, err)
}

// TestFetchAll runs a mixed batch and checks that one failing download does
// not stop the other from landing.
func TestFetchAll(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok.vsix", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	targets := []manifest.DownloadTarget{
		{
			PackageID: "Vendor.Good",
			Payload:   manifest.Payload{URL: server.URL + "/ok.vsix", FileName: "ok.vsix"},
		},
		{
			PackageID: "Vendor.Gone",
			Payload:   manifest.Payload{URL: server.URL + "/gone.vsix", FileName: "gone.vsix"},
		},
	}

	destDir := filepath.Join(t.TempDir(), "downloads")
	fetcher := NewFetcher(server.Client(), 2)

	count, err := fetcher.FetchAll(context.Background(), targets, destDir)
	require.NoError(t, err)
	require.Equal(t, 2, count.Found)
	require.Equal(t, 2, count.Attempted)
	require.Equal(t, 1, count.Succeeded)
	require.Equal(t, 1, count.Failed())

	_, err = os.Stat(filepath.Join(destDir, "ok.vsix"))
	require.NoError(t, err)
}

// TestFetchAllEmpty verifies that an empty target list is a clean no-op.
func TestFetchAllEmpty(t *testing.T) {
	t.Parallel()

	destDir := filepath.Join(t.TempDir(), "downloads")
	fetcher := NewFetcher(nil, 4)

	count, err := fetcher.FetchAll(context.Background(), nil, destDir)
	require.NoError(t, err)
	require.Zero(t, count.Found)

	// The directory is not even created for an empty batch.
	_, err = os.Stat(destDir)
	require.True(t, os.IsNotExist(err))
}
