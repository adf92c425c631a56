package download

import (
	"context"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	goupdate "github.com/doitdistributed/go-update"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/ssms-extension-updater/internal/domain/install"
	"github.com/oshokin/ssms-extension-updater/internal/logger"
	"github.com/oshokin/ssms-extension-updater/internal/manifest"
	"github.com/oshokin/ssms-extension-updater/internal/version"

	// Ensure SHA256 is available for checksum verification.
	_ "crypto/sha256"
)

const (
	// DefaultArchiveMode is the file mode downloaded archives are stored with.
	DefaultArchiveMode os.FileMode = 0o644

	// DefaultChecksumFunction matches the checksum the vendor publishes for payloads.
	DefaultChecksumFunction crypto.Hash = crypto.SHA256

	// defaultDirPermissions is used when creating the download directory.
	defaultDirPermissions os.FileMode = 0o755
)

// errBadHTTPStatus is returned when the payload host answers with a non-200 status.
var errBadHTTPStatus = errors.New("unexpected http status")

// Fetcher downloads payload archives.
type Fetcher struct {
	httpClient  *http.Client
	maxParallel int
}

// NewFetcher returns a fetcher using the provided HTTP client and
// concurrency bound. A nil client falls back to http.DefaultClient,
// a non-positive bound is raised to 1.
func NewFetcher(httpClient *http.Client, maxParallel int) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if maxParallel < 1 {
		maxParallel = 1
	}

	return &Fetcher{
		httpClient:  httpClient,
		maxParallel: maxParallel,
	}
}

// Fetch downloads one payload to destPath. When sha256hex is not empty the
// payload must match it before the destination is replaced.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath, sha256hex string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	options := goupdate.Options{
		TargetPath: destPath,
		TargetMode: DefaultArchiveMode,
	}

	if sha256hex != "" {
		var checksum []byte

		checksum, err = hex.DecodeString(sha256hex)
		if err != nil {
			return fmt.Errorf("decode checksum for %s: %w", url, err)
		}

		options.Checksum = checksum
		options.Hash = DefaultChecksumFunction
	}

	// go-update replaces an existing target, so make sure one exists.
	if _, err = os.Stat(destPath); err != nil && os.IsNotExist(err) {
		var placeholder *os.File

		placeholder, err = os.Create(filepath.Clean(destPath))
		if err != nil {
			return err
		}

		if err = placeholder.Close(); err != nil {
			return err
		}
	}

	if err = goupdate.Apply(response.Body, options); err != nil {
		return err
	}

	oldPath := destPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// FetchAll downloads every selected target into destDir with bounded
// parallelism. Failures are logged and counted per item and never cancel the
// remaining downloads. The returned error covers only the directory setup.
func (f *Fetcher) FetchAll(ctx context.Context, targets []manifest.DownloadTarget, destDir string) (install.StageCount, error) {
	count := install.StageCount{Found: len(targets)}
	if len(targets) == 0 {
		return count, nil
	}

	if err := os.MkdirAll(destDir, defaultDirPermissions); err != nil {
		return count, fmt.Errorf("create download directory: %w", err)
	}

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.maxParallel)

	for _, target := range targets {
		group.Go(func() error {
			destPath := filepath.Join(destDir, target.FileName())

			mu.Lock()
			count.Attempted++
			mu.Unlock()

			if err := f.Fetch(groupCtx, target.Payload.URL, destPath, target.Payload.Sha256); err != nil {
				logger.ErrorKV(groupCtx, "Payload download failed",
					"package", target.PackageID, "url", target.Payload.URL, "error", err)

				// Failures stay per item.
				return nil
			}

			mu.Lock()
			count.Succeeded++
			mu.Unlock()

			logger.InfoKV(groupCtx, "Downloaded payload",
				"package", target.PackageID, "path", destPath)

			return nil
		})
	}

	// Tasks never return errors, so Wait only joins them.
	_ = group.Wait()

	return count, nil
}
