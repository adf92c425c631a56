package vsix

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/ssms-extension-updater/internal/logger"
)

const (
	// archiveExtension matches the payload archives the vendor ships.
	archiveExtension = ".vsix"

	// scratchDirPattern names the per-archive scratch directories. The
	// random suffix added by MkdirTemp keeps concurrent extractions apart.
	scratchDirPattern = "ssms-extension-extract-"

	// defaultDirPermissions is used for directories created during extraction.
	defaultDirPermissions os.FileMode = 0o755

	// defaultFileMode is the fallback for archive entries without a stored mode.
	defaultFileMode os.FileMode = 0o644
)

// ErrMissingManifest is returned when an archive carries no embedded manifest.
var ErrMissingManifest = errors.New("archive has no embedded manifest")

// Extract expands one archive into extractionRoot according to its embedded
// manifest. The failure of one archive never affects another; the caller
// decides whether to continue the batch.
func Extract(ctx context.Context, archivePath, extractionRoot string) error {
	scratchDir, err := os.MkdirTemp("", scratchDirPattern)
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	// The scratch directory must not leak, success or failure.
	defer func() {
		_ = os.RemoveAll(scratchDir)
	}()

	if err = unzip(archivePath, scratchDir); err != nil {
		return fmt.Errorf("decompress %s: %w", archivePath, err)
	}

	m, err := readEmbeddedManifest(scratchDir)
	if err != nil {
		return err
	}

	targetDir, err := resolveTargetDir(extractionRoot, m.ExtensionDir)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(targetDir, defaultDirPermissions); err != nil {
		return fmt.Errorf("create component directory: %w", err)
	}

	if err = copyManifestFiles(ctx, m, scratchDir, targetDir); err != nil {
		return err
	}

	return copyAuxiliaryFiles(scratchDir, targetDir)
}

// ExtractAll discovers the payload archives in archiveDir by extension match
// and extracts each with bounded parallelism. Individual failures are logged
// and tolerated. Zero discovered archives is reported, not an error.
func ExtractAll(ctx context.Context, archiveDir, extractionRoot string, maxParallel int) (found, succeeded int, err error) {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		// A download directory that was never created holds no archives.
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "No archives found to extract", "directory", archiveDir)
			return 0, 0, nil
		}

		return 0, 0, fmt.Errorf("read archive directory: %w", err)
	}

	archives := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.EqualFold(filepath.Ext(entry.Name()), archiveExtension) {
			continue
		}

		archives = append(archives, filepath.Join(archiveDir, entry.Name()))
	}

	if len(archives) == 0 {
		logger.InfoKV(ctx, "No archives found to extract", "directory", archiveDir)
		return 0, 0, nil
	}

	if err = os.MkdirAll(extractionRoot, defaultDirPermissions); err != nil {
		return len(archives), 0, fmt.Errorf("create extraction root: %w", err)
	}

	if maxParallel < 1 {
		maxParallel = 1
	}

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)

	for _, archivePath := range archives {
		group.Go(func() error {
			if extractErr := Extract(groupCtx, archivePath, extractionRoot); extractErr != nil {
				logger.ErrorKV(groupCtx, "Archive extraction failed",
					"archive", archivePath, "error", extractErr)

				// Failures stay per archive.
				return nil
			}

			mu.Lock()
			succeeded++
			mu.Unlock()

			logger.InfoKV(groupCtx, "Extracted archive", "archive", archivePath)

			return nil
		})
	}

	// Tasks never return errors, so Wait only joins them.
	_ = group.Wait()

	return len(archives), succeeded, nil
}

// resolveTargetDir joins the cleaned extensionDir onto the extraction root.
// An empty or placeholder-only extensionDir targets the root itself.
func resolveTargetDir(extractionRoot, extensionDir string) (string, error) {
	rel, err := securedRelativePath(CleanExtensionDir(extensionDir))
	if err != nil {
		return "", err
	}

	if rel == "" {
		return extractionRoot, nil
	}

	return filepath.Join(extractionRoot, rel), nil
}

// readEmbeddedManifest loads and parses manifest.json from the scratch root.
func readEmbeddedManifest(scratchDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(scratchDir, embeddedManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMissingManifest
		}

		return nil, err
	}

	var m Manifest
	if err = json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse embedded manifest: %w", err)
	}

	return &m, nil
}

// copyManifestFiles places every listed file at its destination below
// targetDir. A listed file missing from the archive is skipped with a
// warning; manifests routinely enumerate files that were not packaged.
func copyManifestFiles(ctx context.Context, m *Manifest, scratchDir, targetDir string) error {
	for _, entry := range m.Files {
		srcRel, err := securedRelativePath(entry.FileName)
		if err != nil {
			return err
		}

		if srcRel == "" {
			continue
		}

		src := filepath.Join(scratchDir, srcRel)
		if _, err = os.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.WarnKV(ctx, "Manifest lists a file missing from the archive",
					"component", m.ID, "file", entry.FileName)

				continue
			}

			return err
		}

		destRel, err := securedRelativePath(stripContentsMarker(entry.FileName))
		if err != nil {
			return err
		}

		if destRel == "" {
			continue
		}

		dest := filepath.Join(targetDir, destRel)
		if err = os.MkdirAll(filepath.Dir(dest), defaultDirPermissions); err != nil {
			return err
		}

		if err = copyFile(src, dest); err != nil {
			return err
		}
	}

	return nil
}

// copyAuxiliaryFiles copies the top-level archive files that the manifest
// does not enumerate (implicitly referenced binaries and the like) into the
// target root, skipping the bookkeeping files.
func copyAuxiliaryFiles(scratchDir, targetDir string) error {
	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if name == embeddedManifestName || name == embeddedCatalogName {
			continue
		}

		if err = copyFile(filepath.Join(scratchDir, name), filepath.Join(targetDir, name)); err != nil {
			return err
		}
	}

	return nil
}

// unzip expands the archive into destDir, guarding against entries that
// try to escape it.
func unzip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, file := range reader.File {
		if err = extractZipEntry(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

// extractZipEntry writes a single archive entry below destDir.
func extractZipEntry(file *zip.File, destDir string) error {
	rel, err := securedRelativePath(file.Name)
	if err != nil {
		return err
	}

	if rel == "" {
		return nil
	}

	destPath := filepath.Join(destDir, rel)
	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, defaultDirPermissions)
	}

	if err = os.MkdirAll(filepath.Dir(destPath), defaultDirPermissions); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = defaultFileMode
	}

	out, err := os.OpenFile(filepath.Clean(destPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}

// copyFile copies src to dest, overwriting dest and preserving the source mode.
func copyFile(src, dest string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(filepath.Clean(dest), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}
