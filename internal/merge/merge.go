package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/ssms-extension-updater/internal/domain/install"
	"github.com/oshokin/ssms-extension-updater/internal/logger"
)

// defaultDirPermissions is used for directories created inside the
// installation root.
const defaultDirPermissions os.FileMode = 0o755

// MergeAll copies every component tree under extractionRoot into
// installRoot, one immediate subdirectory at a time. A failing component is
// logged and counted, the remaining components still merge. A missing or
// empty extraction root is an empty result, not an error.
func MergeAll(ctx context.Context, extractionRoot, installRoot string) (install.StageCount, error) {
	var count install.StageCount

	entries, err := os.ReadDir(extractionRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "No extracted components to merge", "directory", extractionRoot)
			return count, nil
		}

		return count, fmt.Errorf("read extraction root: %w", err)
	}

	components := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			components = append(components, entry.Name())
		}
	}

	count.Found = len(components)
	if count.Found == 0 {
		logger.InfoKV(ctx, "No extracted components to merge", "directory", extractionRoot)
		return count, nil
	}

	for _, name := range components {
		count.Attempted++

		source := filepath.Join(extractionRoot, name)
		target := filepath.Join(installRoot, name)

		if err = CopyTree(ctx, source, target); err != nil {
			logger.ErrorKV(ctx, "Component merge failed",
				"component", name, "target", target, "error", err)

			continue
		}

		count.Succeeded++

		logger.InfoKV(ctx, "Merged component", "component", name, "target", target)
	}

	return count, nil
}

// CopyTree copies the tree rooted at source into target, creating target if
// absent and overwriting files already present. Non-regular files are
// skipped with a warning.
func CopyTree(ctx context.Context, source, target string) error {
	return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}

		dest := target
		if rel != "." {
			dest = filepath.Join(target, rel)
		}

		if entry.IsDir() {
			return os.MkdirAll(dest, defaultDirPermissions)
		}

		if !entry.Type().IsRegular() {
			logger.WarnKV(ctx, "Skipping non-regular file", "path", path)
			return nil
		}

		return copyFile(path, dest)
	})
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
