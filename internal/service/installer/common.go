package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/oshokin/ssms-extension-updater/internal/logger"
	"github.com/oshokin/ssms-extension-updater/internal/service/process"
)

const (
	// markerFilename marks that the updater is running right now to avoid parallel execution.
	markerFilename = "ssms-extension-updater-marker.bin"

	// markerLifetime is the period after which a stale update marker is
	// ignored. A run downloads and merges tens of megabytes, so it is generous.
	markerLifetime = 30 * time.Minute

	// ssmsProcessName is the product executable stopped before the pipeline
	// runs; merging over files it holds open would fail.
	ssmsProcessName = "Ssms.exe"

	// baseUpdaterExecutable is this binary's name without the platform extension.
	baseUpdaterExecutable = "ssms-extension-updater"
)

// markerPath returns the location of the concurrent-run marker. It lives in
// the system temp directory so runs started from different working
// directories still exclude each other.
func markerPath() string {
	return filepath.Join(os.TempDir(), markerFilename)
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

func updaterExecutable() string {
	return baseUpdaterExecutable + getExecutableExtension()
}

// IsInstallerRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsInstallerRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of an update marker")

	fileInfo, err := os.Stat(markerPath())
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is too old, attempting cleanup")

		if _, err = process.StopByName(ctx, updaterExecutable()); err != nil {
			return true
		}

		if err = os.Remove(markerPath()); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Update marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}
