package locator

import (
	"context"

	"github.com/oshokin/ssms-extension-updater/internal/logger"
)

// installDirValue is the registry value naming an installation root.
const installDirValue = "InstallDir"

// registryProbePaths returns the key paths scanned in order: the product
// key, its WOW64 mirror, the extension-packs key and its mirror.
func registryProbePaths() []string {
	return []string{
		`SOFTWARE\Microsoft\Microsoft SQL Server Management Studio`,
		`SOFTWARE\WOW6432Node\Microsoft\Microsoft SQL Server Management Studio`,
		`SOFTWARE\Microsoft\SQL Server Management Studio\ExtensionPacks`,
		`SOFTWARE\WOW6432Node\Microsoft\SQL Server Management Studio\ExtensionPacks`,
	}
}

// Hive reads string values from the system registry. It exists so the scan
// compiles on every platform and can be tested without a live registry.
type Hive interface {
	// SubKeys lists the child key names below path.
	SubKeys(path string) ([]string, error)
	// StringValue reads a named string value from the key at path.
	StringValue(path, name string) (string, error)
}

// RegistryScan probes the fixed product keys for InstallDir values.
type RegistryScan struct {
	// Hive is the registry access; defaults to the local machine hive.
	Hive Hive
	// Exists reports whether a file exists; defaults to an os.Stat probe.
	Exists func(string) bool
}

// Name implements Strategy.
func (s *RegistryScan) Name() string {
	return "registry scan"
}

// Locate enumerates each probe key's children, reads their InstallDir value
// and accepts the first directory validated by the product marker executable.
func (s *RegistryScan) Locate(ctx context.Context) (string, error) {
	hive := s.Hive
	if hive == nil {
		hive = localMachineHive()
	}

	exists := s.Exists
	if exists == nil {
		exists = fileExists
	}

	for _, keyPath := range registryProbePaths() {
		children, err := hive.SubKeys(keyPath)
		if err != nil {
			logger.DebugKV(ctx, "Registry key not readable", "key", keyPath, "error", err)
			continue
		}

		for _, child := range children {
			dir, err := hive.StringValue(keyPath+`\`+child, installDirValue)
			if err != nil || dir == "" {
				continue
			}

			if hasMarker(dir, exists) {
				return dir, nil
			}
		}
	}

	return "", nil
}
