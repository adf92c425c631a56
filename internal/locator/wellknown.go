package locator

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
)

// productFolderPrefix names the versioned product folder under Program Files.
const productFolderPrefix = "Microsoft SQL Server Management Studio"

// EnvironmentProbe lists candidate installation roots for the probe tier,
// keeping the tier itself pure data over an injected environment.
type EnvironmentProbe interface {
	// CandidatePaths returns the conventional installation directories in probe order.
	CandidatePaths() []string
}

// WellKnownPaths probes conventional installation directories.
type WellKnownPaths struct {
	// Probe supplies the candidates.
	Probe EnvironmentProbe
	// Exists reports whether a file exists; defaults to an os.Stat probe.
	Exists func(string) bool
}

// Name implements Strategy.
func (s *WellKnownPaths) Name() string {
	return "well-known paths"
}

// Locate accepts the first candidate validated by the product marker executable.
func (s *WellKnownPaths) Locate(_ context.Context) (string, error) {
	if s.Probe == nil {
		return "", nil
	}

	exists := s.Exists
	if exists == nil {
		exists = fileExists
	}

	for _, candidate := range s.Probe.CandidatePaths() {
		if hasMarker(candidate, exists) {
			return candidate, nil
		}
	}

	return "", nil
}

// ProgramFilesProbe builds the conventional candidates from the Program
// Files variants and the versioned product folders for the target and the
// prior major version.
type ProgramFilesProbe struct {
	// TargetVersion is the major product version being targeted.
	TargetVersion string
}

// CandidatePaths implements EnvironmentProbe.
func (p ProgramFilesProbe) CandidatePaths() []string {
	versions := []string{p.TargetVersion, previousVersion(p.TargetVersion)}
	candidates := make([]string, 0, 4)

	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
		base := os.Getenv(env)
		if base == "" {
			continue
		}

		for _, version := range versions {
			if version == "" {
				continue
			}

			candidates = append(candidates, filepath.Join(base, productFolderPrefix+" "+version))
		}
	}

	return candidates
}

// previousVersion returns the prior major version for the probe table.
func previousVersion(version string) string {
	n, err := strconv.Atoi(version)
	if err != nil || n <= 1 {
		return ""
	}

	return strconv.Itoa(n - 1)
}
