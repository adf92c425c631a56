package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// productDisplayName must appear in an instance display name for a match.
	productDisplayName = "SQL Server Management Studio"

	// setupArchitecture filters setup instances by their chip attribute.
	setupArchitecture = "x64"

	// setupQueryTimeout bounds the external discovery tool invocation.
	setupQueryTimeout = 10 * time.Second
)

// errNoSetupTool is returned when the discovery tool location cannot be derived.
var errNoSetupTool = errors.New("setup tool location unknown")

// setupInstance is one record of the discovery tool's JSON output.
type setupInstance struct {
	// InstanceID identifies the installed instance.
	InstanceID string `json:"instanceId"`
	// DisplayName is the human-readable product name, version included.
	DisplayName string `json:"displayName"`
	// InstallationPath is the absolute root of the instance.
	InstallationPath string `json:"installationPath"`
	// Chip is the architecture the instance was installed for.
	Chip string `json:"chip"`
}

// SetupQuery discovers installations through the system setup tool, which
// models every product instance installed by the platform installer.
type SetupQuery struct {
	// VersionToken is the major version that must appear in the display name.
	VersionToken string
	// Runner executes the discovery tool and returns its JSON output.
	// The default runs vswhere.exe from its standard installer location.
	Runner func(ctx context.Context) ([]byte, error)
}

// Name implements Strategy.
func (s *SetupQuery) Name() string {
	return "setup query"
}

// Locate filters the tool's instances down to x64 builds whose display name
// carries both the product name and the version token. The first match wins;
// no further disambiguation is attempted when several qualify.
func (s *SetupQuery) Locate(ctx context.Context) (string, error) {
	runner := s.Runner
	if runner == nil {
		runner = runSetupTool
	}

	output, err := runner(ctx)
	if err != nil {
		return "", err
	}

	var instances []setupInstance
	if err = json.Unmarshal(output, &instances); err != nil {
		return "", fmt.Errorf("parse setup tool output: %w", err)
	}

	for _, instance := range instances {
		if instance.Chip != setupArchitecture {
			continue
		}

		if !strings.Contains(instance.DisplayName, productDisplayName) {
			continue
		}

		if !strings.Contains(instance.DisplayName, s.VersionToken) {
			continue
		}

		return instance.InstallationPath, nil
	}

	return "", nil
}

// runSetupTool invokes vswhere.exe from the standard installer location
// with a bounded timeout.
func runSetupTool(ctx context.Context) ([]byte, error) {
	programFiles := os.Getenv("ProgramFiles(x86)")
	if programFiles == "" {
		programFiles = os.Getenv("ProgramFiles")
	}

	if programFiles == "" {
		return nil, errNoSetupTool
	}

	toolPath := filepath.Join(programFiles, "Microsoft Visual Studio", "Installer", "vswhere.exe")
	if _, err := os.Stat(toolPath); err != nil {
		return nil, err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, setupQueryTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, toolPath,
		"-all", "-prerelease", "-products", "*", "-format", "json", "-utf8")

	return cmd.Output()
}
