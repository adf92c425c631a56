package process

import (
	"context"
	"fmt"
	"os"

	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/ssms-extension-updater/internal/logger"
)

// StopByName kills every running process whose executable name is in names,
// skipping the current process. It returns how many processes were stopped.
// Individual kill failures are logged and swallowed.
func StopByName(ctx context.Context, names ...string) (int, error) {
	targets := sliceToSet(names)

	processList, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	var (
		stopped       int
		thisProcessID = os.Getpid()
	)

	for _, candidate := range processList {
		processID := candidate.Pid()
		if processID == thisProcessID {
			continue
		}

		processName := candidate.Executable()
		if _, found := targets[processName]; !found {
			continue
		}

		runningProcess, findErr := os.FindProcess(processID)
		if findErr != nil {
			logger.WarnKV(ctx, "Unable to address process",
				"name", processName, "pid", processID, "error", findErr)

			continue
		}

		if killErr := runningProcess.Kill(); killErr != nil {
			logger.WarnKV(ctx, "Unable to stop process",
				"name", processName, "pid", processID, "error", killErr)

			continue
		}

		stopped++

		logger.InfoKV(ctx, "Stopped process", "name", processName, "pid", processID)
	}

	return stopped, nil
}

// sliceToSet converts a string slice into a set for quick lookups.
func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}

	return set
}
