//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/ssms-extension-updater/internal/domain/install"
)

// DetectActor gathers host and user information for the run report's audit trail.
func DetectActor() (*install.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &install.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
