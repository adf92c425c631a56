package locator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/ssms-extension-updater/internal/logger"
)

// markerExecutable is the product binary whose presence validates a
// candidate installation root.
const markerExecutable = "Ssms.exe"

var (
	// ErrNotFound is returned when every discovery strategy is exhausted.
	ErrNotFound = errors.New("installation not found")
	// errNotDirectory is returned when an explicit override is not a directory.
	errNotDirectory = errors.New("not a directory")
)

// Strategy is one way of discovering the installation root.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Locate returns the absolute installation root, or "" when this
	// strategy finds nothing. An error is tier-local and makes the chain
	// move on to the next strategy.
	Locate(ctx context.Context) (string, error)
}

// Chain tries strategies in their fixed order and stops at the first hit.
type Chain struct {
	strategies []Strategy
}

// NewChain returns a chain over the provided strategies.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Locate runs the strategies in order. A strategy failure is demoted to a
// debug message and treated as "no result from this tier"; the chain always
// proceeds. ErrNotFound is returned once every tier is exhausted.
func (c *Chain) Locate(ctx context.Context) (string, error) {
	for _, strategy := range c.strategies {
		path, err := strategy.Locate(ctx)
		if err != nil {
			logger.DebugKV(ctx, "Discovery strategy failed",
				"strategy", strategy.Name(), "error", err)

			continue
		}

		if path == "" {
			logger.DebugKV(ctx, "Discovery strategy found nothing",
				"strategy", strategy.Name())

			continue
		}

		logger.InfoKV(ctx, "Located installation",
			"strategy", strategy.Name(), "path", path)

		return path, nil
	}

	return "", ErrNotFound
}

// Static short-circuits discovery with an explicitly configured root.
type Static struct {
	// Path is the explicit installation root.
	Path string
}

// Name implements Strategy.
func (s *Static) Name() string {
	return "explicit path"
}

// Locate verifies the configured path is an existing directory and returns it.
func (s *Static) Locate(_ context.Context) (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", err
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", s.Path, errNotDirectory)
	}

	return s.Path, nil
}

// hasMarker reports whether the product executable exists under the
// candidate root's IDE directory.
func hasMarker(root string, exists func(string) bool) bool {
	return exists(filepath.Join(root, "Common7", "IDE", markerExecutable))
}

// fileExists is the default existence probe used by the strategies.
func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
