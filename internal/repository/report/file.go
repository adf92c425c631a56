package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/ssms-extension-updater/internal/config"
	"github.com/oshokin/ssms-extension-updater/internal/domain/install"
)

// Repository defines persistence operations for the run report.
type Repository interface {
	Load(ctx context.Context) (*install.RunReport, error)
	Save(ctx context.Context, report *install.RunReport) error
}

// FileRepository persists the run report to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// defaultDirPermissions is used when creating the report file's directory.
const defaultDirPermissions os.FileMode = 0o755

// ErrNotFound is returned when the report file does not exist yet.
var ErrNotFound = errors.New("report not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the report from disk.
func (r *FileRepository) Load(_ context.Context) (*install.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var report install.RunReport
	if err = json.Unmarshal(contents, &report); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return &report, nil
}

// Save writes the report to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, report *install.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), defaultDirPermissions); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}
