package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for one updater run.
type Config struct {
	// ChannelURL is an explicit release channel manifest URL.
	// When empty, the URL is derived from TargetVersion and ReleaseChannel.
	ChannelURL string `yaml:"channel_url"`
	// TargetVersion is the major product version to install components for ("21" or "22").
	TargetVersion string `yaml:"target_version"`
	// ReleaseChannel selects the vendor channel ("release" or "preview").
	ReleaseChannel string `yaml:"release_channel"`
	// ComponentIDs is the allow-list of package identifiers to install.
	ComponentIDs []string `yaml:"component_ids"`
	// DownloadDir is where payload archives are placed.
	DownloadDir string `yaml:"download_dir"`
	// ExtractionDir is the root the archives are extracted into.
	ExtractionDir string `yaml:"extraction_dir"`
	// InstallDir is an explicit installation root. When set, discovery is skipped.
	InstallDir string `yaml:"install_dir"`
	// ReportFile is the path to the JSON file storing the last run report.
	ReportFile string `yaml:"report_file"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	// Empty keeps the built-in default.
	LogLevel string `yaml:"log_level"`
	// Timeout is the duration for network operations.
	Timeout time.Duration `yaml:"timeout"`
	// MaxParallel bounds concurrent downloads and extractions.
	MaxParallel int `yaml:"max_parallel"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "ssms-extension-updater-settings.yaml"

	// DefaultReportFilename is the default filename for the last run report JSON.
	DefaultReportFilename = "last-run.json"

	// DefaultTargetVersion is the major product version targeted when none is configured.
	DefaultTargetVersion = "21"

	// DefaultReleaseChannel is the vendor channel used when none is configured.
	DefaultReleaseChannel = "release"

	// DefaultTimeout is the default duration for network operations.
	// Manifest and payload hosts are occasionally slow, so it is generous.
	DefaultTimeout = 100 * time.Second

	// DefaultMaxParallel is the default bound on concurrent downloads and extractions.
	DefaultMaxParallel = 4

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// workDirName is the directory under the system temp dir holding
	// downloads, extracted trees and the run report by default.
	workDirName = "ssms-extension-updater"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnsupportedVersion is returned when the target version is not a known major version.
	errUnsupportedVersion = errors.New(`target version must be "21" or "22"`)
	// errUnknownChannel is returned when the release channel selector is not recognized.
	errUnknownChannel = errors.New(`release channel must be "release" or "preview"`)
)

// DefaultComponentIDs returns the package identifiers installed when the
// allow-list is not configured.
func DefaultComponentIDs() []string {
	return []string{
		"Microsoft.SSMS.Copilot",
		"Microsoft.SSMS.Copilot.Resources",
	}
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	cfg := new(Config)
	if err := Validate(cfg); err != nil {
		// Validation of the zero config only assigns defaults.
		panic(err)
	}

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
// When the path is empty or names the default settings file and that file
// does not exist, the default configuration is returned, so a config file
// is optional.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// assigning defaults for everything left unset.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.TargetVersion == "" {
		cfg.TargetVersion = DefaultTargetVersion
	}

	if cfg.TargetVersion != "21" && cfg.TargetVersion != "22" {
		return errUnsupportedVersion
	}

	if cfg.ReleaseChannel == "" {
		cfg.ReleaseChannel = DefaultReleaseChannel
	}

	if cfg.ReleaseChannel != "release" && cfg.ReleaseChannel != "preview" {
		return errUnknownChannel
	}

	if cfg.ChannelURL != "" {
		if _, err := url.ParseRequestURI(cfg.ChannelURL); err != nil {
			return fmt.Errorf("invalid channel URL: %w", err)
		}
	}

	if len(cfg.ComponentIDs) == 0 {
		cfg.ComponentIDs = DefaultComponentIDs()
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}

	workDir := filepath.Join(os.TempDir(), workDirName)

	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(workDir, "downloads")
	}

	if cfg.ExtractionDir == "" {
		cfg.ExtractionDir = filepath.Join(workDir, "extracted")
	}

	if cfg.ReportFile == "" {
		cfg.ReportFile = filepath.Join(workDir, DefaultReportFilename)
	}

	return nil
}
