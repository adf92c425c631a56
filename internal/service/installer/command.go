package installer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/ssms-extension-updater/internal/config"
	"github.com/oshokin/ssms-extension-updater/internal/domain/install"
	"github.com/oshokin/ssms-extension-updater/internal/download"
	"github.com/oshokin/ssms-extension-updater/internal/locator"
	"github.com/oshokin/ssms-extension-updater/internal/logger"
	"github.com/oshokin/ssms-extension-updater/internal/manifest"
	"github.com/oshokin/ssms-extension-updater/internal/merge"
	"github.com/oshokin/ssms-extension-updater/internal/repository/report"
	"github.com/oshokin/ssms-extension-updater/internal/service/common"
	"github.com/oshokin/ssms-extension-updater/internal/service/elevation"
	"github.com/oshokin/ssms-extension-updater/internal/service/process"
	"github.com/oshokin/ssms-extension-updater/internal/vsix"
)

var errInstallerAlreadyRunning = errors.New("the updater is already running")

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// ChannelURL overrides the release channel manifest URL.
	ChannelURL string
	// TargetVersion overrides the major product version ("21" or "22").
	TargetVersion string
	// ReleaseChannel overrides the vendor channel ("release" or "preview").
	ReleaseChannel string
	// DownloadDir overrides where payload archives are placed.
	DownloadDir string
	// ExtractionDir overrides the root the archives are extracted into.
	ExtractionDir string
	// InstallDir is an explicit installation root; discovery is skipped when set.
	InstallDir string
	// CheckOnly lists the matching components without installing anything.
	CheckOnly bool
	// KeepDownloads leaves the fetched archives on disk after the run.
	KeepDownloads bool
	// Verbose lowers the log level to debug.
	Verbose bool
}

// runner holds the mutable state and helpers for a single update execution.
// It is intentionally unexported, callers go through Run(ctx, Options).
type runner struct {
	cfg       *config.Config     // Settings loaded from YAML with CLI overrides applied.
	opts      *Options           // CLI inputs for this run.
	manifests *manifest.Client   // Fetches the channel and catalog manifests.
	fetcher   *download.Fetcher  // Downloads the selected payloads.
	reports   report.Repository  // Persists the run report.
	report    *install.RunReport // Outcome counts collected across the stages.
	archives  []string           // Destination paths of the fetched payloads.
	hasMarker bool               // Whether this run owns the concurrent-run marker.
}

// Run executes the update pipeline and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, baseUpdaterExecutable)

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.cleanup(ctx)

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Update run completed")

	return nil
}

// newRunner loads the settings and writes a marker to avoid concurrent runs.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	r := &runner{opts: opts}

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return r, err
	}

	applyOverrides(settings, opts)

	if err = config.Validate(settings); err != nil {
		return r, err
	}

	r.cfg = settings
	r.applyLogLevel(ctx)

	if IsInstallerRunningNow(ctx) {
		return r, errInstallerAlreadyRunning
	}

	updateMarker, err := os.Create(markerPath())
	if err != nil {
		return r, err
	}

	if err = updateMarker.Close(); err != nil {
		return r, err
	}

	r.hasMarker = true

	httpClient := &http.Client{Timeout: settings.Timeout}
	r.manifests = manifest.NewClient(httpClient)
	r.fetcher = download.NewFetcher(httpClient, settings.MaxParallel)
	r.reports = report.NewFileRepository(settings.ReportFile)
	r.report = &install.RunReport{
		StartedAt:      time.Now(),
		TargetVersion:  settings.TargetVersion,
		ReleaseChannel: settings.ReleaseChannel,
		ExtractionPath: settings.ExtractionDir,
	}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	} else {
		r.report.Actor = actor
	}

	return r, nil
}

// applyLogLevel raises or lowers the log level from the settings; the
// verbose flag always wins.
func (r *runner) applyLogLevel(ctx context.Context) {
	if r.opts.Verbose {
		logger.SetLevel(zapcore.DebugLevel)
		return
	}

	if r.cfg.LogLevel == "" {
		return
	}

	level, ok := logger.ParseLogLevel(r.cfg.LogLevel)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level in settings, keeping the default",
			"log_level", r.cfg.LogLevel)

		return
	}

	logger.SetLevel(level)
}

// applyOverrides copies the non-empty CLI inputs over the loaded settings.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.ChannelURL != "" {
		settings.ChannelURL = opts.ChannelURL
	}

	if opts.TargetVersion != "" {
		settings.TargetVersion = opts.TargetVersion
	}

	if opts.ReleaseChannel != "" {
		settings.ReleaseChannel = opts.ReleaseChannel
	}

	if opts.DownloadDir != "" {
		settings.DownloadDir = opts.DownloadDir
	}

	if opts.ExtractionDir != "" {
		settings.ExtractionDir = opts.ExtractionDir
	}

	if opts.InstallDir != "" {
		settings.InstallDir = opts.InstallDir
	}
}

// run executes the batch pipeline for this runner instance:
// 1) Stop conflicting product processes.
// 2) Resolve the channel and catalog manifests.
// 3) Filter the catalog to the configured components.
// 4) Download the selected payloads.
// 5) Extract the archives while discovering the installation root.
// 6) Merge the extracted trees into the installation.
// 7) Log the summary and persist the run report.
func (r *runner) run(ctx context.Context) error {
	r.prepare(ctx)

	targets, err := r.resolveTargets(ctx)
	if err != nil {
		return err
	}

	if r.opts.CheckOnly {
		r.listTargets(ctx, targets)
		return nil
	}

	if err = r.downloadPayloads(ctx, targets); err != nil {
		return err
	}

	installPath, err := r.extractAndLocate(ctx)
	if err != nil {
		return err
	}

	if err = r.mergeComponents(ctx, installPath); err != nil {
		return err
	}

	r.finalize(ctx)

	return nil
}

// prepare warns about missing elevation and stops the product's processes.
// Both steps are best effort.
func (r *runner) prepare(ctx context.Context) {
	if !elevation.IsElevated() {
		logger.Warn(ctx, "Process is not elevated, registry reads and installation writes may fail")
	}

	stopped, err := process.StopByName(ctx, ssmsProcessName)
	if err != nil {
		logger.WarnKV(ctx, "Unable to enumerate processes", "error", err)
		return
	}

	if stopped > 0 {
		logger.InfoKV(ctx, "Stopped running product processes", "count", stopped)
	}
}

// resolveTargets fetches the channel and catalog manifests and filters the
// catalog down to the configured components. Manifest failures are fatal;
// zero matches is a valid, empty result.
func (r *runner) resolveTargets(ctx context.Context) ([]manifest.DownloadTarget, error) {
	channelURL := r.cfg.ChannelURL
	if channelURL == "" {
		channelURL = manifest.ChannelURL(r.cfg.TargetVersion, r.cfg.ReleaseChannel)
	}

	logger.InfoKV(ctx, "Fetching channel manifest", "url", channelURL)

	channel, err := r.manifests.FetchChannel(ctx, channelURL)
	if err != nil {
		return nil, err
	}

	catalogURL, err := channel.CatalogURL()
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Fetching catalog manifest", "url", catalogURL)

	catalog, err := r.manifests.FetchCatalog(ctx, catalogURL)
	if err != nil {
		return nil, err
	}

	targets := manifest.SelectDownloadTargets(catalog, r.cfg.ComponentIDs)

	logger.InfoKV(ctx, "Selected components to download", "count", len(targets))

	return targets, nil
}

// listTargets prints what a full run would download.
func (r *runner) listTargets(ctx context.Context, targets []manifest.DownloadTarget) {
	if len(targets) == 0 {
		logger.Info(ctx, "No matching components are available")
		return
	}

	for i := range targets {
		target := &targets[i]

		logger.InfoKV(ctx, "Component available",
			"id", target.PackageID, "file", target.FileName(), "url", target.Payload.URL)
	}
}

// downloadPayloads fetches every selected payload into the download
// directory and records the stage counts.
func (r *runner) downloadPayloads(ctx context.Context, targets []manifest.DownloadTarget) error {
	for i := range targets {
		r.archives = append(r.archives, filepath.Join(r.cfg.DownloadDir, targets[i].FileName()))
	}

	counts, err := r.fetcher.FetchAll(ctx, targets, r.cfg.DownloadDir)
	if err != nil {
		return fmt.Errorf("download payloads: %w", err)
	}

	r.report.Downloads = counts

	return nil
}

// extractAndLocate runs archive extraction and installation discovery
// concurrently. Discovery only reads the machine and extraction only writes
// its own tree, so the two never contend.
func (r *runner) extractAndLocate(ctx context.Context) (string, error) {
	var (
		extractions install.StageCount
		installPath string
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		found, succeeded, err := vsix.ExtractAll(groupCtx,
			r.cfg.DownloadDir, r.cfg.ExtractionDir, r.cfg.MaxParallel)
		if err != nil {
			return fmt.Errorf("extract archives: %w", err)
		}

		extractions = install.StageCount{Found: found, Attempted: found, Succeeded: succeeded}

		return nil
	})

	group.Go(func() error {
		path, err := r.locateInstallation(groupCtx)
		if err != nil {
			return err
		}

		installPath = path

		return nil
	})

	if err := group.Wait(); err != nil {
		return "", err
	}

	r.report.Extractions = extractions
	r.report.InstallLocated = installPath != ""
	r.report.InstallPath = installPath

	return installPath, nil
}

// locateInstallation returns the installation root, or "" when discovery is
// exhausted. An explicitly configured root skips discovery and must exist.
func (r *runner) locateInstallation(ctx context.Context) (string, error) {
	if r.cfg.InstallDir != "" {
		path, err := (&locator.Static{Path: r.cfg.InstallDir}).Locate(ctx)
		if err != nil {
			return "", fmt.Errorf("explicit installation directory: %w", err)
		}

		return path, nil
	}

	chain := locator.NewChain(
		&locator.SetupQuery{VersionToken: r.cfg.TargetVersion},
		&locator.RegistryScan{},
		&locator.WellKnownPaths{Probe: locator.ProgramFilesProbe{TargetVersion: r.cfg.TargetVersion}},
	)

	path, err := chain.Locate(ctx)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			return "", nil
		}

		return "", err
	}

	return path, nil
}

// mergeComponents copies the extracted trees into the installation root,
// or reports the merge as skipped when no installation was located.
func (r *runner) mergeComponents(ctx context.Context, installPath string) error {
	if installPath == "" {
		r.report.MergeSkipped = true

		logger.WarnKV(ctx, "Installation not located, components were not merged",
			"extracted", r.cfg.ExtractionDir)

		return nil
	}

	counts, err := merge.MergeAll(ctx, r.cfg.ExtractionDir, installPath)
	if err != nil {
		return fmt.Errorf("merge components: %w", err)
	}

	r.report.Merges = counts

	return nil
}

// finalize stamps the report, logs its summary and persists it best effort.
func (r *runner) finalize(ctx context.Context) {
	r.report.FinishedAt = time.Now()

	logger.Info(ctx, r.report.Summary())

	if err := r.reports.Save(ctx, r.report); err != nil {
		logger.WarnKV(ctx, "Unable to persist run report",
			"path", r.cfg.ReportFile, "error", err)
	}
}

// cleanup removes the fetched archives and the running marker.
func (r *runner) cleanup(ctx context.Context) {
	if r.hasMarker {
		if _, err := os.Stat(markerPath()); err == nil {
			_ = os.Remove(markerPath())
		}
	}

	if len(r.archives) > 0 {
		if r.opts.KeepDownloads {
			logger.InfoKV(ctx, "Keeping downloaded archives", "directory", r.cfg.DownloadDir)
		} else {
			for _, archive := range r.archives {
				if _, err := os.Stat(archive); err == nil {
					_ = os.Remove(archive)
				}
			}
		}
	}

	logger.Info(ctx, "The updater has been stopped")
}
