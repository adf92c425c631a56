package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ssms-extension-updater/internal/config"
	"github.com/oshokin/ssms-extension-updater/internal/service/installer"
	"github.com/oshokin/ssms-extension-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// channelURL overrides the release channel manifest URL.
	channelURL string
	// targetVersion is the major product version to install components for.
	targetVersion string
	// releaseChannel selects the vendor channel.
	releaseChannel string
	// downloadDir is where payload archives are placed.
	downloadDir string
	// extractionDir is the root the archives are extracted into.
	extractionDir string
	// installDir is an explicit installation root that skips discovery.
	installDir string
	// checkOnly lists the matching components without installing anything.
	checkOnly bool
	// keepDownloads leaves the fetched archives on disk after the run.
	keepDownloads bool
	// verbose lowers the log level to debug.
	verbose bool

	// rootCmd represents the base command for installing extension updates.
	rootCmd = &cobra.Command{
		Use:   "ssms-extension-updater",
		Short: "Download and install SQL Server Management Studio extension updates.",
		Long: `Installs the latest extension components into a SQL Server Management Studio installation.

Resolves the vendor's channel manifest for the selected version and release channel,
filters the component catalog to the configured extension packages, downloads and
extracts their payload archives and merges the extracted trees into the discovered
installation directory. The installation is located through the Visual Studio setup
query tool, the registry and the conventional Program Files paths, in that order.

Run elevated: merging writes into the installation directory and discovery reads
machine-wide registry keys. Use --check to preview the matching components without
touching the installation.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				ConfigPath:     configPath,
				ChannelURL:     channelURL,
				TargetVersion:  targetVersion,
				ReleaseChannel: releaseChannel,
				DownloadDir:    downloadDir,
				ExtractionDir:  extractionDir,
				InstallDir:     installDir,
				CheckOnly:      checkOnly,
				KeepDownloads:  keepDownloads,
				Verbose:        verbose,
			}

			return installer.Run(ctx, options)
		},
	}
)

// Execute runs the ssms-extension-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&channelURL, "channel-url", "", "explicit channel manifest URL")
	rootCmd.Flags().
		StringVarP(&targetVersion, "target-version", "t", "", "major product version to target (21 or 22)")
	rootCmd.Flags().StringVar(&releaseChannel, "channel", "", "vendor release channel (release or preview)")
	rootCmd.Flags().StringVar(&downloadDir, "download-dir", "", "directory for downloaded payload archives")
	rootCmd.Flags().StringVar(&extractionDir, "extraction-dir", "", "directory the archives are extracted into")
	rootCmd.Flags().StringVar(&installDir, "install-dir", "", "installation directory, skips discovery")
	rootCmd.Flags().BoolVar(&checkOnly, "check", false, "list matching components without installing")
	rootCmd.Flags().BoolVar(&keepDownloads, "keep-downloads", false, "keep downloaded archives after the run")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
