// Package cli provides the digest command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/persona-digest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
	"github.com/custodia-labs/persona-digest/internal/core/services"
	"github.com/custodia-labs/persona-digest/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services used by commands. Tests replace them with fakes.
var (
	settingsService   driving.SettingsService
	personaClassifier driving.PersonaClassifier = services.NewPersonaClassifier()
	newDigestService                            = buildDigestService
)

var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Persona-driven document digests",
	Long: `digest answers a manifest of queries against a folder of documents.

Each document is split into sentence-aligned passages which are matched to
every query by embedding similarity. The best answers across all documents
are ranked into a single digest for the persona behind the queries.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"configuration directory (default ~/"+configfile.DefaultDirName+")")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if settingsService != nil {
		return nil
	}

	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open configuration: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// loadSettings returns validated settings.
func loadSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	if err := settingsService.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settingsService.Get()
}
