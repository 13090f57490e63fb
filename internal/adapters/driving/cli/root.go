// Package cli provides the docembed command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docembed/internal/core/ports/driving"
	"github.com/custodia-labs/docembed/internal/logger"
)

var (
	version = "dev"
	verbose bool
)

// Services used by the commands. Injected by main before Execute.
var (
	ingestService   driving.IngestService
	settingsService driving.SettingsService

	// ingestErr explains why ingestService is nil.
	ingestErr error
)

var rootCmd = &cobra.Command{
	Use:   "docembed",
	Short: "Chunk, embed and store documents",
	Long: `docembed splits a document into overlapping chunks, requests one embedding
per chunk from a remote provider and stores the document with its vectors.

Secrets are read from the environment or a .env file:
  DOCEMBED_EMBEDDING_API_KEY   embedding provider key
  DOCEMBED_STORAGE_URL         Supabase project URL or PostgreSQL DSN
  DOCEMBED_STORAGE_API_KEY     Supabase key
  DOCEMBED_CONFIG_DIR          config directory (default ~/.docembed)`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output to stderr")
}

// Services groups the core services the commands depend on.
type Services struct {
	// Ingest runs the chunk, embed and persist pipeline. May be nil.
	Ingest driving.IngestService

	// Settings reads and writes configuration.
	Settings driving.SettingsService

	// IngestErr is reported by commands that need Ingest when it is nil.
	IngestErr error
}

// SetServices injects the core services.
func SetServices(s Services) {
	ingestService = s.Ingest
	settingsService = s.Settings
	ingestErr = s.IngestErr
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	return rootCmd.Execute()
}

func requireIngest() error {
	if ingestService != nil {
		return nil
	}
	if ingestErr != nil {
		return fmt.Errorf("ingestion unavailable: %w", ingestErr)
	}
	return errors.New("ingest service not configured")
}
