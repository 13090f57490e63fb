package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docembed/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, storage backend and chunking.

Secrets are never stored in the config file; set them in the environment or
a .env file instead.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting in the config file.

Run 'docembed settings keys' to list the available keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the embedding provider and storage are reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Endpoint: %s\n", settings.Embedding.Endpoint)
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  API Key: %s\n", secretStatus(settings.Embedding.APIKey))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	if settings.Storage.Backend.RequiresURL() {
		url := settings.Storage.URL
		if settings.Storage.Backend == domain.StorageBackendPostgres && url != "" {
			url = maskAPIKey(url)
		}
		if url == "" {
			url = "(not set)"
		}
		cmd.Printf("  URL: %s\n", url)
	}
	if settings.Storage.Backend == domain.StorageBackendSupabase {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.Storage.APIKey))
	}
	if settings.Storage.Backend == domain.StorageBackendSQLite {
		cmd.Printf("  Data Dir: %s\n", settings.Storage.DataDir)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Printf("  Trim Each Chunk: %t\n", settings.Chunking.TrimEachChunk)
	cmd.Printf("  Embed Delay: %s\n", settings.Chunking.EmbedDelay)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Address)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var failed bool

	if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
		failed = true
		cmd.Printf("Embedding: %s\n", styles.Error.Render(err.Error()))
	} else {
		cmd.Printf("Embedding: %s\n", styles.Success.Render("ok"))
	}

	switch {
	case ingestService == nil:
		failed = true
		cmd.Printf("Storage: %s\n", styles.Error.Render(requireIngest().Error()))
	default:
		if err := ingestService.CheckStorage(cmd.Context()); err != nil {
			failed = true
			cmd.Printf("Storage: %s\n", styles.Error.Render(err.Error()))
		} else {
			cmd.Printf("Storage: %s\n", styles.Success.Render("ok"))
		}
	}

	if failed {
		return errors.New("configuration check failed")
	}
	return nil
}

func secretStatus(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskAPIKey(secret)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
