package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docembed/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for the browser UI",
	Long: `Start the HTTP API used by the browser UI.

Endpoints:
  GET  /api/health    storage connectivity
  POST /api/preview   chunk count for pasted text
  POST /api/ingest    chunk, embed and store text or an uploaded file

Requests may pass their own embedding key as "Authorization: Bearer <key>";
otherwise the key from the environment is used.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireIngest(); err != nil {
		return err
	}

	addr := serveAddr
	var opts []httpapi.Option
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if addr == "" {
			addr = settings.Server.Address
		}
		if settings.Embedding.APIKey != "" {
			opts = append(opts, httpapi.WithAPIKey(settings.Embedding.APIKey))
		}
	}
	if addr == "" {
		return errors.New("no listen address: pass --addr or set server.address")
	}

	server, err := httpapi.NewServer(&httpapi.Ports{Ingest: ingestService}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Listening on %s\n", addr)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	cmd.Println("Server stopped")
	return nil
}
