// Command docembed chunks documents, embeds each chunk and stores the vectors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docembed/internal/adapters/driven/ai"
	"github.com/custodia-labs/docembed/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docembed/internal/adapters/driven/storage"
	"github.com/custodia-labs/docembed/internal/adapters/driving/cli"
	"github.com/custodia-labs/docembed/internal/core/services"
	"github.com/custodia-labs/docembed/internal/logger"
	"github.com/custodia-labs/docembed/internal/normalisers"
	"github.com/custodia-labs/docembed/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envConfigDir overrides the config directory.
const envConfigDir = "DOCEMBED_CONFIG_DIR"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	configStore, err := file.NewConfigStore(os.Getenv(envConfigDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open config: %v\n", err)
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read settings: %v\n", err)
		return err
	}

	svc := cli.Services{Settings: settingsService}

	store, err := storage.Open(context.Background(), settings.Storage)
	if err != nil {
		logger.Warn("storage unavailable: %v", err)
		svc.IngestErr = err
	} else {
		defer store.Close()
		svc.Ingest = services.NewIngestService(
			settings.Embedding,
			settings.Chunking,
			ai.NewFactory(),
			store,
			postprocessors.NewDefaultRegistry(),
			normalisers.NewDefaultRegistry(),
		)
	}

	cli.SetServices(svc)
	cli.SetVersion(version)
	return cli.Execute()
}
