// Package storage selects a driven.DocumentStore implementation from settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docembed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docembed/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docembed/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docembed/internal/adapters/driven/storage/supabase"
	"github.com/custodia-labs/docembed/internal/core/domain"
	"github.com/custodia-labs/docembed/internal/core/ports/driven"
)

// Open creates the document store named by settings.Backend.
func Open(ctx context.Context, settings domain.StorageSettings) (driven.DocumentStore, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: storage backend %q is not fully configured",
			domain.ErrStorageUnavailable, settings.Backend)
	}

	switch settings.Backend {
	case domain.StorageBackendSupabase:
		return supabase.NewStore(supabase.Config{URL: settings.URL, APIKey: settings.APIKey})

	case domain.StorageBackendPostgres:
		return postgres.NewStore(ctx, postgres.Config{DSN: settings.URL, EnsureSchema: true})

	case domain.StorageBackendSQLite:
		return sqlite.NewStore(settings.DataDir)

	case domain.StorageBackendMemory:
		return memory.NewDocumentStore(), nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrStorageUnavailable, settings.Backend)
	}
}
