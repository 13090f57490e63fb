package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docembed/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docembed/internal/adapters/driven/embedding/phaya"
	"github.com/custodia-labs/docembed/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  error
		wantType any
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantErr:  domain.ErrEmbeddingUnavailable,
		},
		{
			name:     "missing key",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderPhaya},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "cohere", APIKey: "k"},
			wantErr:  domain.ErrEmbeddingUnavailable,
		},
		{
			name:     "phaya provider",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderPhaya, APIKey: "k"},
			wantType: &phaya.EmbeddingService{},
		},
		{
			name:     "openai provider",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI, APIKey: "k", Model: "m"},
			wantType: &openai.EmbeddingService{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestFactory_CreateEmbeddingService_CopiesSettings(t *testing.T) {
	settings := domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOpenAI,
		APIKey:   "k",
		Model:    "text-embedding-3-large",
	}

	svc, err := NewFactory().CreateEmbeddingService(settings)
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", svc.ModelName())
}
