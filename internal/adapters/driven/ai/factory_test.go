package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
		wantModel   string
		wantDims    int
	}{
		{
			name:        "nil settings returns error",
			settings:    nil,
			wantErr:     true,
			errContains: "required",
		},
		{
			name:      "hashing provider creates service",
			settings:  &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing, Dimensions: 128},
			wantModel: "hashing-unigram-bigram",
			wantDims:  128,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
			wantDims:  768,
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.EmbeddingProviderOpenAI,
				APIKey:     "test-key",
				Model:      "text-embedding-3-small",
				Dimensions: 384,
			},
			wantModel: "text-embedding-3-small",
			wantDims:  384,
		},
		{
			name:        "openai without key returns error",
			settings:    &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI},
			wantErr:     true,
			errContains: "API key",
		},
		{
			name:        "unknown provider returns error",
			settings:    &domain.EmbeddingSettings{Provider: "anthropic"},
			wantErr:     true,
			errContains: "unsupported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("hashing always validates", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(context.Background(),
			&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("unreachable provider wraps ErrEmbedding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  srv.URL,
		})
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})

	t.Run("invalid settings wrap ErrEmbedding", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(context.Background(),
			&domain.EmbeddingSettings{Provider: "nope"})
		assert.ErrorIs(t, err, domain.ErrEmbedding)
	})
}
