package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name:     "ollama needs no key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
		},
		{
			name:     "openai with key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-test"},
		},
		{
			name:     "openai without key is unconfigured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small"},
			wantNil:  true,
		},
		{
			name:     "anthropic has no embeddings",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-test"},
			wantErr:  true,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "mystery", APIKey: "k"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				require.NotNil(t, svc)
				defer svc.Close()
				assert.Greater(t, svc.Dimensions(), 0)
			}
		})
	}
}

func TestCreateEmbeddingServiceKnowsModelDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "mxbai-embed-large",
	})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, 1024, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
		model    string
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "ollama",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"},
			model:    "llama3.2",
		},
		{
			name:     "anthropic",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, Model: "claude-3-5-sonnet-latest", APIKey: "sk-test"},
			model:    "claude-3-5-sonnet-latest",
		},
		{
			name:     "openai",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk-test"},
			model:    "gpt-4o-mini",
		},
		{
			name:     "unknown provider",
			settings: &domain.LLMSettings{Provider: "mystery", APIKey: "k"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}
