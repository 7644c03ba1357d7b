package services

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docqa/config"
)

// NewEmbedder builds the text embedder for the configured provider. Indexing
// and querying must go through the same embedder; mixing models of different
// dimensions against one collection is a fatal configuration mistake the
// vector store will reject, not something handled here.
func NewEmbedder(cfg *config.Config) (*embeddings.EmbedderImpl, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("initializing openai embedding client: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaURL),
			ollama.WithModel(cfg.EmbeddingModel),
		)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama embedding client: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown embedding provider %q", cfg.EmbeddingProvider)}
	}
}
