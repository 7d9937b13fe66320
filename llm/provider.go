package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/nestkeeper/nestkeeper/types"
)

// Provider defines the interface for the enrichment collaborator: an
// AI-assisted generator that proposes maintenance-task candidates for a
// catalog entry.
type Provider interface {
	// SuggestTemplates takes a system prompt and a catalog entry and
	// asks the collaborator for 1-8 candidate task definitions. The
	// response is raw text expected, but not guaranteed, to contain a
	// JSON array; the engine extracts and validates it. Implementations
	// must respect ctx and their configured timeout.
	SuggestTemplates(ctx context.Context, systemPrompt string, req types.EnrichmentRequest) (string, error)
}

// NewProvider builds a Provider from configuration. Only OpenAI is
// currently supported.
func NewProvider(cfg types.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is not set")
		}
		timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
		return NewOpenAIProvider(cfg.APIKey, cfg.ModelName, timeout, cfg.Debug), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
