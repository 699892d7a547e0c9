package provider

import (
	"context"
	"errors"

	"github.com/commercekit/shopchat/config"
	"github.com/commercekit/shopchat/models"
	openai_provider "github.com/commercekit/shopchat/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface the orchestrator uses for query classification
// and translation. Exactly one classification call is made per request; a
// response that fails to parse is a hard failure, never a partial result.
type Provider interface {
	Classify(ctx context.Context, query string, history []models.Exchange) (models.ClassificationResult, error)
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return openai_provider.NewClient(cfg), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
