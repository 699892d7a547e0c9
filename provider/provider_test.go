package provider

import (
	"testing"

	"github.com/commercekit/shopchat/config"
)

func TestNewProvider(t *testing.T) {
	llm, err := NewProvider(OpenAI, config.LLMConfig{APIKey: "k", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewProvider(openai): %v", err)
	}
	if llm == nil {
		t.Fatalf("expected a provider")
	}

	if _, err := NewProvider(OpenAI, config.LLMConfig{Model: "gpt-4o-mini"}); err == nil {
		t.Fatalf("missing api key must be rejected")
	}
	if _, err := NewProvider(Anthropic, config.LLMConfig{APIKey: "k"}); err == nil {
		t.Fatalf("anthropic is not implemented and must error")
	}
	if _, err := NewProvider(Client("cohere"), config.LLMConfig{APIKey: "k"}); err == nil {
		t.Fatalf("unknown provider kind must error")
	}
}

func TestNewProviderFromConfigKind(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}
	if _, err := NewProvider(Client(cfg.Provider), cfg); err != nil {
		t.Fatalf("provider kind from config: %v", err)
	}
}
