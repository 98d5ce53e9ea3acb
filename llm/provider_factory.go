package llm

import (
	"context"
	"fmt"
	"strings"
)

// backend is one LLM service the composer can write grammars with.
type backend struct {
	name        string
	modelPrefix string
	keyEnv      string
	build       func(ctx context.Context, apiKey string) (Provider, error)
}

// backends are tried in order when a model name is matched; the first one is the
// fallback for models no prefix claims.
var backends = []backend{
	{
		name:        providerNameOpenAI,
		modelPrefix: "gpt-",
		keyEnv:      "OPENAI_API_KEY",
		build: func(_ context.Context, apiKey string) (Provider, error) {
			return NewOpenAIProvider(apiKey), nil
		},
	},
	{
		name:        providerNameGemini,
		modelPrefix: "gemini-",
		keyEnv:      "GEMINI_API_KEY",
		build: func(ctx context.Context, apiKey string) (Provider, error) {
			p, err := NewGeminiProvider(ctx, apiKey)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	},
}

// ProviderFactory picks the service that writes BP3 grammars, from an explicit
// provider name or from the model name
type ProviderFactory struct {
	apiKeys map[string]string
}

// NewProviderFactory creates a factory holding the API key of each service
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{apiKeys: map[string]string{
		providerNameOpenAI: openaiAPIKey,
		providerNameGemini: geminiAPIKey,
	}}
}

// GetProvider returns the provider for model. A non-empty providerName wins over
// the model prefix; models no prefix claims go to OpenAI.
func (f *ProviderFactory) GetProvider(ctx context.Context, model, providerName string) (Provider, error) {
	if providerName != "" {
		name := strings.ToLower(providerName)
		for _, b := range backends {
			if b.name == name {
				return f.build(ctx, b)
			}
		}
		return nil, fmt.Errorf("unknown composer provider %q (allowed: %s)", providerName, allowedProviders())
	}

	modelLower := strings.ToLower(model)
	for _, b := range backends {
		if strings.HasPrefix(modelLower, b.modelPrefix) {
			return f.build(ctx, b)
		}
	}
	return f.build(ctx, backends[0])
}

func (f *ProviderFactory) build(ctx context.Context, b backend) (Provider, error) {
	key := f.apiKeys[b.name]
	if key == "" {
		return nil, fmt.Errorf("%s API key not configured (set %s)", b.name, b.keyEnv)
	}
	return b.build(ctx, key)
}

func allowedProviders() string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.name
	}
	return strings.Join(names, ", ")
}
