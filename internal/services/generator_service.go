package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"aidocs/internal/llm/client"
	"aidocs/internal/models"
)

// MockLLMProfile selects the deterministic generator.
const MockLLMProfile = "mock"

// Generator produces section content for one run in a single call.
type Generator interface {
	GenerateSections(ctx context.Context, req models.GenerationRequest) (*models.GenerationBatch, error)
}

// GeneratorResolver picks a Generator for a provider.llmProfile value.
type GeneratorResolver interface {
	Generator(ctx context.Context, llmProfile string) (Generator, error)
}

type fixedGeneratorResolver struct {
	g Generator
}

// FixedGenerator resolves every llm profile to g.
func FixedGenerator(g Generator) GeneratorResolver {
	return fixedGeneratorResolver{g: g}
}

func (r fixedGeneratorResolver) Generator(context.Context, string) (Generator, error) {
	return r.g, nil
}

// APIKeySource returns the key for a catalog provider id.
type APIKeySource interface {
	GetApiKey(provider string) (string, error)
}

// ChatClientFactory builds an LLM client; client.New in production.
type ChatClientFactory func(ctx context.Context, provider, key, modelName string, opts ...client.Option) (*client.LLMClient, error)

type generatorResolver struct {
	models  ModelConfigService
	keys    APIKeySource
	factory ChatClientFactory
	log     zerolog.Logger
}

// NewGeneratorResolver maps "mock" to the mock generator and any other value
// to an enabled catalog model.
func NewGeneratorResolver(catalog ModelConfigService, keys APIKeySource, factory ChatClientFactory, log zerolog.Logger) GeneratorResolver {
	if factory == nil {
		factory = client.New
	}
	return &generatorResolver{models: catalog, keys: keys, factory: factory, log: log}
}

func (r *generatorResolver) Generator(ctx context.Context, llmProfile string) (Generator, error) {
	if llmProfile == "" || llmProfile == MockLLMProfile {
		return client.NewMockGenerator(), nil
	}
	if r.models == nil {
		return nil, fmt.Errorf("llm profile %s: %w", llmProfile, ErrModelNotFound)
	}
	mdl, err := r.models.GetModel(llmProfile)
	if err != nil {
		return nil, err
	}
	if !mdl.Enabled {
		return nil, fmt.Errorf("%s: %w", mdl.Key, ErrModelDisabled)
	}
	if r.keys == nil {
		return nil, fmt.Errorf("%s: %w", mdl.ProviderID, ErrAPIKeyMissing)
	}
	key, err := r.keys.GetApiKey(mdl.ProviderID)
	if err != nil {
		return nil, err
	}
	c, err := r.factory(ctx, mdl.ProviderID, key, mdl.APIName, client.WithLogger(r.log))
	if err != nil {
		return nil, err
	}
	r.log.Debug().Str("model", mdl.Key).Msg("generation provider resolved")
	return c, nil
}
