package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/llm/client"
	"aidocs/internal/models"
	"aidocs/internal/services"
	"aidocs/internal/tests/mocks"
)

type cannedChat struct{ answer string }

func (c cannedChat) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(c.answer, nil), nil
}

func (c cannedChat) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type staticKeys map[string]string

func (k staticKeys) GetApiKey(provider string) (string, error) {
	if v, ok := k[provider]; ok {
		return v, nil
	}
	return "", services.ErrAPIKeyMissing
}

func loadedCatalog(t *testing.T) services.ModelConfigService {
	t.Helper()
	catalog := services.NewModelConfigService(&mocks.ModelSettingRepositoryMock{})
	require.NoError(t, catalog.Load(context.Background()))
	return catalog
}

func TestGeneratorResolver_Mock(t *testing.T) {
	r := services.NewGeneratorResolver(nil, nil, nil, zerolog.Nop())
	g, err := r.Generator(context.Background(), services.MockLLMProfile)
	require.NoError(t, err)
	assert.IsType(t, &client.MockGenerator{}, g)
}

func TestGeneratorResolver_CatalogModel(t *testing.T) {
	var gotProvider, gotKey, gotModel string
	factory := func(_ context.Context, provider, key, modelName string, opts ...client.Option) (*client.LLMClient, error) {
		gotProvider, gotKey, gotModel = provider, key, modelName
		return client.NewClient(cannedChat{answer: `[{"sectionId":"overview","content":"hi"}]`}, provider, modelName, opts...), nil
	}
	r := services.NewGeneratorResolver(loadedCatalog(t), staticKeys{"anthropic": "sk-ant"}, factory, zerolog.Nop())

	g, err := r.Generator(context.Background(), "anthropic|claude-3-5-haiku-latest")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", gotProvider)
	assert.Equal(t, "sk-ant", gotKey)
	assert.Equal(t, "claude-3-5-haiku-latest", gotModel)

	batch, err := g.GenerateSections(context.Background(), models.GenerationRequest{
		Strategy:       models.StrategyAppend,
		TargetSections: []models.DocSection{{ID: "overview", TargetPath: "docs/overview.md"}},
	})
	require.NoError(t, err)
	require.Len(t, batch.Sections, 1)
	assert.Equal(t, "hi", *batch.Sections[0].Content)
}

func TestGeneratorResolver_Failures(t *testing.T) {
	catalog := loadedCatalog(t)
	_, err := catalog.SetModelEnabled(context.Background(), "openai|gpt-4.1", false)
	require.NoError(t, err)
	r := services.NewGeneratorResolver(catalog, staticKeys{}, nil, zerolog.Nop())

	_, err = r.Generator(context.Background(), "openai|gpt-4.1")
	assert.ErrorIs(t, err, services.ErrModelDisabled)

	_, err = r.Generator(context.Background(), "openai|unknown")
	assert.ErrorIs(t, err, services.ErrModelNotFound)

	_, err = r.Generator(context.Background(), "gemini|gemini-2.5-pro")
	assert.ErrorIs(t, err, services.ErrAPIKeyMissing)
}
