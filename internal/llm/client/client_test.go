package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidocs/internal/models"
)

type fakeChatModel struct {
	answers []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	i := f.calls
	f.calls++
	if len(input) > 0 {
		f.prompts = append(f.prompts, input[len(input)-1].Content)
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.answers) {
		i = len(f.answers) - 1
	}
	return schema.AssistantMessage(f.answers[i], nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func testRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Strategy: models.StrategyAppend,
		Profile:  "default",
		Style:    models.StyleConfig{Language: "fr", Formality: models.FormalityFormal, Preferences: []string{"examples"}},
		Context:  &models.ContextSnapshot{Modules: []string{"core"}},
		TargetSections: []models.DocSection{
			{ID: "overview", Title: "Overview", TargetPath: "docs/overview.md", Status: models.SectionMissing},
			{ID: "api", Title: "API", TargetPath: "docs/api.md", Status: models.SectionExisting},
		},
	}
}

func TestGenerateSections_ParsesFencedAnswer(t *testing.T) {
	chat := &fakeChatModel{answers: []string{"Here you go:\n```json\n[" +
		`{"sectionId":"overview","content":"# Overview\n","confidence":0.9,"needsReview":false},` +
		`{"sectionId":"api","content":"# API\n"},` +
		`{"sectionId":"unknown","content":"x"},` +
		`{"sectionId":"overview","content":"dup"}` +
		"]\n```"}}
	c := NewClient(chat, ProviderOpenAI, "gpt-test")

	batch, err := c.GenerateSections(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, batch.Sections, 2)

	first := batch.Sections[0]
	assert.Equal(t, "overview", first.SectionID)
	assert.Equal(t, "docs/overview.md", first.TargetPath)
	assert.Equal(t, models.StrategyAppend, first.Strategy)
	assert.Equal(t, models.ResultCreated, first.Status)
	assert.InDelta(t, 0.9, first.Score(), 1e-9)
	require.NotNil(t, first.Content)
	assert.Equal(t, "# Overview\n", *first.Content)

	second := batch.Sections[1]
	assert.Equal(t, models.ResultUpdated, second.Status)
	assert.InDelta(t, models.DefaultConfidence, second.Score(), 1e-9)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "fr")
	assert.Contains(t, chat.prompts[0], "overview")
}

func TestGenerateSections_RetriesTransientFailure(t *testing.T) {
	chat := &fakeChatModel{
		errs:    []error{errors.New("rate limited")},
		answers: []string{"", `[{"sectionId":"api","content":"body"}]`},
	}
	c := NewClient(chat, ProviderAnthropic, "claude-test")

	batch, err := c.GenerateSections(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, chat.calls)
	require.Len(t, batch.Sections, 1)
	assert.Equal(t, "api", batch.Sections[0].SectionID)
}

func TestGenerateSections_GivesUpAfterRetries(t *testing.T) {
	chat := &fakeChatModel{answers: []string{"no json here"}}
	c := NewClient(chat, ProviderGemini, "gemini-test", WithMaxRetries(1))

	_, err := c.GenerateSections(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, 2, chat.calls)
	assert.True(t, strings.HasPrefix(err.Error(), "gemini gemini-test"))
}

func TestGenerateSections_NoTargetsSkipsModel(t *testing.T) {
	chat := &fakeChatModel{answers: []string{"[]"}}
	c := NewClient(chat, ProviderOpenAI, "gpt-test")

	req := testRequest()
	req.TargetSections = nil
	batch, err := c.GenerateSections(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, batch.Sections)
	assert.Zero(t, chat.calls)
}

func TestParseSections_NullContentKept(t *testing.T) {
	batch, err := ParseSections(`[{"sectionId":"overview","content":null}]`, testRequest())
	require.NoError(t, err)
	require.Len(t, batch.Sections, 1)
	assert.Nil(t, batch.Sections[0].Content)
	assert.False(t, batch.Sections[0].HasContent())
}

func TestParseSections_ConfidenceBounds(t *testing.T) {
	batch, err := ParseSections(`[{"sectionId":"overview","content":"x","confidence":0},{"sectionId":"api","content":"y","confidence":-1}]`, testRequest())
	require.NoError(t, err)
	require.Len(t, batch.Sections, 2)
	assert.InDelta(t, 0.0, batch.Sections[0].Score(), 1e-9)
	assert.InDelta(t, 0.0, batch.Sections[1].Score(), 1e-9)
}

func TestMockGenerator_Deterministic(t *testing.T) {
	g := NewMockGenerator()
	a, err := g.GenerateSections(context.Background(), testRequest())
	require.NoError(t, err)
	b, err := g.GenerateSections(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.Len(t, a.Sections, 2)
	assert.True(t, a.Sections[0].NeedsReview)
	assert.Contains(t, *a.Sections[0].Content, "# Overview")
	assert.Contains(t, *a.Sections[0].Content, "core")
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), "mistral", "key", "m")
	assert.Error(t, err)
}
