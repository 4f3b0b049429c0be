package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"aidocs/internal/models"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	defaultMaxRetries = 2
	claudeMaxTokens   = 8192
)

// LLMClient generates documentation sections with a single batched chat call.
type LLMClient struct {
	ChatModel model.BaseChatModel
	Provider  string
	Model     string

	maxRetries uint64
	log        zerolog.Logger
}

// Option customizes an LLMClient.
type Option func(*LLMClient)

func WithLogger(log zerolog.Logger) Option {
	return func(c *LLMClient) { c.log = log }
}

func WithMaxRetries(n uint64) Option {
	return func(c *LLMClient) { c.maxRetries = n }
}

// NewClient wraps an existing chat model.
func NewClient(chat model.BaseChatModel, provider, modelName string, opts ...Option) *LLMClient {
	c := &LLMClient{
		ChatModel:  chat,
		Provider:   provider,
		Model:      modelName,
		maxRetries: defaultMaxRetries,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewOpenAIClient(ctx context.Context, key, modelName string, opts ...Option) (*LLMClient, error) {
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: key,
		Model:  modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return NewClient(chat, ProviderOpenAI, modelName, opts...), nil
}

func NewClaudeClient(ctx context.Context, key, modelName string, opts ...Option) (*LLMClient, error) {
	chat, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    key,
		Model:     modelName,
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create claude chat model: %w", err)
	}
	return NewClient(chat, ProviderAnthropic, modelName, opts...), nil
}

func NewGeminiClient(ctx context.Context, key, modelName string, opts ...Option) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	chat, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: genaiClient,
		Model:  modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}
	return NewClient(chat, ProviderGemini, modelName, opts...), nil
}

// New builds a client for a catalog provider id.
func New(ctx context.Context, provider, key, modelName string, opts ...Option) (*LLMClient, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(ctx, key, modelName, opts...)
	case ProviderAnthropic:
		return NewClaudeClient(ctx, key, modelName, opts...)
	case ProviderGemini:
		return NewGeminiClient(ctx, key, modelName, opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

// GenerateSections asks the model for every target section in one call and
// parses the JSON answer. Transient failures and unparsable answers are
// retried with exponential backoff.
func (c *LLMClient) GenerateSections(ctx context.Context, req models.GenerationRequest) (*models.GenerationBatch, error) {
	if c.ChatModel == nil {
		return nil, errors.New("chat model is not configured")
	}
	if len(req.TargetSections) == 0 {
		return &models.GenerationBatch{Sections: []models.GeneratedSectionResult{}}, nil
	}

	prompt, err := renderSectionsPrompt(req)
	if err != nil {
		return nil, err
	}
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}

	var batch *models.GenerationBatch
	attempt := 0
	op := func() error {
		attempt++
		msg, err := c.ChatModel.Generate(ctx, messages)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Warn().Err(err).Int("attempt", attempt).Str("model", c.Model).Msg("llm generate failed")
			return err
		}
		if msg == nil {
			return errors.New("model returned no message")
		}
		parsed, err := ParseSections(msg.Content, req)
		if err != nil {
			c.log.Warn().Err(err).Int("attempt", attempt).Str("model", c.Model).Msg("llm answer not parsable")
			return err
		}
		batch = parsed
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)); err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.Provider, c.Model, err)
	}

	c.log.Debug().
		Str("provider", c.Provider).
		Str("model", c.Model).
		Int("sections", len(batch.Sections)).
		Msg("llm sections generated")
	return batch, nil
}
