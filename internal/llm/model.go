// Package llm is the enrichment collaborator: it asks a language model to
// describe a group member and turns the reply into a profile overlay.
package llm

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raphaelgruber/circlemap/internal/config"
)

// Completion is one model reply with its reported token usage.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Generator produces a completion for a system and user prompt.
type Generator interface {
	Complete(ctx context.Context, system, user string) (Completion, error)
	Model() string
}

// Model wraps a langchaingo model.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{llm: model, modelName: cfg.LLMModel}, nil
}

// Complete sends a system and user prompt and returns the first choice.
// Non-retryable provider failures are wrapped with ErrFatalAPI.
func (m *Model) Complete(ctx context.Context, system, user string) (Completion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := m.llm.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return Completion{}, fmt.Errorf("generate: %w", wrapFatalError(err))
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("no response choices")
	}

	choice := resp.Choices[0]
	return Completion{
		Text:         choice.Content,
		InputTokens:  tokenCount(choice.GenerationInfo, "PromptTokens", "InputTokens", "input_tokens"),
		OutputTokens: tokenCount(choice.GenerationInfo, "CompletionTokens", "OutputTokens", "output_tokens"),
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// tokenCount reads the first usage key present. Providers disagree on both
// key names and number types.
func tokenCount(info map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
