package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/utils"
)

const (
	defaultModel        = "gpt-4o-mini"
	defaultTemperature  = 0.1
	defaultMaxLogLength = 200
)

var sleep = time.Sleep

type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Config configures the OpenAI generator.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	Retry        ai.RetryPolicy
	MaxLogLength int
}

// Generator implements ai.Generator over the chat completions API in JSON
// object mode.
type Generator struct {
	completions completer
	model       string
	temperature float64
	retry       ai.RetryPolicy
	budget      *ai.Budget
	maxLogLen   int
	logger      *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates an OpenAI-backed Generator. The SDK's own retries are
// disabled so the shared retry policy is the only one in effect.
func NewGenerator(cfg Config, budget *ai.Budget, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	client := openai.NewClient(opts...)

	return &Generator{
		completions: &client.Chat.Completions,
		model:       model,
		temperature: temperature,
		retry:       cfg.Retry,
		budget:      budget,
		maxLogLen:   maxLogLen,
		logger:      logger.WithCommonFields(log, ai.ProviderOpenAI, model),
	}, nil
}

// GenerateContent sends a system and user message pair and returns the first
// choice's content.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.completions == nil {
		return "", errors.New("openai generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	log := g.logger
	if log == nil {
		log = zap.NewNop()
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(message))

	params := openai.ChatCompletionNewParams{
		Model:    g.model,
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(g.temperature),
	}

	log.Debug("openai chat completion request",
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	retrier := ai.Retrier{
		Policy:   g.retry,
		Classify: classify,
		Sleep:    sleep,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			log.Warn("openai request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		},
	}

	var output string
	err := retrier.Do(ctx, func(ctx context.Context) error {
		if err := g.budget.Wait(ctx); err != nil {
			return err
		}

		resp, err := g.completions.New(ctx, params)
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return errEmptyResponse
		}

		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return errEmptyResponse
		}

		log.Debug("openai token usage",
			zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
			zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		)

		output = content
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Debug("openai chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
