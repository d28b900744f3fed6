// Package llm provides the language model clients used to generate study
// material from extracted text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doc-study-server/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the model answers without content.
var ErrEmptyCompletion = errors.New("model returned no content")

// AzureOpenAI calls a chat completions deployment on Azure OpenAI.
type AzureOpenAI struct {
	client      *openai.Client
	deployment  string
	temperature float32
	logger      domain.Logger
}

// NewAzureOpenAI creates a client for the given deployment.
func NewAzureOpenAI(settings domain.LLMSettings, logger domain.Logger) *AzureOpenAI {
	cfg := openai.DefaultAzureConfig(settings.AzureKey, settings.AzureEndpoint)
	if settings.AzureAPIVersion != "" {
		cfg.APIVersion = settings.AzureAPIVersion
	}
	deployment := settings.AzureDeployment
	cfg.AzureModelMapperFunc = func(model string) string {
		return deployment
	}

	return &AzureOpenAI{
		client:      openai.NewClientWithConfig(cfg),
		deployment:  deployment,
		temperature: 0.7,
		logger:      logger,
	}
}

// Complete sends prompt as the user message after the study assistant
// system message.
func (a *AzureOpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("azure openai chat completion: %w", err)
	}

	a.logger.Debug("Azure OpenAI completion",
		"deployment", a.deployment,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
