package llm

import (
	"context"
	"fmt"

	"doc-study-server/internal/domain"
)

// unconfigured is used when no provider credentials are present so the
// server can still extract text.
type unconfigured struct{}

func (unconfigured) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", domain.ErrProviderNotConfigured
}

// New returns the language model selected by settings.Provider.
func New(ctx context.Context, settings domain.LLMSettings, logger domain.Logger) (domain.LanguageModel, error) {
	switch settings.Provider {
	case "", "azure":
		if settings.AzureEndpoint == "" || settings.AzureKey == "" || settings.AzureDeployment == "" {
			logger.Warn("Azure OpenAI not configured; study material generation disabled")
			return unconfigured{}, nil
		}
		return NewAzureOpenAI(settings, logger), nil
	case "vertex":
		if settings.GCPProjectID == "" {
			logger.Warn("GCP_PROJECT_ID not set; study material generation disabled")
			return unconfigured{}, nil
		}
		return NewVertex(ctx, settings, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", settings.Provider)
	}
}
