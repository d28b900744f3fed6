package llm

import (
	"context"
	"fmt"
	"strings"

	"doc-study-server/internal/domain"

	"cloud.google.com/go/vertexai/genai"
)

// Vertex calls a Gemini model through Vertex AI.
type Vertex struct {
	client *genai.Client
	model  string
	logger domain.Logger
}

// NewVertex creates a Vertex AI client using application default credentials.
func NewVertex(ctx context.Context, settings domain.LLMSettings, logger domain.Logger) (*Vertex, error) {
	client, err := genai.NewClient(ctx, settings.GCPProjectID, settings.GCPLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &Vertex{
		client: client,
		model:  settings.VertexModel,
		logger: logger,
	}, nil
}

func (v *Vertex) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model := v.client.GenerativeModel(v.model)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if resp.UsageMetadata != nil {
		v.logger.Debug("Vertex completion", "model", v.model, "total_tokens", resp.UsageMetadata.TotalTokenCount)
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}

// Close releases the underlying gRPC connection.
func (v *Vertex) Close() error {
	return v.client.Close()
}
