// Package translate wraps the Azure Translator text API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"doc-study-server/internal/domain"
)

const apiVersion = "3.0"

// AzureTranslator implements domain.Translator.
type AzureTranslator struct {
	endpoint string
	key      string
	region   string
	client   *http.Client
	logger   domain.Logger
}

// NewAzureTranslator creates a translator client.
func NewAzureTranslator(settings domain.TranslatorSettings, logger domain.Logger) *AzureTranslator {
	return &AzureTranslator{
		endpoint: strings.TrimRight(settings.Endpoint, "/"),
		key:      settings.Key,
		region:   settings.Region,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type translateItem struct {
	Text string `json:"text"`
}

type translateResponse []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate returns text translated to the language code to.
func (t *AzureTranslator) Translate(ctx context.Context, text, to string) (string, error) {
	if t.key == "" || t.endpoint == "" {
		return "", domain.ErrProviderNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	body, err := json.Marshal([]translateItem{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("encode translate request: %w", err)
	}

	q := url.Values{}
	q.Set("api-version", apiVersion)
	q.Set("to", to)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+"/translate?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	if t.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("translator returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed translateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return "", errors.New("translator returned no translations")
	}

	t.logger.Debug("Translated text", "to", to, "chars", len(text))
	return parsed[0].Translations[0].Text, nil
}
