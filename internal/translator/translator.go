// Package translator calls the external translation provider.
package translator

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

	"github.com/google/uuid"
)

// Provider translates text into a target language.
type Provider interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, text, targetLanguage string) (string, error)

// Translate calls f.
func (f ProviderFunc) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return f(ctx, text, targetLanguage)
}

// ProviderError reports a failed or unintelligible provider response.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("translation provider error (status %d): %s", e.StatusCode, e.Body)
}

// HTTPProvider calls a translator service speaking the v3 REST shape:
// POST {endpoint}/translate?api-version=3.0&to={lang} with [{"text": ...}].
type HTTPProvider struct {
	endpoint string
	region   string
	apiKey   string
	client   *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint. Region and
// apiKey are passed through as subscription headers.
func NewHTTPProvider(endpoint, region, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		region:   region,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type translationResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate sends one text to the provider and returns the translation.
func (p *HTTPProvider) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if p.endpoint == "" {
		return "", errors.New("translator endpoint is not configured")
	}

	body, err := json.Marshal([]map[string]string{{"text": text}})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	u := p.endpoint + "/translate?api-version=3.0&to=" + url.QueryEscape(targetLanguage)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ClientTraceId", uuid.New().String())
	if p.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", p.apiKey)
	}
	if p.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", p.region)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call translator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translator response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var results []translationResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: "malformed response body"}
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: "response contained no translations"}
	}

	return results[0].Translations[0].Text, nil
}
