package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
)

// ProviderFallback marks a result degraded to the untranslated original after
// every provider attempt failed.
const ProviderFallback = "FALLBACK"

type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider"`
}

// Provider is the external translation contract:
// (text, fromLang, toLang) -> {translatedText, confidence, provider}.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text string, from, to lang.Language) (Result, error)
}

// HTTPProvider posts to a JSON translation endpoint.
type HTTPProvider struct {
	name   string
	url    string
	client *http.Client
}

func NewHTTPProvider(name, url string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{name: name, url: url, client: client}
}

func (p *HTTPProvider) Name() string {
	return p.name
}

type translateRequest struct {
	Text     string `json:"text"`
	FromLang string `json:"fromLang"`
	ToLang   string `json:"toLang"`
}

type translateResponse struct {
	TranslatedText string  `json:"translatedText"`
	Confidence     float64 `json:"confidence"`
}

func (p *HTTPProvider) Translate(ctx context.Context, text string, from, to lang.Language) (Result, error) {
	body, err := json.Marshal(translateRequest{
		Text:     text,
		FromLang: from.String(),
		ToLang:   to.String(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("translate provider %s returned status %d", p.name, resp.StatusCode)
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("failed to decode translate response: %w", err)
	}

	return Result{Text: out.TranslatedText, Confidence: out.Confidence, Provider: p.name}, nil
}
