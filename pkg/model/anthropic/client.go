package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	modelpkg "github.com/taigo/tai/pkg/model"
)

// Ensure Provider satisfies the model.Provider interface at compile time.
var _ modelpkg.Provider = (*Provider)(nil)

// Provider wires Anthropic-backed models into the factory.
type Provider struct {
	HTTPClient *http.Client
}

// NewProvider builds a Provider with the supplied HTTP client. When client
// is nil a default client with a generous timeout is used; streamed turns
// can legitimately run long.
func NewProvider(client *http.Client) *Provider {
	return &Provider{HTTPClient: client}
}

// Name advertises the provider identifier used for selection.
func (p *Provider) Name() string {
	return "anthropic"
}

// NewModel materializes a Client configured according to cfg.
func (p *Provider) NewModel(ctx context.Context, cfg modelpkg.Config) (modelpkg.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, errors.New("anthropic model name is required")
	}

	headers := map[string]string{
		"X-API-Key":         apiKey,
		"Anthropic-Version": anthropicVersion,
		"Content-Type":      "application/json",
		"User-Agent":        userAgent,
	}
	for k, v := range cfg.Headers {
		if strings.TrimSpace(k) == "" || v == "" {
			continue
		}
		headers[k] = v
	}

	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout * time.Second}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		client:      client,
		baseURL:     sanitizeBaseURL(cfg.BaseURL),
		model:       modelName,
		headers:     headers,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func sanitizeBaseURL(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return defaultBaseURL
	}
	return trimmed
}
