package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/parliament/internal/utils"
	"github.com/leofalp/parliament/providers/ai"
)

const (
	defaultBaseURL          = "https://openrouter.ai/api/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// OpenRouterProvider implements the Provider interface for the OpenRouter API.
type OpenRouterProvider struct {
	apiKey  string
	baseURL string
	referer string
	title   string
	client  *http.Client
}

var _ ai.Provider = (*OpenRouterProvider)(nil)

// New creates a new OpenRouter provider instance with default values.
func New() *OpenRouterProvider {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	baseURL := os.Getenv("OPENROUTER_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenRouterProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *OpenRouterProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *OpenRouterProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *OpenRouterProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithAppAttribution sets the optional HTTP-Referer and X-Title headers that
// OpenRouter uses to attribute traffic to an application.
func (p *OpenRouterProvider) WithAppAttribution(referer, title string) *OpenRouterProvider {
	p.referer = referer
	p.title = title
	return p
}

// SendMessage implements the Provider interface.
func (p *OpenRouterProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	headers := map[string]string{}
	if p.referer != "" {
		headers["HTTP-Referer"] = p.referer
	}
	if p.title != "" {
		headers["X-Title"] = p.title
	}

	httpResponse, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestFromGeneric(request), headers)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from OpenRouter API: %s", httpResponse.Status)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("OpenRouter API error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return responseToGeneric(*resp), nil
}

// IsStopMessage reports whether the given chat response should be treated as
// a stop/end signal.
func (p *OpenRouterProvider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	// Prefer explicit finish reason from API
	if message.FinishReason == "stop" || message.FinishReason == "length" || message.FinishReason == "content_filter" {
		return true
	}
	// If there's no content and no tool calls, treat as stop
	if message.Content == "" && len(message.ToolCalls) == 0 {
		return true
	}
	return false
}
