package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/genai"

	"github.com/leofalp/parliament/providers/ai"
)

const defaultModel = "gemini-2.0-flash-lite"

// GeminiProvider implements the ai.Provider interface for Google's Gemini
// API via the official genai SDK.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ai.Provider = (*GeminiProvider)(nil)

// New creates a new Gemini provider instance. The API key is read from
// GEMINI_API_KEY; override it with [GeminiProvider.WithAPIKey].
func New() *GeminiProvider {
	return &GeminiProvider{
		apiKey: os.Getenv("GEMINI_API_KEY"),
	}
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the SDK's endpoint, mainly for tests.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements the ai.Provider interface. Tool-carrying requests
// are rejected; route those through a tool-capable provider instead.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if len(request.Tools) > 0 {
		return nil, fmt.Errorf("gemini provider does not support tool calling")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		HTTPClient:  p.client,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := request.Model
	if model == "" {
		model = defaultModel
	}

	config := &genai.GenerateContentConfig{}
	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}
	if request.Temperature > 0 {
		temperature := request.Temperature
		config.Temperature = &temperature
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}

	contents := make([]*genai.Content, 0, len(request.Messages))
	for _, message := range request.Messages {
		var role genai.Role = genai.RoleUser
		if message.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(message.Content, role))
	}

	response, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	out := &ai.ChatResponse{
		Model:   model,
		Content: response.Text(),
	}
	if len(response.Candidates) > 0 {
		out.FinishReason = string(response.Candidates[0].FinishReason)
	}
	if response.UsageMetadata != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     int(response.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(response.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(response.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// IsStopMessage reports whether the given chat response should be treated as
// a stop/end signal. Gemini never emits tool calls through this provider, so
// every non-empty response is terminal.
func (p *GeminiProvider) IsStopMessage(response *ai.ChatResponse) bool {
	return response == nil || len(response.ToolCalls) == 0
}
