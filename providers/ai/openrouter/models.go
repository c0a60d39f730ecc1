package openrouter

import (
	"github.com/invopop/jsonschema"
	"github.com/leofalp/parliament/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest represents the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      *bool         `json:"stream,omitempty"`

	Tools      []chatTool  `json:"tools,omitempty"`
	ToolChoice interface{} `json:"tool_choice,omitempty"` // "auto", "none", "required", or object
}

type chatMessage struct {
	Role       string         `json:"role"` // system, user, assistant, tool
	Content    string         `json:"content,omitempty"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"` // For role=tool
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`   // For role=assistant
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type chatToolCall struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"` // "function"
	Function chatToolCallFunction `json:"function"`
}

type chatToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`

	// OpenRouter reports upstream errors inside a 200 body for some routes.
	Error *apiError `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

type chatResponseMessage struct {
	Role      string         `json:"role"` // "assistant"
	Content   string         `json:"content,omitempty"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestFromGeneric converts an ai.ChatRequest to the wire format.
func requestFromGeneric(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{
		Model: request.Model,
	}

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{
			Role:    string(ai.RoleSystem),
			Content: request.SystemPrompt,
		})
	}

	for _, msg := range request.Messages {
		out := chatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, chatToolCall{
				ID:   call.ID,
				Type: "function",
				Function: chatToolCallFunction{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		req.Messages = append(req.Messages, out)
	}

	if request.Temperature > 0 {
		temperature := float64(request.Temperature)
		req.Temperature = &temperature
	}
	if request.MaxTokens > 0 {
		maxTokens := request.MaxTokens
		req.MaxTokens = &maxTokens
	}

	for _, tool := range request.Tools {
		req.Tools = append(req.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	return req
}

// responseToGeneric converts the wire response to an ai.ChatResponse.
// It assumes at least one choice is present.
func responseToGeneric(response chatCompletionResponse) *ai.ChatResponse {
	choice := response.Choices[0]

	out := &ai.ChatResponse{
		ID:           response.ID,
		Model:        response.Model,
		Created:      response.Created,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}

	for _, call := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:   call.ID,
			Type: call.Type,
			Function: ai.ToolCallFunction{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}

	if response.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		}
	}

	return out
}
