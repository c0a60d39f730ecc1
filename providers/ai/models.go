package ai

import (
	"github.com/invopop/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a single chat-completion request to a provider.
type ChatRequest struct {
	Model        string            `json:"model,omitempty"`         // Model name or identifier
	Messages     []Message         `json:"messages"`                // All conversation messages except the system prompt
	SystemPrompt string            `json:"system_prompt,omitempty"` // Optional system prompt
	Tools        []ToolDescription `json:"tools,omitempty"`         // Tool definitions advertised to the model, if any
	Temperature  float32           `json:"temperature,omitempty"`   // Sampling temperature; zero means provider default
	MaxTokens    int               `json:"max_tokens,omitempty"`    // Optional cap on response tokens
}

// ToolDescription advertises a callable tool to the model.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the tool call being answered
	Name       string     `json:"name,omitempty"`         // Speaker or tool name, when the caller distinguishes several
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage reports token accounting for a completed request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response to a chat-completion request.
type ChatResponse struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Created      int64      `json:"created"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`
}

// ToolCall represents a function/tool invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id,omitempty"` // Unique identifier for this tool call
	Type     string           `json:"type"`         // "function"
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries the tool name and its JSON-encoded arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

/*
	##### ENUMS #####
*/

// MessageRole identifies who produced a message; compatible with string.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)
