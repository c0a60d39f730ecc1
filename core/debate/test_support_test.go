package debate

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/leofalp/parliament/providers/ai"
	"github.com/leofalp/parliament/providers/tool"
)

// scriptedProvider returns canned responses in order and records every
// request it receives. It satisfies ai.Provider with minimal behavior.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []*ai.ChatResponse
	requests  []ai.ChatRequest
	callIndex int
	err       error
}

var _ ai.Provider = (*scriptedProvider)(nil)

func (p *scriptedProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, request)
	if p.err != nil {
		return nil, p.err
	}
	if p.callIndex >= len(p.responses) {
		return nil, errors.New("no more scripted responses")
	}
	response := p.responses[p.callIndex]
	p.callIndex++
	return response, nil
}

func (p *scriptedProvider) IsStopMessage(response *ai.ChatResponse) bool {
	return response == nil || len(response.ToolCalls) == 0
}

func (p *scriptedProvider) WithAPIKey(_ string) ai.Provider           { return p }
func (p *scriptedProvider) WithBaseURL(_ string) ai.Provider          { return p }
func (p *scriptedProvider) WithHttpClient(_ *http.Client) ai.Provider { return p }

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// prose builds a plain text response.
func prose(content string) *ai.ChatResponse {
	return &ai.ChatResponse{Content: content, FinishReason: "stop"}
}

// withCalls builds a response that requests the given tool calls.
func withCalls(content string, calls ...ai.ToolCall) *ai.ChatResponse {
	return &ai.ChatResponse{Content: content, ToolCalls: calls, FinishReason: "tool_calls"}
}

func call(id, name, args string) ai.ToolCall {
	return ai.ToolCall{
		ID:   id,
		Type: "function",
		Function: ai.ToolCallFunction{
			Name:      name,
			Arguments: args,
		},
	}
}

// fakeTool is a minimal GenericTool for executor tests.
type fakeTool struct {
	name   string
	result string
	err    error
}

var _ tool.GenericTool = (*fakeTool)(nil)

func (t *fakeTool) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{Name: t.name, Description: "fake tool for testing"}
}

func (t *fakeTool) Call(_ context.Context, _ string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return t.result, nil
}

// testConfig returns a valid single-round configuration.
func testConfig(toolsEnabled bool) Config {
	return Config{
		Topic: "AI systems should be open source",
		Models: RoleModels{
			Moderator: "moderator-model",
			Proponent: "pro-model",
			Critic:    "con-model",
		},
		MaxRounds:    1,
		ToolsEnabled: toolsEnabled,
	}
}

// agentText builds an agent prose message for router tests.
func agentText(sender Sender, content string) Message {
	return Message{Sender: sender, Kind: KindAgentText, Content: content}
}

// toolRequest builds an agent tool-call request message.
func toolRequest(sender Sender, calls ...ToolCall) Message {
	return Message{Sender: sender, Kind: KindToolCallRequest, ToolCalls: calls}
}

// toolResult builds a tool result message answering callID.
func toolResult(callID string) Message {
	return Message{Sender: SenderTool, Kind: KindToolResult, Content: "result", ToolCallID: callID}
}
