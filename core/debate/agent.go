package debate

import (
	"context"

	"github.com/leofalp/parliament/providers/ai"
	"github.com/leofalp/parliament/providers/tool"
)

// Agent is a debating node. Proponent and Critic are structurally identical;
// only the identity and stance differ.
type Agent struct {
	role     Sender
	stance   string
	provider ai.Provider
	tools    *tool.Catalog
}

var _ Node = (*Agent)(nil)

// NewProponent creates the agent arguing in favor of the topic.
func NewProponent(provider ai.Provider, tools *tool.Catalog) *Agent {
	return &Agent{
		role:     SenderProponent,
		stance:   "Support the topic.",
		provider: provider,
		tools:    tools,
	}
}

// NewCritic creates the agent arguing against the topic.
func NewCritic(provider ai.Provider, tools *tool.Catalog) *Agent {
	return &Agent{
		role:     SenderCritic,
		stance:   "Oppose or critically analyze the topic.",
		provider: provider,
		tools:    tools,
	}
}

func (a *Agent) Name() string {
	if a.role == SenderCritic {
		return string(TargetCritic)
	}
	return string(TargetProponent)
}

// Run produces one agent message. A turn that ends without tool calls is
// complete; there is no other end-of-turn signal, which the router relies on.
func (a *Agent) Run(ctx context.Context, state State) (*Patch, error) {
	config := state.Config

	var (
		systemPrompt string
		history      []ai.Message
	)

	if last := state.LastMessage(); last != nil && last.Kind == KindToolResult {
		// Mid-turn continuation: the agent just received tool results. Send
		// the full visible history so every tool call the provider sees is
		// paired with its result; truncating here can produce a dangling
		// call that providers reject as malformed.
		systemPrompt = agentContinuationPrompt(a.role, a.stance, config.Topic)
		history = chatHistory(state.Messages)
	} else {
		// Fresh turn in response to the Moderator's most recent instruction.
		instruction := ""
		if last != nil {
			instruction = last.Content
		}
		systemPrompt = agentTurnPrompt(a.role, a.stance, config.Topic, instruction)
	}

	request := ai.ChatRequest{
		Model:        config.ModelFor(a.role),
		SystemPrompt: systemPrompt,
		Messages:     history,
	}
	if config.ToolsEnabled && a.tools != nil && a.tools.Size() > 0 {
		request.Tools = a.tools.Descriptions()
	}

	response, err := a.provider.SendMessage(ctx, request)
	if err != nil {
		return nil, generationFailure(a.role, err)
	}

	return &Patch{Messages: []Message{a.message(response)}}, nil
}

func (a *Agent) message(response *ai.ChatResponse) Message {
	message := Message{
		Sender:  a.role,
		Kind:    KindAgentText,
		Content: response.Content,
	}
	for _, call := range response.ToolCalls {
		message.ToolCalls = append(message.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	if len(message.ToolCalls) > 0 {
		message.Kind = KindToolCallRequest
	}
	return message
}
