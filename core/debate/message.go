package debate

// Sender identifies who produced a message. The set is closed: routing
// matches on it exhaustively and unrecognized values only ever reach the
// documented fallbacks, never an error.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderModerator Sender = "moderator"
	SenderProponent Sender = "proponent"
	SenderCritic    Sender = "critic"
	SenderTool      Sender = "tool"
)

// Kind classifies a message's payload.
type Kind string

const (
	// KindHuman is the initial user message carrying the debate topic.
	KindHuman Kind = "human"

	// KindAgentText is prose produced by the Moderator or a debating agent,
	// with no tool calls attached. A turn ending in KindAgentText is complete.
	KindAgentText Kind = "agent_text"

	// KindToolCallRequest is an agent message that carries one or more tool
	// calls. The turn is not complete until every call has been answered.
	KindToolCallRequest Kind = "tool_call_request"

	// KindToolResult is the output of a single tool call, correlated to its
	// request by ToolCallID. Tool results are evidence produced mid-turn;
	// they are not turns for routing purposes.
	KindToolResult Kind = "tool_result"
)

// ToolCall is a structured request embedded in an agent message asking the
// engine to invoke a named tool before the turn is complete.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// Message is a single utterance in the debate log. Messages are immutable
// once appended; the log is append-only and no message is ever edited or
// removed.
type Message struct {
	Sender  Sender `json:"sender"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content,omitempty"`

	// ToolCalls is present only on KindToolCallRequest messages.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID is present only on KindToolResult messages and correlates
	// the result to exactly one prior request.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolName is the name of the tool that produced a KindToolResult.
	ToolName string `json:"tool_name,omitempty"`
}

// IsAgent reports whether the sender is one of the two debating agents.
func (s Sender) IsAgent() bool {
	return s == SenderProponent || s == SenderCritic
}

// Opponent returns the opposing debating agent, or SenderProponent for any
// non-agent sender.
func (s Sender) Opponent() Sender {
	if s == SenderProponent {
		return SenderCritic
	}
	return SenderProponent
}

// clone returns a deep copy of the message so that appended log entries can
// never be mutated through a caller-retained slice.
func (m Message) clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}
