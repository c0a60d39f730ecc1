package debate

import (
	"fmt"

	"github.com/leofalp/parliament/providers/ai"
)

// displayName maps a sender to the name used inside prompts and on outgoing
// provider messages.
func displayName(sender Sender) string {
	switch sender {
	case SenderModerator:
		return "Moderator"
	case SenderProponent:
		return "Proponent"
	case SenderCritic:
		return "Critic"
	case SenderTool:
		return "Tool"
	default:
		return "User"
	}
}

func openingPrompt(topic string) string {
	return fmt.Sprintf(`You are the Moderator of a friendly but intellectual debate.
Topic: %q

Your task: kick off the discussion.
1. Briefly introduce the topic in one sentence.
2. Ask the Proponent to share their opening thoughts.

Keep it conversational and inviting.`, topic)
}

func closingPrompt() string {
	return `The discussion has concluded.

Your task: provide a structured final summary of the entire conversation.

Format requirements:
1. Start with a brief closing statement thanking the participants.
2. Create a MARKDOWN TABLE comparing the key arguments of the Proponent and the Critic.
   Columns: | Theme | Proponent's View | Critic's View |
3. Provide 3-5 bullet points summarizing the main consensus or conflict areas.
4. You may close with a one-line verdict on which side argued more convincingly, if one clearly did.

Speak ONLY as the Moderator. Do NOT continue the debate.`
}

func transitionPrompt(topic string, lastSpeaker Sender, lastContent string, roleInstruction string) string {
	return fmt.Sprintf(`Review the last argument by the %s:
%q

Original topic: %q

Task:
1. Is this on topic? If not, gently steer the debate back.
2. Summarize the debate so far in one or two sentences to orient the next speaker.
3. Formulate a pivoting question for the NEXT speaker.

%s

Output only the assessment and the question/instruction for the next speaker.
CRITICAL: speak ONLY as the Moderator. Do NOT roleplay as the next speaker.`, displayName(lastSpeaker), lastContent, topic, roleInstruction)
}

func agentTurnPrompt(role Sender, stance string, topic string, instruction string) string {
	return fmt.Sprintf(`You are the %s in a debate about: %q
Your stance: %s

The Moderator has just asked you:
%q

Instructions:
1. Address the Moderator's question directly.
2. Keep your argument focused on the original topic: %q.
3. Be conversational but factual.
4. Keep it under 150 words.`, displayName(role), topic, stance, instruction, topic)
}

func agentContinuationPrompt(role Sender, stance string, topic string) string {
	return fmt.Sprintf(`You are the %s in a debate about: %q
Your stance: %s

You have just received the results of your tool calls. Incorporate the
findings into your argument and finish your turn. Cite what the evidence
actually says; if a tool reported an error, continue without it.
Keep it under 150 words.`, displayName(role), topic, stance)
}

// chatHistory converts debate messages to provider messages. Tool results
// keep their call correlation so providers never see a dangling tool call,
// which some APIs reject as malformed.
func chatHistory(messages []Message) []ai.Message {
	history := make([]ai.Message, 0, len(messages))
	for _, message := range messages {
		history = append(history, toChatMessage(message))
	}
	return history
}

func toChatMessage(message Message) ai.Message {
	switch message.Kind {
	case KindHuman:
		return ai.Message{Role: ai.RoleUser, Content: message.Content}
	case KindToolResult:
		return ai.Message{
			Role:       ai.RoleTool,
			Content:    message.Content,
			ToolCallID: message.ToolCallID,
			Name:       message.ToolName,
		}
	default:
		out := ai.Message{
			Role:    ai.RoleAssistant,
			Content: message.Content,
			Name:    displayName(message.Sender),
		}
		for _, call := range message.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return out
	}
}

// lastMessages returns up to n trailing messages, never splitting a tool-call
// request from its results: if the window would start inside a tool exchange
// it is widened to include the originating request.
func lastMessages(messages []Message, n int) []Message {
	if n <= 0 || n >= len(messages) {
		return messages
	}
	start := len(messages) - n
	for start > 0 && (messages[start].Kind == KindToolResult || messages[start-1].Kind == KindToolCallRequest) {
		start--
	}
	return messages[start:]
}
