package debate

// Target is the router's decision: which node executes next, or termination.
type Target string

const (
	TargetModerator Target = "moderator"
	TargetProponent Target = "proponent"
	TargetCritic    Target = "critic"
	TargetTools     Target = "tools"
	TargetTerminate Target = "terminate"
)

// maxToolRounds bounds consecutive (tool-call request, tool result) pairs by
// the same agent within a single logical turn. When the count reaches this
// bound the guard forces a handover to the Moderator so the conversation can
// never stall in a tool loop.
const maxToolRounds = 2

// Route decides which node executes next given a fully-merged state. It is a
// total function: ambiguity is always resolved toward the Moderator, never
// raised as an error.
//
// Decision order:
//  1. The most recent message is an agent tool-call request with unanswered
//     calls: route to the tool executor.
//  2. The most recent message is from an agent with no pending calls (the
//     agent completed its turn): route to the Moderator.
//  3. Otherwise consult the Moderator's speaker designation; SpeakerFinish
//     terminates, anything unrecognized falls back to the Moderator.
func Route(state State) Target {
	if last := state.LastMessage(); last != nil && last.Sender.IsAgent() {
		if len(pendingToolCalls(state)) > 0 {
			return TargetTools
		}
		return TargetModerator
	}

	switch state.NextSpeaker {
	case SpeakerProponent:
		return TargetProponent
	case SpeakerCritic:
		return TargetCritic
	case SpeakerFinish:
		return TargetTerminate
	default:
		return TargetModerator
	}
}

// RouteAfterTools is the second router, applied only after a ToolExecutor
// merge. It identifies the agent whose tool calls were just answered and
// either hands the turn back to it, or forces a Moderator handover when the
// agent has exhausted its consecutive tool rounds.
func RouteAfterTools(state State) Target {
	messages := state.Messages

	// Identify the caller: scan backward past the newly appended results to
	// the nearest tool-call request.
	i := len(messages) - 1
	for i >= 0 && messages[i].Kind == KindToolResult {
		i--
	}
	if i < 0 || messages[i].Kind != KindToolCallRequest || !messages[i].Sender.IsAgent() {
		return TargetModerator
	}
	caller := messages[i].Sender

	// Count consecutive (request, results) pairs attributable to the caller,
	// stopping as soon as a message from anyone else is encountered walking
	// backward.
	pairs := 0
	j := len(messages) - 1
	for j >= 0 {
		for j >= 0 && messages[j].Kind == KindToolResult {
			j--
		}
		if j < 0 {
			break
		}
		if messages[j].Kind == KindToolCallRequest && messages[j].Sender == caller {
			pairs++
			j--
			continue
		}
		break
	}

	if pairs >= maxToolRounds {
		return TargetModerator
	}
	if caller == SenderProponent {
		return TargetProponent
	}
	return TargetCritic
}

// pendingToolCalls returns the unanswered calls on the most recent tool-call
// request message. Calls are answered by KindToolResult messages appended
// after the request, matched by ToolCallID.
func pendingToolCalls(state State) []ToolCall {
	messages := state.Messages

	requestIndex := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Kind == KindToolCallRequest {
			requestIndex = i
			break
		}
		if messages[i].Kind != KindToolResult {
			// A prose or moderator message means any earlier request has
			// already been fully handled.
			return nil
		}
	}
	if requestIndex < 0 {
		return nil
	}

	answered := make(map[string]bool)
	for _, message := range messages[requestIndex+1:] {
		if message.Kind == KindToolResult && message.ToolCallID != "" {
			answered[message.ToolCallID] = true
		}
	}

	var pending []ToolCall
	for _, call := range messages[requestIndex].ToolCalls {
		if !answered[call.ID] {
			pending = append(pending, call)
		}
	}
	return pending
}
