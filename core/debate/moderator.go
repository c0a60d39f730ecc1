package debate

import (
	"context"

	"github.com/leofalp/parliament/providers/ai"
)

// defaultHistoryWindow is the number of trailing messages forwarded to the
// Moderator's generation call on a transition. Opening uses no history and
// closing always uses the full log.
const defaultHistoryWindow = 3

// Moderator is the arbitrating node. Its behavior is a three-way decision,
// evaluated in order: open the debate, close it once the round budget is
// spent, or assess the previous speaker and hand the floor to the next one.
// It is the only node that sets NextSpeaker and the sole round-increment
// point.
type Moderator struct {
	provider      ai.Provider
	historyWindow int
}

var _ Node = (*Moderator)(nil)

// NewModerator creates the moderator node. historyWindow controls how much
// trailing history is forwarded on transitions; values below 1 use the
// default.
func NewModerator(provider ai.Provider, historyWindow int) *Moderator {
	if historyWindow < 1 {
		historyWindow = defaultHistoryWindow
	}
	return &Moderator{provider: provider, historyWindow: historyWindow}
}

func (m *Moderator) Name() string { return string(TargetModerator) }

// Run produces one Moderator message, the next speaker designation, and
// possibly an incremented round count. Generation failures are fatal to the
// turn and propagated unwrapped beyond [GenerationError]; there is no retry
// here.
func (m *Moderator) Run(ctx context.Context, state State) (*Patch, error) {
	config := state.Config

	// Opening: only the initial human topic message exists.
	if len(state.Messages) == 1 && state.Messages[0].Kind == KindHuman {
		response, err := m.generate(ctx, config, openingPrompt(config.Topic), nil)
		if err != nil {
			return nil, err
		}
		return &Patch{
			Messages:    []Message{moderatorMessage(response)},
			NextSpeaker: speakerOf(SpeakerProponent),
			RoundCount:  intOf(0),
		}, nil
	}

	// A Critic turn that just completed closes out a full Proponent+Critic
	// pair. Credit it before checking the budget, so the final round ends at
	// this moderator turn instead of leaking one more Proponent turn.
	roundAfter := state.RoundCount
	if state.LastAgent == SenderCritic {
		roundAfter++ // the sole increment point
	}

	// Closing: the round budget is spent. No speaker logic runs past this
	// branch.
	if roundAfter >= config.MaxRounds {
		response, err := m.generate(ctx, config, closingPrompt(), chatHistory(state.Messages))
		if err != nil {
			return nil, err
		}
		return &Patch{
			Messages:    []Message{moderatorMessage(response)},
			NextSpeaker: speakerOf(SpeakerFinish),
			RoundCount:  intOf(roundAfter),
		}, nil
	}

	// Transition: hand the floor to whoever answers the last agent who
	// spoke. LastAgent is maintained by the engine on each merge, so no
	// backward scan past tool results is needed here.
	var (
		next            Speaker
		roleInstruction string
	)
	switch state.LastAgent {
	case SenderProponent:
		next = SpeakerCritic
		roleInstruction = "Pivot to the Critic. Ask them to challenge the Proponent's specific point."
	case SenderCritic:
		next = SpeakerProponent
		roleInstruction = "Pivot to the Proponent. Ask them to defend against the Critic's point."
	default:
		// No agent message on record: malformed or truncated history. Never
		// an error; alternate by round parity so the debate still progresses.
		if state.RoundCount == 0 {
			next = SpeakerProponent
		} else {
			next = SpeakerCritic
		}
		roleInstruction = "Move the debate forward."
	}

	lastContent := ""
	if last := state.LastMessage(); last != nil {
		lastContent = last.Content
	}

	window := lastMessages(state.Messages, m.historyWindow)
	prompt := transitionPrompt(config.Topic, state.LastAgent, lastContent, roleInstruction)
	response, err := m.generate(ctx, config, prompt, chatHistory(window))
	if err != nil {
		return nil, err
	}

	return &Patch{
		Messages:    []Message{moderatorMessage(response)},
		NextSpeaker: speakerOf(next),
		RoundCount:  intOf(roundAfter),
	}, nil
}

func (m *Moderator) generate(ctx context.Context, config Config, systemPrompt string, history []ai.Message) (*ai.ChatResponse, error) {
	response, err := m.provider.SendMessage(ctx, ai.ChatRequest{
		Model:        config.Models.Moderator,
		SystemPrompt: systemPrompt,
		Messages:     history,
	})
	if err != nil {
		return nil, generationFailure(SenderModerator, err)
	}
	return response, nil
}

func moderatorMessage(response *ai.ChatResponse) Message {
	return Message{
		Sender:  SenderModerator,
		Kind:    KindAgentText,
		Content: response.Content,
	}
}
