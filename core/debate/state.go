package debate

// Speaker is the Moderator's designation of who acts next. It is set
// exclusively by the Moderator node and consulted by the router when the most
// recent message does not itself determine the next transition.
type Speaker string

const (
	// SpeakerUnset is the zero value: no designation has been made yet.
	// The router resolves it to the Moderator.
	SpeakerUnset Speaker = ""

	SpeakerProponent Speaker = "proponent"
	SpeakerCritic    Speaker = "critic"

	// SpeakerFinish is a one-way terminal marker: once set, no further agent
	// or tool node executes for the conversation.
	SpeakerFinish Speaker = "finish"
)

// State is the canonical conversation state. Nodes receive value snapshots
// and return patches; the engine is the single point of mutation.
type State struct {
	// Messages is the append-only conversation log.
	Messages []Message

	// RoundCount counts completed Proponent+Critic pairs. It is
	// non-decreasing and incremented only by the Moderator when it observes
	// that the Critic has just completed a turn.
	RoundCount int

	// NextSpeaker is the Moderator's routing designation.
	NextSpeaker Speaker

	// LastAgent is the debating agent that most recently completed a
	// message, maintained transactionally by the engine on each merge so the
	// Moderator's transition branch is an O(1) lookup rather than a backward
	// scan past tool results. Zero until an agent has spoken.
	LastAgent Sender

	// Config is immutable for the life of the conversation.
	Config Config
}

// NewState creates the initial conversation state: a single human message
// carrying the topic, round count zero, and no speaker designation.
func NewState(config Config) *State {
	return &State{
		Messages: []Message{{
			Sender:  SenderUser,
			Kind:    KindHuman,
			Content: config.Topic,
		}},
		Config: config,
	}
}

// Patch is the output of one node execution: messages to append, plus
// optional updates to the speaker designation and round counter. Nil fields
// leave the corresponding state untouched.
type Patch struct {
	Messages    []Message
	NextSpeaker *Speaker
	RoundCount  *int
}

// Snapshot returns a value copy of the state with an independent message
// slice, safe to hand to a node while the engine retains ownership of the
// original.
func (s *State) Snapshot() State {
	snapshot := *s
	snapshot.Messages = make([]Message, len(s.Messages))
	for i, message := range s.Messages {
		snapshot.Messages[i] = message.clone()
	}
	return snapshot
}

// LastMessage returns the most recent message, or nil for an empty log.
func (s State) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// apply merges a node's patch into the state. Appended agent messages update
// the LastAgent field in the same merge, and a SpeakerFinish designation is
// one-way: later patches cannot clear it.
func (s *State) apply(patch *Patch) {
	if patch == nil {
		return
	}
	for _, message := range patch.Messages {
		s.Messages = append(s.Messages, message.clone())
		if message.Sender.IsAgent() && (message.Kind == KindAgentText || message.Kind == KindToolCallRequest) {
			s.LastAgent = message.Sender
		}
	}
	if patch.NextSpeaker != nil && s.NextSpeaker != SpeakerFinish {
		s.NextSpeaker = *patch.NextSpeaker
	}
	if patch.RoundCount != nil && *patch.RoundCount > s.RoundCount {
		s.RoundCount = *patch.RoundCount
	}
}

// speakerOf returns a pointer to the given speaker, for use in patches.
func speakerOf(speaker Speaker) *Speaker {
	return &speaker
}

// intOf returns a pointer to the given int, for use in patches.
func intOf(value int) *int {
	return &value
}
