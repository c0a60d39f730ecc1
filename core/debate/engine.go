package debate

import (
	"context"
	"iter"
	"log/slog"

	"github.com/leofalp/parliament/providers/ai"
	"github.com/leofalp/parliament/providers/tool"
)

// Node is one participant behavior: a function from a state snapshot to a
// patch. Nodes never mutate shared state; the engine applies their patches
// atomically.
type Node interface {
	// Name identifies the node in events and logs.
	Name() string

	// Run executes one turn against an immutable state snapshot.
	Run(ctx context.Context, state State) (*Patch, error)
}

// Event is emitted exactly once per completed node execution, in execution
// order. It carries the node's produced messages and the merged speaker
// designation and round count.
type Event struct {
	Node        string    `json:"node"`
	Messages    []Message `json:"messages"`
	NextSpeaker Speaker   `json:"next_speaker"`
	RoundCount  int       `json:"round_count"`
}

// Engine drives one conversation's state machine: invoke node, merge patch,
// route, repeat until the Moderator sets SpeakerFinish. Each Engine owns its
// conversation's state exclusively; node execution is strictly sequential.
type Engine struct {
	state     *State
	moderator Node
	proponent Node
	critic    Node
	executor  Node
	logger    *slog.Logger
}

// engineOptions collects optional engine configuration.
type engineOptions struct {
	catalog        *tool.Catalog
	logger         *slog.Logger
	historyWindow  int
	agentProviders map[Sender]ai.Provider
}

// Option configures optional Engine behavior.
type Option func(*engineOptions)

// WithTools sets the tool catalog available to the debating agents. Without
// it (or with ToolsEnabled false) agents debate on prose alone.
func WithTools(catalog *tool.Catalog) Option {
	return func(o *engineOptions) {
		o.catalog = catalog
	}
}

// WithLogger sets the structured logger used by the engine loop.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithModeratorHistoryWindow tunes how many trailing messages the Moderator
// forwards to its generation call on transitions.
func WithModeratorHistoryWindow(n int) Option {
	return func(o *engineOptions) {
		o.historyWindow = n
	}
}

// WithRoleProvider overrides the provider used for a single role, leaving the
// other roles on the default provider.
func WithRoleProvider(role Sender, provider ai.Provider) Option {
	return func(o *engineOptions) {
		o.agentProviders[role] = provider
	}
}

// NewEngine assembles an engine for one conversation. The configuration is
// validated lazily when the run starts, before any node executes.
func NewEngine(provider ai.Provider, config Config, options ...Option) *Engine {
	opts := &engineOptions{
		agentProviders: make(map[Sender]ai.Provider),
	}
	for _, option := range options {
		option(opts)
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	providerFor := func(role Sender) ai.Provider {
		if override, ok := opts.agentProviders[role]; ok {
			return override
		}
		return provider
	}

	return &Engine{
		state:     NewState(config),
		moderator: NewModerator(providerFor(SenderModerator), opts.historyWindow),
		proponent: NewProponent(providerFor(SenderProponent), opts.catalog),
		critic:    NewCritic(providerFor(SenderCritic), opts.catalog),
		executor:  NewToolExecutor(opts.catalog),
		logger:    opts.logger,
	}
}

// State returns a snapshot of the conversation state.
func (e *Engine) State() State {
	return e.state.Snapshot()
}

// Stream runs the conversation and yields one event per completed node
// execution. The iterator ends after the terminal event, or after yielding a
// single error: a configuration error before any node runs, a generation
// failure, or context cancellation observed between nodes.
//
// Breaking out of the range loop stops the engine after the in-flight node:
// its merged result remains in the state, and no further node is scheduled.
func (e *Engine) Stream(ctx context.Context) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if err := e.state.Config.Validate(); err != nil {
			yield(Event{}, err)
			return
		}

		target := TargetModerator
		for {
			// In-flight nodes are allowed to finish on cancellation; the
			// check sits between turns.
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}

			node := e.nodeFor(target)
			patch, err := node.Run(ctx, e.state.Snapshot())
			if err != nil {
				e.logger.ErrorContext(ctx, "debate node failed",
					slog.String("node", node.Name()),
					slog.String("error", err.Error()),
				)
				yield(Event{}, err)
				return
			}

			e.state.apply(patch)
			e.logger.InfoContext(ctx, "debate node completed",
				slog.String("node", node.Name()),
				slog.Int("messages", len(patch.Messages)),
				slog.Int("round", e.state.RoundCount),
				slog.String("next_speaker", string(e.state.NextSpeaker)),
			)

			event := Event{
				Node:        node.Name(),
				Messages:    append([]Message(nil), patch.Messages...),
				NextSpeaker: e.state.NextSpeaker,
				RoundCount:  e.state.RoundCount,
			}
			if !yield(event, nil) {
				return
			}

			if target == TargetTools {
				target = RouteAfterTools(e.state.Snapshot())
			} else {
				target = Route(e.state.Snapshot())
			}
			if target == TargetTerminate {
				return
			}
		}
	}
}

// Run drives the conversation to completion, discarding intermediate events,
// and returns the final state.
func (e *Engine) Run(ctx context.Context) (State, error) {
	for _, err := range e.Stream(ctx) {
		if err != nil {
			return e.State(), err
		}
	}
	return e.State(), nil
}

func (e *Engine) nodeFor(target Target) Node {
	switch target {
	case TargetProponent:
		return e.proponent
	case TargetCritic:
		return e.critic
	case TargetTools:
		return e.executor
	default:
		return e.moderator
	}
}
