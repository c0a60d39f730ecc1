package debate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/leofalp/parliament/providers/ai"
	"github.com/leofalp/parliament/providers/tool"
)

// collectEvents drains the stream, failing the test on any error.
func collectEvents(t *testing.T, engine *Engine) []Event {
	t.Helper()
	var events []Event
	for event, err := range engine.Stream(context.Background()) {
		if err != nil {
			t.Fatalf("stream error after %d events: %v", len(events), err)
		}
		events = append(events, event)
	}
	return events
}

func nodeNames(events []Event) []string {
	names := make([]string, len(events))
	for i, event := range events {
		names[i] = event.Node
	}
	return names
}

func TestEngineSingleRoundWithoutTools(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		prose("Welcome to the debate."),
		prose("I argue in favor."),
		prose("Critic, your response?"),
		prose("I disagree."),
		prose("Closing summary."),
	}}

	engine := NewEngine(provider, testConfig(false))
	events := collectEvents(t, engine)

	wantNodes := []string{"moderator", "proponent", "moderator", "critic", "moderator"}
	if got := nodeNames(events); !reflect.DeepEqual(got, wantNodes) {
		t.Fatalf("node sequence = %v, want %v", got, wantNodes)
	}

	final := engine.State()
	if final.NextSpeaker != SpeakerFinish {
		t.Errorf("final speaker = %q, want finish", final.NextSpeaker)
	}
	if final.RoundCount != 1 {
		t.Errorf("final round = %d, want 1", final.RoundCount)
	}
	// Initial human message plus one message per node execution.
	if len(final.Messages) != 6 {
		t.Errorf("final log = %d messages, want 6", len(final.Messages))
	}
	if provider.calls() != 5 {
		t.Errorf("provider calls = %d, want 5", provider.calls())
	}

	// Rounds advance monotonically across the event stream.
	previous := 0
	for _, event := range events {
		if event.RoundCount < previous {
			t.Fatalf("round regressed from %d to %d at node %s", previous, event.RoundCount, event.Node)
		}
		previous = event.RoundCount
	}
}

func TestEngineToolLoopGuard(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		prose("Welcome."),
		withCalls("", call("c1", "search", `{"query":"first"}`)),
		withCalls("", call("c2", "search", `{"query":"second"}`)),
		prose("Critic, respond."),
		prose("I disagree."),
		prose("Closing summary."),
	}}
	catalog := tool.NewCatalogWithTools(&fakeTool{name: "search", result: "evidence"})

	engine := NewEngine(provider, testConfig(true), WithTools(catalog))
	events := collectEvents(t, engine)

	// The Proponent issues tool calls twice in a row; after the second
	// result batch merges, the guard hands the floor to the Moderator
	// instead of returning it to the Proponent a third time.
	wantNodes := []string{"moderator", "proponent", "tools", "proponent", "tools", "moderator", "critic", "moderator"}
	if got := nodeNames(events); !reflect.DeepEqual(got, wantNodes) {
		t.Fatalf("node sequence = %v, want %v", got, wantNodes)
	}

	final := engine.State()
	if final.NextSpeaker != SpeakerFinish {
		t.Errorf("final speaker = %q, want finish", final.NextSpeaker)
	}
	if final.RoundCount != 1 {
		t.Errorf("final round = %d, want 1", final.RoundCount)
	}

	// Tool descriptions reached the agent requests but not the moderator's.
	requests := provider.requests
	if len(requests[0].Tools) != 0 {
		t.Errorf("moderator request carried %d tools", len(requests[0].Tools))
	}
	if len(requests[1].Tools) != 1 {
		t.Errorf("proponent request carried %d tools, want 1", len(requests[1].Tools))
	}
}

func TestEngineReplayDeterminism(t *testing.T) {
	script := func() *scriptedProvider {
		return &scriptedProvider{responses: []*ai.ChatResponse{
			prose("Welcome."),
			prose("For."),
			prose("Over to the Critic."),
			prose("Against."),
			prose("Closing."),
		}}
	}

	first, err := NewEngine(script(), testConfig(false)).Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := NewEngine(script(), testConfig(false)).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical node outputs produced diverging states:\n%+v\n%+v", first, second)
	}
}

func TestEngineConfigErrorBeforeAnyNode(t *testing.T) {
	provider := &scriptedProvider{}
	engine := NewEngine(provider, Config{MaxRounds: 3})

	_, err := engine.Run(context.Background())
	if !errors.Is(err, ErrMissingTopic) {
		t.Fatalf("err = %v, want ErrMissingTopic", err)
	}
	if provider.calls() != 0 {
		t.Errorf("provider was called %d times before validation failed", provider.calls())
	}
}

func TestEngineGenerationErrorIsFatal(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("upstream 500")}
	engine := NewEngine(provider, testConfig(false))

	_, err := engine.Run(context.Background())
	var generation *GenerationError
	if !errors.As(err, &generation) {
		t.Fatalf("err = %v, want GenerationError", err)
	}
	if generation.Role != SenderModerator {
		t.Errorf("failing role = %q, want moderator", generation.Role)
	}
	// No retry: exactly one attempt reached the provider.
	if provider.calls() != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls())
	}
}

func TestEngineStopsBetweenNodesOnCancellation(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		prose("Welcome."),
		prose("For."),
	}}
	engine := NewEngine(provider, testConfig(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var (
		events   int
		streamed error
	)
	for _, err := range engine.Stream(ctx) {
		if err != nil {
			streamed = err
			break
		}
		events++
		cancel()
	}

	if events != 1 {
		t.Fatalf("events before cancellation = %d, want 1", events)
	}
	if !errors.Is(streamed, context.Canceled) {
		t.Fatalf("stream error = %v, want context.Canceled", streamed)
	}
	// The opening moderator call completed; no further node was scheduled.
	if provider.calls() != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls())
	}
}
