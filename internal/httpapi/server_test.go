package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/parliament/providers/ai"
	mongostore "github.com/leofalp/parliament/providers/storage/mongo"
)

// memoryStore is an in-memory ConversationStore for handler tests.
type memoryStore struct {
	mu            sync.Mutex
	conversations map[string]*mongostore.Conversation
	nextID        int
}

var _ ConversationStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{conversations: make(map[string]*mongostore.Conversation)}
}

func (m *memoryStore) CreateConversation(_ context.Context) (*mongostore.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	conversation := &mongostore.Conversation{
		ID:        fmt.Sprintf("conv-%d", m.nextID),
		Title:     "New Debate",
		CreatedAt: time.Now().UTC(),
		Messages:  []mongostore.StoredMessage{},
	}
	m.conversations[conversation.ID] = conversation
	return conversation, nil
}

func (m *memoryStore) GetConversation(_ context.Context, id string) (*mongostore.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversation, ok := m.conversations[id]
	if !ok {
		return nil, mongostore.ErrNotFound
	}
	snapshot := *conversation
	snapshot.Messages = append([]mongostore.StoredMessage(nil), conversation.Messages...)
	return &snapshot, nil
}

func (m *memoryStore) ListConversations(_ context.Context) ([]mongostore.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := []mongostore.Summary{}
	for _, conversation := range m.conversations {
		summaries = append(summaries, mongostore.Summary{
			ID:           conversation.ID,
			Title:        conversation.Title,
			CreatedAt:    conversation.CreatedAt,
			MessageCount: len(conversation.Messages),
		})
	}
	return summaries, nil
}

func (m *memoryStore) AppendMessage(_ context.Context, id string, message mongostore.StoredMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversation, ok := m.conversations[id]
	if !ok {
		return mongostore.ErrNotFound
	}
	conversation.Messages = append(conversation.Messages, message)
	return nil
}

func (m *memoryStore) SetTitle(_ context.Context, id string, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversation, ok := m.conversations[id]
	if !ok {
		return mongostore.ErrNotFound
	}
	conversation.Title = title
	return nil
}

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []*ai.ChatResponse
	callIndex int
}

var _ ai.Provider = (*scriptedProvider)(nil)

func (p *scriptedProvider) SendMessage(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
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

func prose(content string) *ai.ChatResponse {
	return &ai.ChatResponse{Content: content, FinishReason: "stop"}
}

func TestRootEndpoint(t *testing.T) {
	server := NewServer(newMemoryStore(), &scriptedProvider{}, nil, nil, nil)

	recorder := httptest.NewRecorder()
	server.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestConversationLifecycle(t *testing.T) {
	store := newMemoryStore()
	server := NewServer(store, &scriptedProvider{}, nil, nil, nil)
	routes := server.Routes()

	// Create
	recorder := httptest.NewRecorder()
	routes.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/conversations", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("create status = %d", recorder.Code)
	}
	var created mongostore.Conversation
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Title != "New Debate" {
		t.Errorf("title = %q", created.Title)
	}

	// Get
	recorder = httptest.NewRecorder()
	routes.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/conversations/"+created.ID, nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("get status = %d", recorder.Code)
	}

	// Get missing
	recorder = httptest.NewRecorder()
	routes.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/conversations/missing", nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", recorder.Code)
	}

	// List
	recorder = httptest.NewRecorder()
	routes.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d", recorder.Code)
	}
	var summaries []mongostore.Summary
	if err := json.NewDecoder(recorder.Body).Decode(&summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Errorf("summaries = %d, want 1", len(summaries))
	}
}

func TestCORSPreflight(t *testing.T) {
	server := NewServer(newMemoryStore(), &scriptedProvider{}, nil, nil, nil)

	request := httptest.NewRequest(http.MethodOptions, "/api/conversations", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	server.Routes().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

// sseEvents parses the data lines of an SSE body.
func sseEvents(t *testing.T, body *bytes.Buffer) []sseEvent {
	t.Helper()
	var events []sseEvent
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event sseEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("bad sse payload %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestMessageStream(t *testing.T) {
	store := newMemoryStore()
	conversation, _ := store.CreateConversation(context.Background())

	debateProvider := &scriptedProvider{responses: []*ai.ChatResponse{
		prose("Welcome to the debate."),
		prose("I argue in favor."),
		prose("Critic, your response?"),
		prose("I disagree."),
		prose("Closing summary."),
	}}
	titleProvider := &scriptedProvider{responses: []*ai.ChatResponse{
		prose(`"Open Source AI"`),
	}}

	server := NewServer(store, debateProvider, titleProvider, nil, nil)

	enableTools := false
	payload, _ := json.Marshal(sendMessageRequest{
		Content: "AI systems should be open source",
		Config: &debateConfigRequest{
			MaxRounds:   1,
			EnableTools: &enableTools,
		},
	})

	request := httptest.NewRequest(http.MethodPost,
		"/api/conversations/"+conversation.ID+"/message/stream",
		bytes.NewReader(payload))
	recorder := httptest.NewRecorder()
	server.Routes().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	events := sseEvents(t, recorder.Body)
	if len(events) == 0 {
		t.Fatal("no sse events received")
	}

	if events[0].Type != "title" || events[0].Data != "Open Source AI" {
		t.Errorf("first event = %+v, want stripped title", events[0])
	}
	if events[len(events)-1].Type != "complete" {
		t.Errorf("last event = %+v, want complete", events[len(events)-1])
	}

	counts := map[string]int{}
	for _, event := range events {
		counts[event.Type]++
	}
	// One message per node execution: moderator, proponent, moderator,
	// critic, moderator.
	if counts["message"] != 5 {
		t.Errorf("message events = %d, want 5", counts["message"])
	}
	if counts["status"] == 0 {
		t.Error("expected moderator status events")
	}
	if counts["error"] != 0 {
		t.Errorf("unexpected error events: %d", counts["error"])
	}

	// Everything streamed was also persisted: the user message plus the five
	// node messages.
	stored, _ := store.GetConversation(context.Background(), conversation.ID)
	if len(stored.Messages) != 6 {
		t.Errorf("persisted messages = %d, want 6", len(stored.Messages))
	}
	if stored.Title != "Open Source AI" {
		t.Errorf("persisted title = %q", stored.Title)
	}
}

func TestMessageStreamValidation(t *testing.T) {
	store := newMemoryStore()
	conversation, _ := store.CreateConversation(context.Background())
	server := NewServer(store, &scriptedProvider{}, nil, nil, nil)
	routes := server.Routes()

	t.Run("missing conversation", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost,
			"/api/conversations/missing/message/stream",
			strings.NewReader(`{"content":"topic"}`))
		recorder := httptest.NewRecorder()
		routes.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("status = %d", recorder.Code)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost,
			"/api/conversations/"+conversation.ID+"/message/stream",
			strings.NewReader(`{"content":"  "}`))
		recorder := httptest.NewRecorder()
		routes.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status = %d", recorder.Code)
		}
	})
}
