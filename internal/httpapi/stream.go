package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/parliament/core/debate"
	"github.com/leofalp/parliament/internal/config"
	"github.com/leofalp/parliament/providers/ai"
	mongostore "github.com/leofalp/parliament/providers/storage/mongo"
)

// debateConfigRequest mirrors the per-request model selection sent by the
// client. Zero values fall back to the server defaults.
type debateConfigRequest struct {
	ProModel       string `json:"pro_model"`
	ConModel       string `json:"con_model"`
	ModeratorModel string `json:"moderator_model"`
	MaxRounds      int    `json:"max_rounds"`
	EnableTools    *bool  `json:"enable_tools"`
}

type sendMessageRequest struct {
	Content string               `json:"content"`
	Config  *debateConfigRequest `json:"config"`
}

// sseEvent is one server-sent payload. Data's shape depends on Type:
// "title" and "status" carry strings, "message"/"tool_call"/"tool_output"
// carry the stored message, "error" uses Message, "complete" is empty.
type sseEvent struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	var request sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(request.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	conversation, err := s.store.GetConversation(r.Context(), conversationID)
	if errors.Is(err, mongostore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch conversation")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	isFirstMessage := len(conversation.Messages) == 0

	userMessage := mongostore.StoredMessage{Role: "user", Name: "User", Content: request.Content}
	if err := s.store.AppendMessage(r.Context(), conversationID, userMessage); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist message")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()

	if isFirstMessage {
		title := s.generateTitle(ctx, request.Content)
		if err := s.store.SetTitle(ctx, conversationID, title); err != nil {
			s.logger.WarnContext(ctx, "failed to persist title", slog.String("error", err.Error()))
		}
		s.emit(w, flusher, sseEvent{Type: "title", Data: title})
	}

	engine := debate.NewEngine(s.provider, s.debateConfig(request),
		debate.WithTools(s.catalog),
		debate.WithLogger(s.logger),
	)

	for event, err := range engine.Stream(ctx) {
		if err != nil {
			s.logger.ErrorContext(ctx, "debate stream failed", slog.String("error", err.Error()))
			s.emit(w, flusher, sseEvent{Type: "error", Message: err.Error()})
			return
		}

		for _, message := range event.Messages {
			stored := toStoredMessage(message)
			if err := s.store.AppendMessage(ctx, conversationID, stored); err != nil {
				s.logger.WarnContext(ctx, "failed to persist message", slog.String("error", err.Error()))
			}
			s.emit(w, flusher, sseEvent{Type: eventType(message), Data: stored})
		}

		if event.Node == string(debate.TargetModerator) && event.NextSpeaker != debate.SpeakerUnset {
			s.emit(w, flusher, sseEvent{
				Type: "status",
				Data: fmt.Sprintf("Moderator decided: %s speaks next.", event.NextSpeaker),
			})
		}
	}

	s.emit(w, flusher, sseEvent{Type: "complete"})
}

// debateConfig merges the client's request with server defaults.
func (s *Server) debateConfig(request sendMessageRequest) debate.Config {
	defaultModel := config.GetDefaultDebateModel()
	cfg := debate.Config{
		Topic: request.Content,
		Models: debate.RoleModels{
			Moderator: defaultModel,
			Proponent: defaultModel,
			Critic:    defaultModel,
		},
		MaxRounds:    config.GetDefaultMaxRounds(),
		ToolsEnabled: true,
	}

	if request.Config != nil {
		if request.Config.ModeratorModel != "" {
			cfg.Models.Moderator = request.Config.ModeratorModel
		}
		if request.Config.ProModel != "" {
			cfg.Models.Proponent = request.Config.ProModel
		}
		if request.Config.ConModel != "" {
			cfg.Models.Critic = request.Config.ConModel
		}
		if request.Config.MaxRounds > 0 {
			cfg.MaxRounds = request.Config.MaxRounds
		}
		if request.Config.EnableTools != nil {
			cfg.ToolsEnabled = *request.Config.EnableTools
		}
	}
	return cfg
}

// generateTitle asks the fast title model for a 3-5 word title. Any failure
// falls back to the default title so the stream is never interrupted.
func (s *Server) generateTitle(ctx context.Context, content string) string {
	const fallback = "New Debate"
	if s.titleProvider == nil {
		return fallback
	}

	titleCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	response, err := s.titleProvider.SendMessage(titleCtx, ai.ChatRequest{
		Model:        config.GetTitleModel(),
		SystemPrompt: "Generate a very short, 3-5 word title for this debate topic. Do not use quotes.",
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: content}},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "title generation failed", slog.String("error", err.Error()))
		return fallback
	}

	title := strings.Trim(strings.TrimSpace(response.Content), `"`)
	if title == "" {
		return fallback
	}
	return title
}

func (s *Server) emit(w http.ResponseWriter, flusher http.Flusher, event sseEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal sse event", slog.String("error", err.Error()))
		return
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		s.logger.Warn("failed to write sse event", slog.String("error", err.Error()))
		return
	}
	flusher.Flush()
}

// toStoredMessage converts an engine message to its persisted form.
func toStoredMessage(message debate.Message) mongostore.StoredMessage {
	stored := mongostore.StoredMessage{
		Content:    message.Content,
		ToolCallID: message.ToolCallID,
	}

	switch message.Kind {
	case debate.KindToolResult:
		stored.Role = "tool"
		stored.Name = message.ToolName
		if stored.Name == "" {
			stored.Name = "Tool"
		}
	case debate.KindHuman:
		stored.Role = "user"
		stored.Name = "User"
	default:
		stored.Role = "assistant"
		stored.Name = senderName(message.Sender)
	}

	for _, call := range message.ToolCalls {
		stored.ToolCalls = append(stored.ToolCalls, mongostore.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}

	stored.Type = eventType(message)
	return stored
}

// eventType classifies a message for the SSE protocol.
func eventType(message debate.Message) string {
	switch message.Kind {
	case debate.KindToolCallRequest:
		return "tool_call"
	case debate.KindToolResult:
		return "tool_output"
	default:
		return "message"
	}
}

func senderName(sender debate.Sender) string {
	switch sender {
	case debate.SenderModerator:
		return "Moderator"
	case debate.SenderProponent:
		return "Proponent"
	case debate.SenderCritic:
		return "Critic"
	default:
		return "User"
	}
}
