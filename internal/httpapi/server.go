package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leofalp/parliament/providers/ai"
	mongostore "github.com/leofalp/parliament/providers/storage/mongo"
	"github.com/leofalp/parliament/providers/tool"
)

// ConversationStore is the persistence surface the API needs. It is
// satisfied by [mongostore.Store].
type ConversationStore interface {
	CreateConversation(ctx context.Context) (*mongostore.Conversation, error)
	GetConversation(ctx context.Context, id string) (*mongostore.Conversation, error)
	ListConversations(ctx context.Context) ([]mongostore.Summary, error)
	AppendMessage(ctx context.Context, id string, message mongostore.StoredMessage) error
	SetTitle(ctx context.Context, id string, title string) error
}

// Server holds the API's dependencies.
type Server struct {
	store         ConversationStore
	provider      ai.Provider
	titleProvider ai.Provider
	catalog       *tool.Catalog
	logger        *slog.Logger
}

// NewServer assembles the API server. titleProvider may be nil, in which
// case new conversations keep the default title.
func NewServer(store ConversationStore, provider ai.Provider, titleProvider ai.Provider, catalog *tool.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:         store,
		provider:      provider,
		titleProvider: titleProvider,
		catalog:       catalog,
		logger:        logger,
	}
}

// Routes returns the API handler with CORS applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/conversations", s.handleListConversations)
	mux.HandleFunc("POST /api/conversations", s.handleCreateConversation)
	mux.HandleFunc("GET /api/conversations/{id}", s.handleGetConversation)
	mux.HandleFunc("POST /api/conversations/{id}/message/stream", s.handleMessageStream)
	return enableCORS(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "Parliament API",
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListConversations(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "listing conversations failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := s.store.CreateConversation(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "creating conversation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := s.store.GetConversation(r.Context(), r.PathValue("id"))
	if errors.Is(err, mongostore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "fetching conversation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to fetch conversation")
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
