package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a conversation id has no document.
var ErrNotFound = errors.New("conversation not found")

const (
	defaultDatabase        = "parliament"
	conversationCollection = "conversations"
	defaultTitle           = "New Debate"
)

// StoredMessage is one persisted utterance, shaped for direct JSON delivery
// to clients.
type StoredMessage struct {
	Role       string     `bson:"role" json:"role"`
	Name       string     `bson:"name,omitempty" json:"name,omitempty"`
	Content    string     `bson:"content" json:"content"`
	Type       string     `bson:"type,omitempty" json:"type,omitempty"`
	ToolCalls  []ToolCall `bson:"tool_calls,omitempty" json:"tool_calls,omitempty"`
	ToolCallID string     `bson:"tool_call_id,omitempty" json:"tool_call_id,omitempty"`
}

// ToolCall mirrors a tool invocation recorded on a message.
type ToolCall struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Arguments string `bson:"arguments" json:"arguments"`
}

// Conversation is the full persisted document.
type Conversation struct {
	ID        string          `bson:"_id" json:"id"`
	Title     string          `bson:"title" json:"title"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	Messages  []StoredMessage `bson:"messages" json:"messages"`
}

// Summary is the listing view of a conversation.
type Summary struct {
	ID           string    `bson:"_id" json:"id"`
	Title        string    `bson:"title" json:"title"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	MessageCount int       `bson:"message_count" json:"message_count"`
}

// Store wraps a MongoDB connection scoped to the conversation collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a MongoDB connection and verifies it with a ping. database
// may be empty to use the default.
func Connect(ctx context.Context, uri string, database string) (*Store, error) {
	if database == "" {
		database = defaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Store{
		client:     client,
		collection: client.Database(database).Collection(conversationCollection),
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateConversation inserts an empty conversation with a fresh id and the
// default title, and returns it.
func (s *Store) CreateConversation(ctx context.Context) (*Conversation, error) {
	conversation := &Conversation{
		ID:        uuid.NewString(),
		Title:     defaultTitle,
		CreatedAt: time.Now().UTC(),
		Messages:  []StoredMessage{},
	}
	if _, err := s.collection.InsertOne(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// GetConversation fetches one conversation by id.
func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conversation Conversation
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListConversations returns summaries of all conversations, newest first.
func (s *Store) ListConversations(ctx context.Context) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"title":         1,
			"created_at":    1,
			"message_count": bson.M{"$size": "$messages"},
		}}},
		{{Key: "$sort", Value: bson.M{"created_at": -1}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []Summary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// AppendMessage pushes one message onto a conversation's log. Transient
// failures are retried with backoff so a long debate stream does not abort on
// a single hiccup.
func (s *Store) AppendMessage(ctx context.Context, id string, message StoredMessage) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		result, err := s.collection.UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$push": bson.M{"messages": message}},
		)
		if err == nil {
			if result.MatchedCount == 0 {
				return ErrNotFound
			}
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond * 100 * time.Duration(attempt+1)):
		}
	}
	return lastErr
}

// SetTitle updates a conversation's title.
func (s *Store) SetTitle(ctx context.Context, id string, title string) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
