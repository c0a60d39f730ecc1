// Package config centralizes the environment variables consumed by the
// server. Values are read from the process environment; a .env file is
// loaded by the entrypoint before these accessors run.
package config

import (
	"os"
	"strconv"
)

// GetOpenRouterAPIKey returns the OpenRouter API key.
func GetOpenRouterAPIKey() string {
	return os.Getenv("OPENROUTER_API_KEY")
}

// GetGeminiAPIKey returns the Gemini API key used for title generation.
func GetGeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// GetTitleModel returns the fast model used to title new conversations.
// Defaults to "gemini-2.0-flash-lite" if not set.
func GetTitleModel() string {
	model := os.Getenv("TITLE_MODEL")
	if model == "" {
		return "gemini-2.0-flash-lite"
	}
	return model
}

// GetDefaultDebateModel returns the model used for debate roles when the
// client does not specify one.
func GetDefaultDebateModel() string {
	model := os.Getenv("DEBATE_MODEL")
	if model == "" {
		return "anthropic/claude-3.5-sonnet"
	}
	return model
}

// GetDefaultMaxRounds returns the round budget used when the client does not
// specify one. Defaults to 3.
func GetDefaultMaxRounds() int {
	raw := os.Getenv("DEBATE_MAX_ROUNDS")
	if raw == "" {
		return 3
	}
	rounds, err := strconv.Atoi(raw)
	if err != nil || rounds < 1 {
		return 3
	}
	return rounds
}

// GetMongoDBURI returns the MongoDB connection URI.
func GetMongoDBURI() string {
	return os.Getenv("MONGODB_URI")
}

// GetListenAddr returns the HTTP listen address. Defaults to ":8000".
func GetListenAddr() string {
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		return ":8000"
	}
	return addr
}

// GetAllowedOrigins returns the allowed CORS origins.
func GetAllowedOrigins() string {
	return os.Getenv("ALLOWED_ORIGINS")
}
