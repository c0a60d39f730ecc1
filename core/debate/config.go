package debate

import (
	"errors"
	"fmt"
)

// Configuration errors are fatal before any node executes.
var (
	ErrMissingTopic    = errors.New("debate: topic is required")
	ErrInvalidMaxRound = errors.New("debate: max rounds must be at least 1")
)

// RoleModels selects the model identifier used for each role's generation
// calls. The values are opaque to the routing core; they are forwarded to the
// configured provider unchanged.
type RoleModels struct {
	Moderator string `json:"moderator_model"`
	Proponent string `json:"pro_model"`
	Critic    string `json:"con_model"`
}

// Config is the per-conversation configuration consumed by the engine.
// Topic is set once at conversation start and never mutated.
type Config struct {
	Topic        string     `json:"topic"`
	Models       RoleModels `json:"models"`
	MaxRounds    int        `json:"max_rounds"`
	ToolsEnabled bool       `json:"enable_tools"`
}

// Validate checks the configuration before the first node runs.
func (c Config) Validate() error {
	if c.Topic == "" {
		return ErrMissingTopic
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxRound, c.MaxRounds)
	}
	return nil
}

// ModelFor returns the configured model identifier for the given role.
func (c Config) ModelFor(sender Sender) string {
	switch sender {
	case SenderProponent:
		return c.Models.Proponent
	case SenderCritic:
		return c.Models.Critic
	default:
		return c.Models.Moderator
	}
}
