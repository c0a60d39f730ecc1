package debate

import "fmt"

// GenerationError wraps a failure of the language-model collaborator during a
// node's turn. It is fatal to the run: the engine surfaces it to the caller
// unmodified and performs no internal retry. Retry/backoff policy, if any,
// belongs to the provider layer.
type GenerationError struct {
	Role Sender
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("debate: %s generation failed: %v", e.Role, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// generationFailure wraps a provider error with the role whose turn failed.
func generationFailure(role Sender, err error) error {
	return &GenerationError{Role: role, Err: err}
}
