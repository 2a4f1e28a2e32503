package extraction

import "context"

// Generator sends a prompt to a multimodal model and returns its text output
type Generator interface {
	// Generate submits the prompt and blocks until the model answers or ctx ends.
	// An empty string means the model produced no text.
	Generate(ctx context.Context, prompt Prompt) (string, error)
	// Close releases the underlying client
	Close() error
}
