package llm

import "context"

// Config carries the fixed construction parameters for a generation engine.
type Config struct {
	ModelPath   string
	MaxTokens   int
	Temperature float64
	TopK        int
}

// Engine is an opaque text-generation service. Generate blocks until the
// model finishes; no timeout is applied at this layer beyond ctx.
// Implementations are not assumed to be reentrant.
type Engine interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Factory builds an engine from a config. The detector owns the returned
// handle and calls Close exactly once per handle.
type Factory func(cfg Config) (Engine, error)
