package model

import (
	"context"

	"github.com/taigo/tai/pkg/tool"
)

// StreamChunk is one increment of a streamed completion. Final marks the
// last callback, carrying the fully accumulated text.
type StreamChunk struct {
	Text  string
	Final bool
}

// StreamCallback consumes stream chunks strictly in order. Returning an
// error aborts the stream.
type StreamCallback func(chunk StreamChunk) error

// Model is the opaque chat capability the conversation engine talks to. It
// accepts a message history plus a tool catalog and returns either free text
// or tool-call requests.
type Model interface {
	// Chat performs one blocking completion. The returned message contains
	// plain text, tool calls, or both.
	Chat(ctx context.Context, messages []Message, catalog []tool.Spec) (Message, error)
	// ChatStream performs a text-only completion, relaying increments to cb
	// as they arrive.
	ChatStream(ctx context.Context, messages []Message, cb StreamCallback) error
}

// Config captures the settings required to build a Model instance.
type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature *float64
	Headers     map[string]string
}

// Provider constructs concrete Model implementations for a specific backend.
type Provider interface {
	Name() string
	NewModel(ctx context.Context, cfg Config) (Model, error)
}
