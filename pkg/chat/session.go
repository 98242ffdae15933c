// Package chat drives the conversation loop: it sends the transcript to the
// model, dispatches any tool calls it requests, feeds the results back, and
// streams the final answer once the model stops asking for tools.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/taigo/tai/pkg/config"
	"github.com/taigo/tai/pkg/history"
	"github.com/taigo/tai/pkg/model"
	"github.com/taigo/tai/pkg/tool"
)

const (
	shellSteering = "Summarize the results of the terminal command succinctly and proceed with any next steps to complete the user's request. If the command output already satisfies the request, provide the final answer concisely."
	toolSteering  = "Use the tool outputs above to answer the user directly. Provide a concise summary or the requested information. If more actions are needed, call a tool."
)

// Display receives user-facing events from the loop. Implementations decide
// how to render them; the loop never writes to the terminal itself.
type Display interface {
	ToolCall(name, formattedParams string)
	ToolResult(name string, payload map[string]any)
	StreamText(text string)
	Answer(text string)
}

// NopDisplay discards all events.
type NopDisplay struct{}

func (NopDisplay) ToolCall(string, string) {}
func (NopDisplay) ToolResult(string, map[string]any) {}
func (NopDisplay) StreamText(string) {}
func (NopDisplay) Answer(string) {}

// Session holds one conversation: the transcript, the model, the tool
// registry, and the on-disk interaction log.
type Session struct {
	model      model.Model
	tools      *tool.Registry
	log        *history.History
	display    Display
	transcript []model.Message

	maxIterations int
	maxWords      int
	contextAdded  bool
}

// Option configures a Session.
type Option func(*Session)

// WithDisplay routes loop events to d instead of discarding them.
func WithDisplay(d Display) Option {
	return func(s *Session) { s.display = d }
}

// WithMaxIterations overrides the tool-loop bound for one turn.
func WithMaxIterations(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithMaxWords sets the answer length hint in the system prompt.
func WithMaxWords(n int) Option {
	return func(s *Session) { s.maxWords = n }
}

// NewSession builds a session over a model, a registry, and an interaction
// log. The log may be nil when persistence is not wanted.
func NewSession(m model.Model, tools *tool.Registry, log *history.History, opts ...Option) *Session {
	s := &Session{
		model:         m,
		tools:         tools,
		log:           log,
		display:       NopDisplay{},
		maxIterations: config.DefaultMaxToolIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step runs one user turn to completion and returns the final answer text.
// The model may request any number of tool rounds before answering; each
// round dispatches the requested calls in order and appends their results to
// the transcript. Context files are injected into the system prompt once,
// on the first turn that carries them.
func (s *Session) Step(ctx context.Context, input string, contexts []config.ContextFile) (string, error) {
	if len(s.transcript) == 0 {
		s.transcript = append(s.transcript, model.Message{
			Role:    model.RoleSystem,
			Content: s.buildPrompt(contexts),
		})
	}
	s.transcript = append(s.transcript, model.Message{
		Role:    model.RoleUser,
		Content: input,
	})

	for i := 0; i < s.maxIterations; i++ {
		resp, err := s.model.Chat(ctx, s.transcript, s.tools.Catalog())
		if err != nil {
			return "", fmt.Errorf("chat failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			return s.finish(ctx, input, resp)
		}
		s.runToolRound(ctx, resp)
	}
	return "", fmt.Errorf("tool loop did not settle after %d iterations", s.maxIterations)
}

// runToolRound records the model's tool request, executes every call in the
// order given, and appends the results plus a steering message telling the
// model what to do with them.
func (s *Session) runToolRound(ctx context.Context, resp model.Message) {
	s.transcript = append(s.transcript, model.Message{
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})

	results := make([]model.ToolResult, 0, len(resp.ToolCalls))
	hasShell := false
	for _, call := range resp.ToolCalls {
		if call.Name == "run_shell" {
			hasShell = true
		}
		s.display.ToolCall(call.Name, FormatParams(call.Arguments))

		res := s.tools.Dispatch(ctx, tool.Call{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
		s.display.ToolResult(call.Name, res.Payload)

		content, err := json.Marshal(res.Payload)
		if err != nil {
			log.Warn().Str("tool", call.Name).Err(err).Msg("failed to encode tool result")
			content = []byte("{}")
		}
		results = append(results, model.ToolResult{
			ID:      call.ID,
			Content: string(content),
		})
	}

	s.transcript = append(s.transcript, model.Message{
		Role:        model.RoleUser,
		ToolResults: results,
	})

	steering := toolSteering
	if hasShell {
		steering = shellSteering
	}
	s.transcript = append(s.transcript, model.Message{
		Role:    model.RoleAssistant,
		Content: steering,
	})
}

// finish streams the model's closing answer, falling back to the non-stream
// response if streaming fails, then records the exchange.
func (s *Session) finish(ctx context.Context, input string, resp model.Message) (string, error) {
	var buf strings.Builder
	err := s.model.ChatStream(ctx, s.transcript, func(chunk model.StreamChunk) error {
		if chunk.Text != "" {
			buf.WriteString(chunk.Text)
			s.display.StreamText(chunk.Text)
		}
		return nil
	})
	text := buf.String()
	if err != nil {
		log.Debug().Err(err).Msg("streaming failed, using buffered response")
		text = resp.Content
	}

	s.transcript = append(s.transcript, model.Message{
		Role:    model.RoleAssistant,
		Content: text,
	})
	if s.log != nil {
		if err := s.log.Add(input, text); err != nil {
			log.Warn().Err(err).Msg("failed to record interaction")
		}
	}
	s.display.Answer(text)
	return text, nil
}

// Transcript exposes the accumulated conversation, mostly for tests.
func (s *Session) Transcript() []model.Message {
	return s.transcript
}

func (s *Session) buildPrompt(contexts []config.ContextFile) string {
	if s.contextAdded {
		contexts = nil
	}
	if len(contexts) > 0 {
		s.contextAdded = true
	}
	var recent []history.RelevantEntry
	if s.log != nil {
		recent = s.log.Relevant()
	}
	return buildSystemPrompt(contexts, recent, s.maxWords)
}
