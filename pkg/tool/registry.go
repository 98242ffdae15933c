package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry keeps the mapping between tool names and implementations and is
// the single place tool failures are normalized into structured payloads.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool when its name is not in use. Duplicate names are
// rejected so catalog entries stay unambiguous.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get fetches a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Catalog exports all registered specs in registration order. The slice is
// what gets advertised to the model.
func (r *Registry) Catalog() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, Spec{
			Name:        t.Name(),
			Description: t.Description(),
			Params:      t.Params(),
		})
	}
	return specs
}

// Dispatch resolves and executes one model-issued call. Every failure mode
// (unknown tool, malformed arguments, missing parameters, execution errors)
// is converted into an error payload tagged with the call's correlation ID;
// Dispatch itself never fails, so the conversation loop stays alive no
// matter what a single tool does.
func (r *Registry) Dispatch(ctx context.Context, call Call) Result {
	impl, ok := r.Get(call.Name)
	if !ok {
		return errorResult(call.ID, fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return errorResult(call.ID, fmt.Sprintf("Failed parsing tool args for %s: %v", call.Name, err))
	}
	if err := validateArgs(args, impl.Params()); err != nil {
		return errorResult(call.ID, err.Error())
	}

	started := time.Now()
	payload, err := impl.Execute(ctx, args)
	log.Debug().
		Str("tool", call.Name).
		Str("call_id", call.ID).
		Dur("elapsed", time.Since(started)).
		Err(err).
		Msg("tool dispatched")
	if err != nil {
		return errorResult(call.ID, err.Error())
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return Result{ID: call.ID, Payload: payload}
}

func parseArguments(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func errorResult(id, msg string) Result {
	return Result{ID: id, Payload: map[string]any{"error": msg}}
}
