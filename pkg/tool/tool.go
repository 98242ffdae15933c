// Package tool defines the uniform contract every capability implements and
// the registry that dispatches model-issued calls to them.
package tool

import "context"

// Param describes a single parameter in a tool's schema. The descriptor
// slice is built once at startup and drives both the catalog advertised to
// the model and argument validation at dispatch.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, integer, boolean, object, array
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// Spec is the catalog entry for one tool.
type Spec struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
}

// Tool is implemented by every capability: filesystem access, process
// execution, network fetch. Execute blocks until the side effect is fully
// resolved and returns a JSON-serializable result object.
type Tool interface {
	Name() string
	Description() string
	Params() []Param
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Call is a tool invocation emitted by the model. Arguments carries the raw
// JSON-encoded object exactly as produced; the registry parses it.
type Call struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Result pairs a call's correlation ID with the tool's JSON payload. On
// failure Payload holds a single "error" key; a Result never wraps a Go
// error directly.
type Result struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// Err reports the error message carried by the payload, if any.
func (r Result) Err() (string, bool) {
	if r.Payload == nil {
		return "", false
	}
	msg, ok := r.Payload["error"].(string)
	return msg, ok
}
