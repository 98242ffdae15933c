// Package model defines the provider-neutral chat surface: message shapes
// and the Model/Provider interfaces backends implement.
package model

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolCall is a tool invocation emitted by the model. Arguments carries the
// JSON-encoded argument object verbatim; the ID is an opaque correlation
// token that must be echoed back in the matching ToolResult.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult carries a tool's JSON payload back to the model, tagged with
// the originating call's ID.
type ToolResult struct {
	ID      string
	Content string
}

// Message represents a single conversational turn. History is append-only;
// messages are never mutated once appended.
type Message struct {
	Role        string
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}
