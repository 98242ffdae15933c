package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	modelpkg "github.com/taigo/tai/pkg/model"
	"github.com/taigo/tai/pkg/tool"
)

// Ensure Client implements the Model interface.
var _ modelpkg.Model = (*Client)(nil)

// Client is a concrete model backed by Anthropic's Messages API.
type Client struct {
	client      *http.Client
	baseURL     string
	model       string
	headers     map[string]string
	maxTokens   int
	temperature *float64
}

// Chat performs a blocking Messages API call, advertising catalog as the
// tool set the model may invoke.
func (c *Client) Chat(ctx context.Context, messages []modelpkg.Message, catalog []tool.Spec) (modelpkg.Message, error) {
	payload := c.buildPayload(messages, catalog, false)
	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return modelpkg.Message{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return modelpkg.Message{}, readAPIError(resp)
	}

	var msgResp MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return modelpkg.Message{}, fmt.Errorf("decode anthropic response: %w", err)
	}
	return convertResponse(msgResp), nil
}

// ChatStream invokes the streaming endpoint (SSE) and relays text
// increments into cb, in arrival order.
func (c *Client) ChatStream(ctx context.Context, messages []modelpkg.Message, cb modelpkg.StreamCallback) error {
	if cb == nil {
		return errors.New("anthropic stream callback is required")
	}

	payload := c.buildPayload(messages, nil, true)
	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return readAPIError(resp)
	}

	var full strings.Builder
	finalSent := false
	streamErr := consumeSSE(ctx, resp.Body, func(_ string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" {
			return nil
		}

		var envelope StreamEventEnvelope
		if err := json.Unmarshal([]byte(data), &envelope); err != nil {
			return fmt.Errorf("decode anthropic stream envelope: %w", err)
		}

		switch envelope.Type {
		case "content_block_delta":
			var delta ContentBlockDeltaEvent
			if err := json.Unmarshal([]byte(data), &delta); err != nil {
				return fmt.Errorf("decode anthropic delta: %w", err)
			}
			if delta.Delta.Text == "" {
				return nil
			}
			full.WriteString(delta.Delta.Text)
			return cb(modelpkg.StreamChunk{Text: delta.Delta.Text})
		case "message_stop":
			if finalSent {
				return nil
			}
			finalSent = true
			return cb(modelpkg.StreamChunk{Text: full.String(), Final: true})
		default:
			return nil
		}
	})
	if streamErr != nil {
		return streamErr
	}

	if !finalSent {
		return cb(modelpkg.StreamChunk{Text: full.String(), Final: true})
	}
	return nil
}

func (c *Client) buildPayload(messages []modelpkg.Message, catalog []tool.Spec, stream bool) MessageRequest {
	systemText, chatMessages := toAnthropicMessages(messages)
	payload := MessageRequest{
		Model:       c.model,
		Messages:    chatMessages,
		System:      systemText,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Tools:       toToolDefs(catalog),
		Stream:      stream,
	}
	return payload
}

func (c *Client) doRequest(ctx context.Context, payload MessageRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}
	for k, v := range c.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return c.client.Do(req)
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic api status %d: %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return APIError{StatusCode: resp.StatusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
	}
	return APIError{StatusCode: resp.StatusCode, Message: string(body)}
}

// toToolDefs converts the registry catalog into Anthropic's tool format.
func toToolDefs(catalog []tool.Spec) []ToolDef {
	if len(catalog) == 0 {
		return nil
	}
	defs := make([]ToolDef, 0, len(catalog))
	for _, spec := range catalog {
		props := make(map[string]any, len(spec.Params))
		var required []string
		for _, p := range spec.Params {
			props[p.Name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		defs = append(defs, ToolDef{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: InputSchema{Type: "object", Properties: props, Required: required},
		})
	}
	return defs
}

func convertResponse(resp MessageResponse) modelpkg.Message {
	msg := modelpkg.Message{Role: resp.Role}
	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := "{}"
			if block.Input != nil {
				if data, err := json.Marshal(block.Input); err == nil {
					args = string(data)
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, modelpkg.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	msg.Content = text.String()
	if msg.Role == "" {
		msg.Role = modelpkg.RoleAssistant
	}
	return msg
}

func toAnthropicMessages(messages []modelpkg.Message) (string, []MessageParam) {
	var systemParts []string
	out := make([]MessageParam, 0, len(messages))
	for _, msg := range messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role == modelpkg.RoleSystem {
			if msg.Content != "" {
				systemParts = append(systemParts, msg.Content)
			}
			continue
		}

		blocks := make([]ContentBlock, 0, 1+len(msg.ToolCalls)+len(msg.ToolResults))
		if msg.Content != "" {
			blocks = append(blocks, ContentBlock{Type: "text", Text: msg.Content})
		}
		for _, call := range msg.ToolCalls {
			var input map[string]any
			if err := json.Unmarshal([]byte(call.Arguments), &input); err != nil {
				input = map[string]any{}
			}
			blocks = append(blocks, ContentBlock{
				Type:  "tool_use",
				ID:    call.ID,
				Name:  call.Name,
				Input: input,
			})
		}
		for _, result := range msg.ToolResults {
			blocks = append(blocks, ContentBlock{
				Type:      "tool_result",
				ToolUseID: result.ID,
				Content:   result.Content,
			})
		}
		if len(blocks) == 0 {
			blocks = append(blocks, ContentBlock{Type: "text", Text: ""})
		}

		out = append(out, MessageParam{Role: normalizeRole(role), Content: blocks})
	}

	if len(out) == 0 {
		out = append(out, MessageParam{
			Role:    modelpkg.RoleUser,
			Content: []ContentBlock{{Type: "text", Text: ""}},
		})
	}
	return strings.Join(systemParts, "\n\n"), out
}

func normalizeRole(role string) string {
	switch role {
	case modelpkg.RoleAssistant, "model":
		return modelpkg.RoleAssistant
	default:
		return modelpkg.RoleUser
	}
}
