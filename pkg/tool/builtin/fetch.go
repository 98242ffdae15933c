package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taigo/tai/pkg/tool"
)

const (
	defaultFetchTimeout  = 10 * time.Second
	defaultFetchMaxBytes = 200_000
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
	http.MethodHead:   true,
}

// FetchTool issues a bounded HTTP request and returns a size-capped
// response.
type FetchTool struct {
	// newClient lets tests swap transports; nil uses a per-request client
	// carrying the caller's timeout.
	newClient func(timeout time.Duration) *http.Client
}

// NewFetchTool constructs a FetchTool with the default HTTP client.
func NewFetchTool() *FetchTool {
	return &FetchTool{}
}

func (t *FetchTool) Name() string { return "fetch_url" }

func (t *FetchTool) Description() string {
	return "Fetch content from an HTTP/HTTPS URL with optional method, headers, body, and timeout. Returns status, headers, and text (truncated)."
}

func (t *FetchTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "url", Type: "string", Description: "The URL to fetch (http or https)", Required: true},
		{Name: "method", Type: "string", Description: "HTTP method (default GET)"},
		{Name: "headers", Type: "object", Description: "Optional headers as key-value object"},
		{Name: "body", Type: "string", Description: "Optional request body for POST/PUT/PATCH"},
		{Name: "timeout_sec", Type: "integer", Description: "Request timeout in seconds (default 10)"},
		{Name: "max_bytes", Type: "integer", Description: "Maximum response bytes to capture (default 200000)"},
	}
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	url, err := stringArg(args, "url")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, errors.New("only http/https URLs are allowed")
	}
	method := strings.ToUpper(stringArgDefault(args, "method", http.MethodGet))
	if !allowedMethods[method] {
		return nil, fmt.Errorf("unsupported method %s", method)
	}
	timeout := defaultFetchTimeout
	if sec := intArgDefault(args, "timeout_sec", 0); sec > 0 {
		timeout = time.Duration(sec) * time.Second
	}
	maxBytes := intArgDefault(args, "max_bytes", defaultFetchMaxBytes)
	if maxBytes <= 0 {
		maxBytes = defaultFetchMaxBytes
	}

	var bodyReader io.Reader
	if body, ok := args["body"].(string); ok && body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", url, err)
	}
	if headers, ok := args["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, isStr := v.(string); isStr {
				req.Header.Set(k, s)
			}
		}
	}

	client := &http.Client{Timeout: timeout}
	if t.newClient != nil {
		client = t.newClient(timeout)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	// Read one byte past the cap to detect truncation without buffering an
	// unbounded response.
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	truncated := len(data) > maxBytes
	if truncated {
		data = data[:maxBytes]
	}

	respHeaders := make(map[string]any, len(resp.Header))
	for name := range resp.Header {
		respHeaders[strings.ToLower(name)] = resp.Header.Get(name)
	}

	return map[string]any{
		"url":       url,
		"final_url": resp.Request.URL.String(),
		"status":    resp.StatusCode,
		"headers":   respHeaders,
		"truncated": truncated,
		"text":      string(data),
	}, nil
}
