package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRejectsBeforeRequest(t *testing.T) {
	ft := NewFetchTool()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "bad scheme", args: map[string]any{"url": "ftp://host/file"}, want: "only http/https"},
		{name: "file scheme", args: map[string]any{"url": "file:///etc/passwd"}, want: "only http/https"},
		{name: "bad method", args: map[string]any{"url": "http://example.com", "method": "TRACE"}, want: "unsupported method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ft.Execute(context.Background(), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchReturnsStatusHeadersAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "tai-test", r.Header.Get("X-Client"))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))
	defer srv.Close()

	ft := NewFetchTool()
	res, err := ft.Execute(context.Background(), map[string]any{
		"url":     srv.URL,
		"method":  "post",
		"headers": map[string]any{"X-Client": "tai-test"},
		"body":    "payload",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res["status"])
	assert.Equal(t, "created", res["text"])
	assert.Equal(t, false, res["truncated"])
	headers, ok := res["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text/plain", headers["content-type"])
}

func TestFetchTruncatesAtMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer srv.Close()

	ft := NewFetchTool()
	res, err := ft.Execute(context.Background(), map[string]any{
		"url":       srv.URL,
		"max_bytes": float64(10),
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["truncated"])
	assert.Equal(t, strings.Repeat("a", 10), res["text"])
}

func TestFetchReportsFinalURLAfterRedirect(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, target.URL+"/end", http.StatusFound)
			return
		}
		w.Write([]byte("done"))
	}))
	defer target.Close()

	ft := NewFetchTool()
	res, err := ft.Execute(context.Background(), map[string]any{"url": target.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, target.URL+"/end", res["final_url"])
	assert.Equal(t, "done", res["text"])
}
