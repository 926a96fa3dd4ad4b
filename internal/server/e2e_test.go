package server

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

func newMCPClient(t *testing.T, url, key string) *client.Client {
	t.Helper()
	cl, err := client.NewStreamableHttpClient(url+"/mcp",
		transport.WithHTTPHeaders(map[string]string{"Authorization": "Bearer " + key}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = cl.Close() })
	ctx := context.Background()
	if err := cl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := cl.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return cl
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("no text content in result: %#v", res)
	return ""
}

func TestListToolsCatalog(t *testing.T) {
	ts, _, _ := newTestServer(t, 100)
	cl := newMCPClient(t, ts.URL, testKey)

	res, err := cl.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("tools/list: %v", err)
	}
	if len(res.Tools) != ToolCount {
		t.Fatalf("got %d tools, want %d", len(res.Tools), ToolCount)
	}
	byName := map[string]mcp.Tool{}
	for _, tool := range res.Tools {
		byName[tool.Name] = tool
	}
	create, ok := byName["create_stream"]
	if !ok {
		t.Fatalf("create_stream missing from catalog")
	}
	required := map[string]bool{}
	for _, r := range create.InputSchema.Required {
		required[r] = true
	}
	if !required["name"] || !required["prompt"] {
		t.Fatalf("create_stream required = %v", create.InputSchema.Required)
	}
	if _, ok := byName["delete_stream"]; !ok {
		t.Fatalf("delete_stream missing from catalog")
	}
}

func TestEndToEndCreateStream(t *testing.T) {
	ts, up, _ := newTestServer(t, 100)
	cl := newMCPClient(t, ts.URL, testKey)

	req := mcp.CallToolRequest{}
	req.Params.Name = "create_stream"
	req.Params.Arguments = map[string]any{"name": "test", "prompt": "sunset"}
	res, err := cl.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("tools/call: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textContent(t, res))
	}
	text := textContent(t, res)
	for _, want := range []string{"s1", "test", "creating", "T0"} {
		if !strings.Contains(text, want) {
			t.Fatalf("result %q missing %q", text, want)
		}
	}
	if got := up.creates.Load(); got != 1 {
		t.Fatalf("upstream creates = %d, want 1", got)
	}
}

func TestCreateStreamMissingPrompt(t *testing.T) {
	ts, up, _ := newTestServer(t, 100)
	cl := newMCPClient(t, ts.URL, testKey)

	req := mcp.CallToolRequest{}
	req.Params.Name = "create_stream"
	req.Params.Arguments = map[string]any{"name": "test"}
	res, err := cl.CallTool(context.Background(), req)
	if err == nil && !res.IsError {
		t.Fatalf("expected input validation failure")
	}
	if got := up.creates.Load(); got != 0 {
		t.Fatalf("upstream creates = %d, validation must precede the upstream call", got)
	}
}

func TestUnknownToolNotForwarded(t *testing.T) {
	ts, up, _ := newTestServer(t, 100)
	cl := newMCPClient(t, ts.URL, testKey)

	req := mcp.CallToolRequest{}
	req.Params.Name = "frobnicate_stream"
	res, err := cl.CallTool(context.Background(), req)
	if err == nil && (res == nil || !res.IsError) {
		t.Fatalf("expected unknown tool error")
	}
	if got := up.creates.Load(); got != 0 {
		t.Fatalf("unknown tool must never reach upstream")
	}
}

func TestListStreamsFormatting(t *testing.T) {
	ts, _, _ := newTestServer(t, 100)
	cl := newMCPClient(t, ts.URL, testKey)

	req := mcp.CallToolRequest{}
	req.Params.Name = "list_streams"
	res, err := cl.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("tools/call: %v", err)
	}
	text := textContent(t, res)
	if !strings.Contains(text, "Found 2 stream(s)") {
		t.Fatalf("result %q missing count", text)
	}
	for _, want := range []string{"first", "second", "running", "stopped", "T1", "T2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("result %q missing %q", text, want)
		}
	}
}

func TestGetStreamNotFound(t *testing.T) {
	ts, _, _ := newTestServer(t, 100)
	cl := newMCPClient(t, ts.URL, testKey)

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_stream"
	req.Params.Arguments = map[string]any{"stream_id": "missing"}
	res, err := cl.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("tools/call: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error for missing stream")
	}
	text := textContent(t, res)
	if !strings.Contains(text, "get_stream failed") || !strings.Contains(text, "404") {
		t.Fatalf("error text %q should carry upstream status", text)
	}
}
