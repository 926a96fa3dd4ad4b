// Package tools registers the Daydream stream tools on an MCP server.
// Each tool translates one call into exactly one upstream REST request
// and renders the response as a single text block.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hthillman/daydream-mcp/internal/daydream"
	"github.com/hthillman/daydream-mcp/internal/metrics"
)

type ctxKey struct{}

// WithKey returns ctx carrying the caller's API key for tool handlers.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// KeyFrom returns the API key stored in ctx, or "".
func KeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(ctxKey{}).(string)
	return key
}

// Schedulers accepted by the Daydream pipeline.
var Schedulers = []string{"ddim", "dpm_multistep", "euler", "euler_ancestral", "lcm"}

// ControlNetTypes accepted by the Daydream pipeline.
var ControlNetTypes = []string{"canny", "depth", "hed", "openpose", "color", "normal"}

// Register adds the seven stream tools to s, forwarding calls to c.
func Register(s *server.MCPServer, c *daydream.Client) {
	s.AddTool(mcp.NewTool("create_stream",
		mcp.WithDescription("Create a new AI video stream"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name for the stream")),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Diffusion prompt driving the generated video")),
		mcp.WithString("model_id", mcp.Description("Diffusion model identifier")),
		mcp.WithString("negative_prompt", mcp.Description("Features to suppress in the output")),
		mcp.WithNumber("num_inference_steps", mcp.Description("Denoising steps per frame")),
		mcp.WithNumber("guidance_scale", mcp.Description("How strongly the prompt steers generation")),
		mcp.WithString("scheduler", mcp.Description("Diffusion scheduler"), mcp.Enum(Schedulers...)),
		mcp.WithString("controlnet_type", mcp.Description("ControlNet conditioning type"), mcp.Enum(ControlNetTypes...)),
		mcp.WithNumber("seed", mcp.Description("Random seed for reproducible output")),
		mcp.WithString("webhook_url", mcp.Description("URL notified on stream status changes")),
	), createStream(c))

	s.AddTool(mcp.NewTool("get_stream",
		mcp.WithDescription("Fetch a stream's current state and pipeline parameters"),
		mcp.WithString("stream_id", mcp.Required(), mcp.Description("Stream identifier")),
	), getStream(c))

	s.AddTool(mcp.NewTool("list_streams",
		mcp.WithDescription("List all streams visible to the API key"),
	), listStreams(c))

	s.AddTool(mcp.NewTool("update_stream",
		mcp.WithDescription("Update a stream's name, prompt, or pipeline parameters"),
		mcp.WithString("stream_id", mcp.Required(), mcp.Description("Stream identifier")),
		mcp.WithString("name", mcp.Description("New display name")),
		mcp.WithString("prompt", mcp.Description("New diffusion prompt")),
		mcp.WithString("negative_prompt", mcp.Description("Features to suppress in the output")),
		mcp.WithNumber("num_inference_steps", mcp.Description("Denoising steps per frame")),
		mcp.WithNumber("guidance_scale", mcp.Description("How strongly the prompt steers generation")),
		mcp.WithString("scheduler", mcp.Description("Diffusion scheduler"), mcp.Enum(Schedulers...)),
		mcp.WithString("controlnet_type", mcp.Description("ControlNet conditioning type"), mcp.Enum(ControlNetTypes...)),
		mcp.WithString("webhook_url", mcp.Description("URL notified on stream status changes")),
	), updateStream(c))

	s.AddTool(mcp.NewTool("start_stream",
		mcp.WithDescription("Start video generation for a stream"),
		mcp.WithString("stream_id", mcp.Required(), mcp.Description("Stream identifier")),
	), startStream(c))

	s.AddTool(mcp.NewTool("stop_stream",
		mcp.WithDescription("Stop video generation for a stream"),
		mcp.WithString("stream_id", mcp.Required(), mcp.Description("Stream identifier")),
	), stopStream(c))

	s.AddTool(mcp.NewTool("delete_stream",
		mcp.WithDescription("Delete a stream"),
		mcp.WithString("stream_id", mcp.Required(), mcp.Description("Stream identifier")),
	), deleteStream(c))
}

func createStream(c *daydream.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, res := requireKey(ctx)
		if res != nil {
			return res, nil
		}
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in := daydream.CreateStreamRequest{
			Name:       name,
			WebhookURL: req.GetString("webhook_url", ""),
			PipelineParams: daydream.PipelineParams{
				Prompt:            prompt,
				ModelID:           req.GetString("model_id", ""),
				NegativePrompt:    req.GetString("negative_prompt", ""),
				NumInferenceSteps: req.GetInt("num_inference_steps", 0),
				GuidanceScale:     req.GetFloat("guidance_scale", 0),
				Scheduler:         req.GetString("scheduler", ""),
				ControlNetType:    req.GetString("controlnet_type", ""),
				Seed:              req.GetInt("seed", 0),
			},
		}
		st, err := c.CreateStream(ctx, key, in)
		if err != nil {
			return failure("create_stream", err), nil
		}
		metrics.RecordToolCall("create_stream", true)
		return mcp.NewToolResultText(fmt.Sprintf(
			"Created stream %s\nName: %s\nStatus: %s\nCreated: %s",
			st.ID, st.Name, st.Status, st.CreatedAt)), nil
	}
}

func getStream(c *daydream.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, res := requireKey(ctx)
		if res != nil {
			return res, nil
		}
		id, err := req.RequireString("stream_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		st, err := c.GetStream(ctx, key, id)
		if err != nil {
			return failure("get_stream", err), nil
		}
		metrics.RecordToolCall("get_stream", true)
		var b strings.Builder
		fmt.Fprintf(&b, "Stream %s\nName: %s\nStatus: %s\nCreated: %s\nUpdated: %s\n",
			st.ID, st.Name, st.Status, st.CreatedAt, st.UpdatedAt)
		if st.OutputRTMPURL != "" {
			fmt.Fprintf(&b, "Output RTMP: %s\n", st.OutputRTMPURL)
		}
		if st.WHIPURL != "" {
			fmt.Fprintf(&b, "WHIP: %s\n", st.WHIPURL)
		}
		if st.WebhookURL != "" {
			fmt.Fprintf(&b, "Webhook: %s\n", st.WebhookURL)
		}
		if st.PipelineParams != nil {
			params, _ := json.MarshalIndent(st.PipelineParams, "", "  ")
			fmt.Fprintf(&b, "Pipeline params:\n%s", params)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func listStreams(c *daydream.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, res := requireKey(ctx)
		if res != nil {
			return res, nil
		}
		streams, err := c.ListStreams(ctx, key)
		if err != nil {
			return failure("list_streams", err), nil
		}
		metrics.RecordToolCall("list_streams", true)
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d stream(s)\n", len(streams))
		for _, st := range streams {
			fmt.Fprintf(&b, "- %s (id: %s, status: %s, created: %s)\n",
				st.Name, st.ID, st.Status, st.CreatedAt)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func updateStream(c *daydream.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, res := requireKey(ctx)
		if res != nil {
			return res, nil
		}
		id, err := req.RequireString("stream_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in := daydream.UpdateStreamRequest{
			Name:       req.GetString("name", ""),
			WebhookURL: req.GetString("webhook_url", ""),
		}
		params := daydream.PipelineParams{
			Prompt:            req.GetString("prompt", ""),
			NegativePrompt:    req.GetString("negative_prompt", ""),
			NumInferenceSteps: req.GetInt("num_inference_steps", 0),
			GuidanceScale:     req.GetFloat("guidance_scale", 0),
			Scheduler:         req.GetString("scheduler", ""),
			ControlNetType:    req.GetString("controlnet_type", ""),
		}
		if params != (daydream.PipelineParams{}) {
			in.PipelineParams = &params
		}
		st, err := c.UpdateStream(ctx, key, id, in)
		if err != nil {
			return failure("update_stream", err), nil
		}
		metrics.RecordToolCall("update_stream", true)
		return mcp.NewToolResultText(fmt.Sprintf(
			"Updated stream %s\nName: %s\nStatus: %s", st.ID, st.Name, st.Status)), nil
	}
}

func startStream(c *daydream.Client) server.ToolHandlerFunc {
	return lifecycle("start_stream", "Started",
		func(ctx context.Context, key, id string) (*daydream.Stream, error) {
			return c.StartStream(ctx, key, id)
		})
}

func stopStream(c *daydream.Client) server.ToolHandlerFunc {
	return lifecycle("stop_stream", "Stopped",
		func(ctx context.Context, key, id string) (*daydream.Stream, error) {
			return c.StopStream(ctx, key, id)
		})
}

func lifecycle(tool, verb string, call func(ctx context.Context, key, id string) (*daydream.Stream, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, res := requireKey(ctx)
		if res != nil {
			return res, nil
		}
		id, err := req.RequireString("stream_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		st, err := call(ctx, key, id)
		if err != nil {
			return failure(tool, err), nil
		}
		metrics.RecordToolCall(tool, true)
		return mcp.NewToolResultText(fmt.Sprintf(
			"%s stream %s\nStatus: %s", verb, st.ID, st.Status)), nil
	}
}

func deleteStream(c *daydream.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, res := requireKey(ctx)
		if res != nil {
			return res, nil
		}
		id, err := req.RequireString("stream_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.DeleteStream(ctx, key, id); err != nil {
			return failure("delete_stream", err), nil
		}
		metrics.RecordToolCall("delete_stream", true)
		return mcp.NewToolResultText(fmt.Sprintf("Deleted stream %s", id)), nil
	}
}

func requireKey(ctx context.Context) (string, *mcp.CallToolResult) {
	key := KeyFrom(ctx)
	if key == "" {
		return "", mcp.NewToolResultError("no API key associated with this request")
	}
	return key, nil
}

func failure(tool string, err error) *mcp.CallToolResult {
	metrics.RecordToolCall(tool, false)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}
