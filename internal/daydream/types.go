package daydream

// PipelineParams configures the diffusion pipeline driving a stream.
type PipelineParams struct {
	Prompt            string  `json:"prompt,omitempty"`
	ModelID           string  `json:"model_id,omitempty"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
	Scheduler         string  `json:"scheduler,omitempty"`
	ControlNetType    string  `json:"controlnet_type,omitempty"`
	Seed              int     `json:"seed,omitempty"`
}

// Stream is an upstream-owned AI video session. This service never
// stores streams; it only relays lifecycle requests and reshapes the
// responses for display.
type Stream struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"created_at,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
	PipelineParams *PipelineParams `json:"pipeline_params,omitempty"`
	OutputRTMPURL  string          `json:"output_rtmp_url,omitempty"`
	WHIPURL        string          `json:"whip_url,omitempty"`
	WebhookURL     string          `json:"webhook_url,omitempty"`
}

// CreateStreamRequest is the body of POST /v1/streams.
type CreateStreamRequest struct {
	Name           string         `json:"name"`
	PipelineParams PipelineParams `json:"pipeline_params"`
	WebhookURL     string         `json:"webhook_url,omitempty"`
}

// UpdateStreamRequest is the body of PUT /v1/streams/{id}. Nil or
// empty fields are left untouched upstream.
type UpdateStreamRequest struct {
	Name           string          `json:"name,omitempty"`
	PipelineParams *PipelineParams `json:"pipeline_params,omitempty"`
	WebhookURL     string          `json:"webhook_url,omitempty"`
}
