package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/localmind/memoriad/internal/config"
)

// GenerateRequest is a text-to-image request. Zero-valued dimensions and
// sampler settings fall back to the diffusion service's defaults.
type GenerateRequest struct {
	Prompt         string  `json:"prompt" validate:"required"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Steps          int     `json:"num_inference_steps,omitempty"`
	GuidanceScale  float64 `json:"guidance_scale,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`
	OutputFormat   string  `json:"output_format,omitempty"`
}

// GenerateResult is the diffusion service's response.
type GenerateResult struct {
	Success        bool    `json:"success"`
	Image          string  `json:"image,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	Seed           int64   `json:"seed"`
	GenerationTime float64 `json:"generation_time"`
	Message        string  `json:"message,omitempty"`
}

// HealthStatus is the diffusion service's health payload, passed through.
type HealthStatus map[string]any

const (
	defaultWidth         = 1024
	defaultHeight        = 1024
	defaultSteps         = 50
	defaultGuidanceScale = 4.0
	defaultOutputFormat  = "base64"
)

// Client talks to the diffusion HTTP service. Generation takes minutes on a
// cold model, so the configured timeout is far larger than usual.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.ImageConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate renders an image from the prompt.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.Width <= 0 {
		req.Width = defaultWidth
	}
	if req.Height <= 0 {
		req.Height = defaultHeight
	}
	if req.Steps <= 0 {
		req.Steps = defaultSteps
	}
	if req.GuidanceScale <= 0 {
		req.GuidanceScale = defaultGuidanceScale
	}
	if req.OutputFormat == "" {
		req.OutputFormat = defaultOutputFormat
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling image service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image service returned status %d", resp.StatusCode)
	}

	var result GenerateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding image response: %w", err)
	}
	return &result, nil
}

// Health fetches the diffusion service's health status.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("building health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling image service: %w", err)
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding health response: %w", err)
	}
	return status, nil
}
