package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/localmind/memoriad/internal/config"
	"github.com/localmind/memoriad/internal/metrics"
)

// Gateway failure taxonomy. Both are recovered by the caller as "zero
// operations detected"; neither aborts a request.
var (
	ErrGatewayUnavailable = errors.New("extraction gateway unavailable")
	ErrGatewayTimeout     = errors.New("extraction gateway timeout")
)

// Gateway sends an instruction prompt plus a user message to a
// chat-completion endpoint and returns the raw completion text.
type Gateway interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// ChatClient implements Gateway against an OpenAI-compatible
// /chat/completions endpoint with a near-zero temperature and a bounded
// output-token budget.
type ChatClient struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewChatClient creates a gateway client from config.
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	return &ChatClient{
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues a single synchronous completion request.
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			metrics.GatewayFailuresTotal.WithLabelValues("timeout").Inc()
			return "", fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
		}
		metrics.GatewayFailuresTotal.WithLabelValues("transport").Inc()
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayFailuresTotal.WithLabelValues("transport").Inc()
		return "", fmt.Errorf("%w: reading response: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GatewayFailuresTotal.WithLabelValues("status").Inc()
		return "", fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		metrics.GatewayFailuresTotal.WithLabelValues("decode").Inc()
		return "", fmt.Errorf("%w: decoding response: %v", ErrGatewayUnavailable, err)
	}

	if len(result.Choices) == 0 {
		metrics.GatewayFailuresTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: no choices in response", ErrGatewayUnavailable)
	}

	return result.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
