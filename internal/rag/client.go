package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/localmind/memoriad/internal/config"
	"github.com/localmind/memoriad/internal/metrics"
)

// QueryRequest asks the retrieval endpoint to answer a question over the
// knowledge base. Mode selects the retrieval strategy (naive, local, global
// or hybrid); TopK bounds how many chunks back the answer.
type QueryRequest struct {
	Query        string `json:"query" validate:"required"`
	Mode         string `json:"mode,omitempty"`
	TopK         int    `json:"top_k,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// QueryResult is the endpoint's answer payload, passed through unmodified.
type QueryResult struct {
	Answer  string          `json:"answer"`
	Success bool            `json:"success"`
	Sources json.RawMessage `json:"sources,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ContextResult carries raw retrieved context without a generated answer.
type ContextResult struct {
	Context string `json:"context"`
	Success bool   `json:"success"`
}

const (
	defaultMode = "naive"
	defaultTopK = 20
)

// Client wraps the retrieval HTTP endpoint with a small in-process answer
// cache. Retrieval over a static corpus is deterministic per (mode, top_k,
// query), so repeats within the TTL skip the round trip entirely.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *ristretto.Cache
	cacheTTL   time.Duration
}

// NewClient creates a retrieval client from config.
func NewClient(cfg config.RAGConfig) (*Client, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     32 << 20, // 32 MiB of cached answers
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating rag cache: %w", err)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
	}, nil
}

func cacheKey(kind, mode string, topK int, query string) string {
	return fmt.Sprintf("%s|%s|%d|%s", kind, mode, topK, query)
}

// Query answers a question over the knowledge base, serving repeats from
// cache. Requests with a custom system prompt are never cached since the
// prompt changes the answer.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	if req.Mode == "" {
		req.Mode = defaultMode
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	key := cacheKey("query", req.Mode, req.TopK, req.Query)
	if req.SystemPrompt == "" {
		if cached, ok := c.cache.Get(key); ok {
			if res, ok := cached.(*QueryResult); ok {
				metrics.RAGCacheHitsTotal.WithLabelValues("hit").Inc()
				return res, nil
			}
		}
	}
	metrics.RAGCacheHitsTotal.WithLabelValues("miss").Inc()

	var res QueryResult
	if err := c.post(ctx, "/query", req, &res); err != nil {
		return nil, err
	}

	if req.SystemPrompt == "" && res.Success {
		c.cache.SetWithTTL(key, &res, int64(len(res.Answer)+len(res.Sources)), c.cacheTTL)
	}
	return &res, nil
}

// Context retrieves raw knowledge-base context without generating an answer.
func (c *Client) Context(ctx context.Context, query, mode string, topK int) (*ContextResult, error) {
	if mode == "" {
		mode = defaultMode
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	key := cacheKey("context", mode, topK, query)
	if cached, ok := c.cache.Get(key); ok {
		if res, ok := cached.(*ContextResult); ok {
			metrics.RAGCacheHitsTotal.WithLabelValues("hit").Inc()
			return res, nil
		}
	}
	metrics.RAGCacheHitsTotal.WithLabelValues("miss").Inc()

	var res ContextResult
	req := QueryRequest{Query: query, Mode: mode, TopK: topK}
	if err := c.post(ctx, "/context", req, &res); err != nil {
		return nil, err
	}

	if res.Success {
		c.cache.SetWithTTL(key, &res, int64(len(res.Context)), c.cacheTTL)
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal rag request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building rag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling rag endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading rag response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rag endpoint returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding rag response: %w", err)
	}
	return nil
}

// Wait flushes pending cache writes. Only tests need this.
func (c *Client) Wait() {
	c.cache.Wait()
}
