package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmind/memoriad/internal/config"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(config.RAGConfig{
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	})
	require.NoError(t, err)
	return c
}

func TestClient_Query(t *testing.T) {
	t.Run("applies mode and top_k defaults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query", r.URL.Path)

			var req QueryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "naive", req.Mode)
			assert.Equal(t, 20, req.TopK)

			json.NewEncoder(w).Encode(QueryResult{Answer: "42", Success: true})
		}))
		defer srv.Close()

		res, err := newTestClient(t, srv.URL).Query(context.Background(), QueryRequest{Query: "q"})
		require.NoError(t, err)
		assert.Equal(t, "42", res.Answer)
		assert.True(t, res.Success)
	})

	t.Run("repeat query is served from cache", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			json.NewEncoder(w).Encode(QueryResult{Answer: "cached answer", Success: true})
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		req := QueryRequest{Query: "EPS是多少", Mode: "hybrid", TopK: 10}

		_, err := c.Query(context.Background(), req)
		require.NoError(t, err)
		c.Wait()

		res, err := c.Query(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "cached answer", res.Answer)
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("different modes do not share cache entries", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			json.NewEncoder(w).Encode(QueryResult{Answer: "a", Success: true})
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		_, err := c.Query(context.Background(), QueryRequest{Query: "q", Mode: "naive"})
		require.NoError(t, err)
		c.Wait()
		_, err = c.Query(context.Background(), QueryRequest{Query: "q", Mode: "global"})
		require.NoError(t, err)

		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("custom system prompt bypasses cache", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			json.NewEncoder(w).Encode(QueryResult{Answer: "a", Success: true})
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		req := QueryRequest{Query: "q", SystemPrompt: "answer in French"}
		for i := 0; i < 2; i++ {
			_, err := c.Query(context.Background(), req)
			require.NoError(t, err)
			c.Wait()
		}
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("failed results are not cached", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			json.NewEncoder(w).Encode(QueryResult{Success: false, Error: "index rebuilding"})
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		req := QueryRequest{Query: "q"}
		for i := 0; i < 2; i++ {
			_, err := c.Query(context.Background(), req)
			require.NoError(t, err)
			c.Wait()
		}
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).Query(context.Background(), QueryRequest{Query: "q"})
		assert.Error(t, err)
	})
}

func TestClient_Context(t *testing.T) {
	t.Run("posts to context path and caches", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "/context", r.URL.Path)
			json.NewEncoder(w).Encode(ContextResult{Context: "chunk one\nchunk two", Success: true})
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		res, err := c.Context(context.Background(), "營收", "local", 5)
		require.NoError(t, err)
		assert.Equal(t, "chunk one\nchunk two", res.Context)
		c.Wait()

		_, err = c.Context(context.Background(), "營收", "local", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), calls.Load())
	})
}
