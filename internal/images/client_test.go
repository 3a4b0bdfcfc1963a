package images

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmind/memoriad/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ImageConfig{BaseURL: baseURL, Timeout: 5 * time.Second})
}

func TestClient_Generate(t *testing.T) {
	t.Run("fills sampler defaults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/generate", r.URL.Path)

			var req GenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 1024, req.Width)
			assert.Equal(t, 1024, req.Height)
			assert.Equal(t, 50, req.Steps)
			assert.Equal(t, 4.0, req.GuidanceScale)
			assert.Equal(t, "base64", req.OutputFormat)
			assert.Nil(t, req.Seed)

			json.NewEncoder(w).Encode(GenerateResult{
				Success:        true,
				Image:          "iVBORw0KGgo=",
				Seed:           12345,
				GenerationTime: 8.2,
			})
		}))
		defer srv.Close()

		res, err := newTestClient(srv.URL).Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "iVBORw0KGgo=", res.Image)
		assert.Equal(t, int64(12345), res.Seed)
	})

	t.Run("explicit settings are kept", func(t *testing.T) {
		seed := int64(7)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req GenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 512, req.Width)
			assert.Equal(t, 768, req.Height)
			assert.Equal(t, 20, req.Steps)
			require.NotNil(t, req.Seed)
			assert.Equal(t, seed, *req.Seed)

			json.NewEncoder(w).Encode(GenerateResult{Success: true, Seed: seed})
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Generate(context.Background(), GenerateRequest{
			Prompt: "a dog",
			Width:  512,
			Height: 768,
			Steps:  20,
			Seed:   &seed,
		})
		require.NoError(t, err)
	})

	t.Run("service error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model failed to load", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
		assert.Error(t, err)
	})
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "port": 8004})
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status["status"])
}
