package images

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/localmind/memoriad/internal/api"
)

// Handler proxies generation requests to the diffusion service.
type Handler struct {
	client   *Client
	validate *validator.Validate
}

func NewHandler(client *Client) *Handler {
	return &Handler{
		client:   client,
		validate: validator.New(),
	}
}

// Generate renders an image from a text prompt.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	res, err := h.client.Generate(r.Context(), req)
	if err != nil {
		slog.Error("image generation failed", "error", err)
		api.HandleError(w, api.NewUpstreamError("image service unavailable"))
		return
	}

	api.JSON(w, http.StatusOK, res)
}

// Health passes the diffusion service's health status through.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.client.Health(r.Context())
	if err != nil {
		slog.Warn("image service health check failed", "error", err)
		api.HandleError(w, api.NewUpstreamError("image service unavailable"))
		return
	}

	api.JSON(w, http.StatusOK, status)
}
