package rag

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/localmind/memoriad/internal/api"
)

// Handler proxies retrieval requests to the knowledge-base endpoint.
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

// Query answers a question over the knowledge base.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	res, err := h.client.Query(r.Context(), req)
	if err != nil {
		slog.Error("rag query failed", "error", err, "mode", req.Mode)
		api.HandleError(w, api.NewUpstreamError("knowledge base unavailable"))
		return
	}

	api.JSON(w, http.StatusOK, res)
}

// Context returns raw retrieved context for a query.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	res, err := h.client.Context(r.Context(), req.Query, req.Mode, req.TopK)
	if err != nil {
		slog.Error("rag context retrieval failed", "error", err, "mode", req.Mode)
		api.HandleError(w, api.NewUpstreamError("knowledge base unavailable"))
		return
	}

	api.JSON(w, http.StatusOK, res)
}
