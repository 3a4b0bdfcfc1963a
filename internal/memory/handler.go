package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/localmind/memoriad/internal/api"
)

// Handler handles memory CRUD HTTP endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler creates a new memory handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Get returns user memories: a single one when key is given, otherwise all
// records optionally filtered by memory type. type=profile returns the
// profile projection.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		api.HandleError(w, api.NewBadRequestError("userId is required"))
		return
	}
	key := r.URL.Query().Get("key")
	memoryType := r.URL.Query().Get("type")

	if memoryType == "profile" {
		profile, err := h.svc.Profile(r.Context(), userID)
		if err != nil {
			slog.Error("building profile", "error", err, "user_id", userID)
			api.HandleError(w, api.ErrStoreUnavailable)
			return
		}
		api.JSONCount(w, http.StatusOK, profile, len(profile))
		return
	}

	records, err := h.svc.Get(r.Context(), userID, key, memoryType)
	if err != nil {
		slog.Error("getting memories", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	if key != "" {
		if len(records) == 0 {
			api.JSONCount(w, http.StatusOK, nil, 0)
			return
		}
		api.JSONCount(w, http.StatusOK, records[0], 1)
		return
	}

	api.JSONCount(w, http.StatusOK, records, len(records))
}

// Save creates or updates a memory.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	rec, created, err := h.svc.Save(r.Context(), &req)
	if err != nil {
		slog.Error("saving memory", "error", err, "user_id", req.UserID, "key", req.Key)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	action := "updated"
	if created {
		action = "created"
	}
	api.JSONFull(w, http.StatusOK,
		map[string]any{"key": rec.Key, "value": rec.Value},
		fmt.Sprintf("Memory '%s' %s successfully", rec.Key, action), 1)
}

// Delete removes a memory by id or by exact key.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		api.HandleError(w, api.NewBadRequestError("userId is required"))
		return
	}

	idStr := r.URL.Query().Get("id")
	key := r.URL.Query().Get("key")

	var err error
	switch {
	case idStr != "":
		var id uuid.UUID
		id, err = uuid.Parse(idStr)
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("invalid memory ID"))
			return
		}
		err = h.svc.DeleteByID(r.Context(), userID, id)
	case key != "":
		err = h.svc.DeleteByKey(r.Context(), userID, key)
	default:
		api.HandleError(w, api.NewBadRequestError("either key or id is required"))
		return
	}

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("memory not found"))
			return
		}
		slog.Error("deleting memory", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	api.JSONMessage(w, http.StatusOK, "Memory deleted successfully")
}

// Search performs a keyword search over durable memories.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	records, err := h.svc.Search(r.Context(), &req)
	if err != nil {
		slog.Error("searching memories", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	api.JSONFull(w, http.StatusOK, records,
		fmt.Sprintf("Found %d memories matching '%s'", len(records), req.Query), len(records))
}

// Profile returns the profile projection for a user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		api.HandleError(w, api.NewBadRequestError("userID is required"))
		return
	}

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		slog.Error("building profile", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	api.JSONCount(w, http.StatusOK, profile, len(profile))
}
