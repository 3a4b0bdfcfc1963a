package extract

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/localmind/memoriad/internal/api"
)

// DetectRequest is the payload for the detect endpoint. Apply defaults to
// true when omitted; callers that only want the proposed operations send
// "apply": false.
type DetectRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Message string `json:"message" validate:"required"`
	Apply   *bool  `json:"apply"`
}

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Detect extracts memory operations from the message and applies them for
// the user unless apply is false.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	apply := req.Apply == nil || *req.Apply

	res, err := h.svc.DetectAndApply(r.Context(), req.UserID, req.Message, apply)
	if err != nil {
		slog.Error("detecting memory operations", "error", err, "user_id", req.UserID)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	api.JSONFull(w, http.StatusOK, map[string]any{
		"detected": res.Detected,
		"applied":  res.Updated,
		"deleted":  res.Deleted,
	}, res.Summary, len(res.Detected))
}
