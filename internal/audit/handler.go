package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/localmind/memoriad/internal/api"
)

// Handler exposes the audit trail for inspection.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns a user's audit entries, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		api.HandleError(w, api.NewBadRequestError("userId is required"))
		return
	}

	params := ListParams{
		EventType: r.URL.Query().Get("eventType"),
		Page:      queryInt(r, "page"),
		PageSize:  queryInt(r, "pageSize"),
	}
	if from := queryTime(r, "from"); from != nil {
		params.From = from
	}
	if to := queryTime(r, "to"); to != nil {
		params.To = to
	}

	entries, total, err := h.repo.ListByUser(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing audit entries", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStoreUnavailable)
		return
	}

	api.JSONCount(w, http.StatusOK, entries, int(total))
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func queryTime(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
