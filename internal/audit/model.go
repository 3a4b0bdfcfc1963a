package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry matches the memory_audit_logs table schema.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	EventType string    `json:"event_type"`
	Key       string    `json:"key"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListParams holds pagination and filtering parameters for audit queries.
type ListParams struct {
	EventType string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
