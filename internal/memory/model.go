package memory

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Memory type partitions. The extraction engine writes only to long_term;
// deletes may touch any partition.
const (
	TypeLongTerm = "long_term"
	TypeEntity   = "entity"
)

// Record represents a row in the chat_memory table: one fact about one user.
// Value is stored as JSONB, scalar strings included (they are serialized as
// JSON strings).
type Record struct {
	ID         uuid.UUID       `json:"id"`
	UserID     string          `json:"userId"`
	Key        string          `json:"key"`
	Value      json.RawMessage `json:"value"`
	MemoryType string          `json:"memoryType"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// SaveRequest is used by the API to create or update a memory.
type SaveRequest struct {
	UserID     string `json:"userId" validate:"required,min=1"`
	Key        string `json:"key" validate:"required,min=1"`
	Value      any    `json:"value" validate:"required"`
	MemoryType string `json:"memoryType,omitempty"`
}

// SearchRequest is used by the API to search memories by keyword.
type SearchRequest struct {
	UserID string `json:"userId" validate:"required,min=1"`
	Query  string `json:"query" validate:"required,min=1"`
	Limit  int    `json:"limit,omitempty"`
}
