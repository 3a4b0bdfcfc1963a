package events

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents is the JetStream stream holding memory mutation events.
const StreamEvents = "MEMORIA_EVENTS"

// SubjectMemoryEvent carries every memory mutation for the audit trail.
const SubjectMemoryEvent = "memoria.events.memory"

// Mutation event types.
const (
	EventMemoryUpdated = "memory_updated"
	EventMemoryDeleted = "memory_deleted"
)

// MemoryEvent is published once per applied mutation. For updates, Key is the
// record key written; for deletes, Key is the key of the removed record and
// Detail the search term that matched it.
type MemoryEvent struct {
	UserID    string    `json:"user_id"`
	EventType string    `json:"event_type"`
	Key       string    `json:"key"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
