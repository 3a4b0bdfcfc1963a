package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localmind/memoriad/internal/events"
	"github.com/localmind/memoriad/internal/memory"
	"github.com/localmind/memoriad/internal/metrics"
)

// Store is the persistence surface the applier depends on. The repository's
// atomic upsert subsumes the original find-then-write sequence, so only the
// two mutating operations are consumed here.
type Store interface {
	Upsert(ctx context.Context, userID, key, memoryType string, value json.RawMessage) (*memory.Record, bool, error)
	DeleteMatching(ctx context.Context, userID, pattern string) ([]memory.Record, error)
}

// Result reports one detect-and-apply call: the operations the model
// proposed, the keys upserted, and the records removed (rendered as their
// stored value when it is a scalar string, otherwise as their key).
type Result struct {
	Detected []Operation `json:"detected"`
	Updated  []string    `json:"applied"`
	Deleted  []string    `json:"deleted"`
	Summary  string      `json:"-"`
}

// Service orchestrates the extraction pipeline: gateway, parser, classifier,
// and the sequential application of operations against the store.
type Service struct {
	gateway Gateway
	store   Store
	pub     *events.Publisher
}

// NewService creates the extraction service. pub may be nil when eventing is
// not configured.
func NewService(gateway Gateway, store Store, pub *events.Publisher) *Service {
	return &Service{gateway: gateway, store: store, pub: pub}
}

// Detect runs the extraction pipeline without touching the store. Gateway
// and parse failures degrade to an empty operation list; they are never
// surfaced as errors.
func (s *Service) Detect(ctx context.Context, message string) []Operation {
	raw, err := s.gateway.Complete(ctx, extractionPrompt, userPrompt(message))
	if err != nil {
		slog.Warn("extraction gateway failed, treating as no operations", "error", err)
		return nil
	}

	ops := ClassifyOperations(ParseOperations(raw))
	for _, op := range ops {
		metrics.OperationsDetectedTotal.WithLabelValues(string(op.Action)).Inc()
	}
	return ops
}

// DetectAndApply extracts memory operations from the message and, when apply
// is set, executes them in order for the user. Extraction failures yield an
// empty result; store failures abort the request and are returned.
func (s *Service) DetectAndApply(ctx context.Context, userID, message string, apply bool) (*Result, error) {
	res := &Result{
		Detected: []Operation{},
		Updated:  []string{},
		Deleted:  []string{},
	}

	ops := s.Detect(ctx, message)
	if len(ops) == 0 {
		res.Summary = "No memory operations detected"
		return res, nil
	}
	res.Detected = ops

	if apply {
		for _, op := range ops {
			if err := s.applyOne(ctx, userID, op, res); err != nil {
				return nil, err
			}
		}
	}

	res.Summary = summarize(len(res.Updated), len(res.Deleted))
	return res, nil
}

func (s *Service) applyOne(ctx context.Context, userID string, op Operation, res *Result) error {
	switch op.Action {
	case ActionDelete:
		// Each delete is independent: lexical-variant fan-out from the
		// model means several operations may target one user intent, and
		// deleting an already-absent pattern is a no-op.
		removed, err := s.store.DeleteMatching(ctx, userID, op.Key)
		if err != nil {
			return fmt.Errorf("applying delete %q: %w", op.Key, err)
		}
		for _, rec := range removed {
			res.Deleted = append(res.Deleted, renderRecord(rec))
			metrics.OperationsAppliedTotal.WithLabelValues(string(ActionDelete)).Inc()
			s.publishEvent(ctx, events.MemoryEvent{
				UserID:    userID,
				EventType: events.EventMemoryDeleted,
				Key:       rec.Key,
				Detail:    op.Key,
				Timestamp: time.Now(),
			})
			slog.Info("memory deleted", "user_id", userID, "key", rec.Key, "pattern", op.Key)
		}

	case ActionUpdate:
		value, err := memory.EncodeValue(op.Value)
		if err != nil {
			return fmt.Errorf("encoding update %q: %w", op.Key, err)
		}
		if _, _, err := s.store.Upsert(ctx, userID, op.Key, memory.TypeLongTerm, value); err != nil {
			return fmt.Errorf("applying update %q: %w", op.Key, err)
		}
		res.Updated = append(res.Updated, op.Key)
		metrics.OperationsAppliedTotal.WithLabelValues(string(ActionUpdate)).Inc()
		s.publishEvent(ctx, events.MemoryEvent{
			UserID:    userID,
			EventType: events.EventMemoryUpdated,
			Key:       op.Key,
			Detail:    op.Value,
			Timestamp: time.Now(),
		})
		slog.Info("memory updated", "user_id", userID, "key", op.Key)
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, event events.MemoryEvent) {
	// Eventing is best-effort; the mutation already happened.
	if err := s.pub.PublishMemoryEvent(ctx, event); err != nil {
		slog.Warn("publishing memory event", "error", err, "event_type", event.EventType)
	}
}

// renderRecord names a removed record for the caller: the decoded value for
// scalar string values, otherwise the key.
func renderRecord(rec memory.Record) string {
	var s string
	if err := json.Unmarshal(rec.Value, &s); err == nil && s != "" {
		return s
	}
	return rec.Key
}

func summarize(updated, deleted int) string {
	var parts []string
	if updated > 0 {
		parts = append(parts, fmt.Sprintf("更新了 %d 筆記憶", updated))
	}
	if deleted > 0 {
		parts = append(parts, fmt.Sprintf("刪除了 %d 筆記憶", deleted))
	}
	if len(parts) == 0 {
		return "沒有執行任何操作"
	}
	return strings.Join(parts, "; ")
}
