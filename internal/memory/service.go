package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// profileKeys is the fixed vocabulary the profile projection filters on:
// long-term keys whose lowercase form contains any of these fragments.
var profileKeys = []string{"name", "interest", "hobby", "favorite", "occupation", "age", "location"}

// Service is the thin CRUD surface over the memory repository.
type Service struct {
	repo Repository
}

// NewService creates a new memory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EncodeValue serializes an arbitrary request value the way records store it:
// everything becomes JSON, scalar strings included.
func EncodeValue(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding memory value: %w", err)
	}
	return data, nil
}

// Save creates or updates the record for (userID, key, memoryType). An empty
// memoryType defaults to long_term. It reports whether a new record was
// created.
func (s *Service) Save(ctx context.Context, req *SaveRequest) (*Record, bool, error) {
	memoryType := req.MemoryType
	if memoryType == "" {
		memoryType = TypeLongTerm
	}

	value, err := EncodeValue(req.Value)
	if err != nil {
		return nil, false, err
	}

	return s.repo.Upsert(ctx, req.UserID, req.Key, memoryType, value)
}

// Get returns a single record by key, or all records for the user filtered
// by memory type when key is empty.
func (s *Service) Get(ctx context.Context, userID, key, memoryType string) ([]Record, error) {
	if key != "" {
		rec, err := s.repo.GetByKey(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		return []Record{*rec}, nil
	}
	return s.repo.ListByUser(ctx, userID, memoryType)
}

// Search finds durable memories matching the query by keyword.
func (s *Service) Search(ctx context.Context, req *SearchRequest) ([]Record, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Search(ctx, req.UserID, req.Query, limit)
}

// DeleteByID removes one record by identifier.
func (s *Service) DeleteByID(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.DeleteByID(ctx, userID, id)
}

// DeleteByKey removes records with an exact key match.
func (s *Service) DeleteByKey(ctx context.Context, userID, key string) error {
	return s.repo.DeleteByKey(ctx, userID, key)
}

// Profile projects the user's long-term memories onto the fixed profile
// vocabulary, returning a key → value map.
func (s *Service) Profile(ctx context.Context, userID string) (map[string]json.RawMessage, error) {
	records, err := s.repo.ListByUser(ctx, userID, TypeLongTerm)
	if err != nil {
		return nil, err
	}

	profile := make(map[string]json.RawMessage)
	for _, rec := range records {
		keyLower := strings.ToLower(rec.Key)
		for _, pk := range profileKeys {
			if strings.Contains(keyLower, pk) {
				profile[rec.Key] = rec.Value
				break
			}
		}
	}
	return profile, nil
}
